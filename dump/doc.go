/*
Package dump provides I/O operations for collected states of the faucet
ledger.

A dump captures every storage item of the ledger at some height. It allows
to move the state between storage backends, to inspect it and to restore a
host from a known state, which is in demand for testing.

The package works with dumps stored in the file system using human-readable
encoding. Each dump consists of two files:

	'<label>-<height>-ledger.json': JSON header (see Header)
	'<label>-<height>-storage.csv': CSV of storage items

Storage CSV rows are 'key,value' where binary key-value are base64-encoded.
*/
package dump
