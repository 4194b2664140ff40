/*
Package ledger implements the faucet ledger state machine.

The ledger tracks balances of a single fungible unit per account together
with the total supply. Two transitions change the state: Grant credits an
account whose balance is zero, Transfer moves units between accounts. Every
transition either commits in full or leaves the state untouched.

State lives in a Storage provided by the host under two kinds of keys:

	'a' || account script hash (big-endian) -> balance
	's'                                     -> total supply

Values are unsigned 256-bit integers. Absent keys read as zero, so the
genesis state is an empty storage.

# Notifications

Successful Transfer produces a notification passed to the Notifier:

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Grant produces no notification.
*/
package ledger
