/*
Package faucet implements Faucet contract which keeps the faucet ledger on
chain.

Faucet contract stores per-account balances of a single fungible unit. Any
account with zero balance can receive a grant of arbitrary amount once, the
grant increases total supply. Funded accounts move assets to each other with
NEP-17 compatible transfer method, total supply is kept equal to the sum of
all balances.

Account balances are stored under 'a' prefix followed by the account script
hash, total supply is stored under 's' key. Zero balances are not stored.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification. It is produced
on successful transfer only, grants are silent.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package faucet
