package ledger

import "errors"

var (
	// ErrAlreadyFunded is returned by Grant when the caller balance is not
	// zero.
	ErrAlreadyFunded = errors.New("already funded")
	// ErrZeroAmount is returned by Transfer of zero amount.
	ErrZeroAmount = errors.New("zero amount")
	// ErrInsufficientBalance is returned by Transfer when the caller has
	// less than the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOverflow is returned when the transition would overflow the
	// 256-bit range of the balance or the total supply.
	ErrOverflow = errors.New("balance overflow")

	// ErrSupplyMismatch is returned by CheckSupply when the sum of all
	// balances differs from the total supply.
	ErrSupplyMismatch = errors.New("total supply mismatch")
	// ErrNotIterable is returned by CheckSupply when the Storage does not
	// implement Iterator.
	ErrNotIterable = errors.New("storage is not iterable")
)
