package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Ledger applies state transitions to the Storage. Ledger is not safe for
// concurrent use: the host must call it sequentially.
type Ledger struct {
	st       Storage
	notifier Notifier
	log      *zap.Logger
}

// Option configures Ledger.
type Option func(*Ledger)

// WithNotifier sets the receiver of transfer notifications.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) {
		if n != nil {
			l.notifier = n
		}
	}
}

// WithLogger sets the logger. Ledger logs at debug level only.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// New returns Ledger working over the given storage.
func New(st Storage, opts ...Option) *Ledger {
	l := &Ledger{
		st:       st,
		notifier: nopNotifier{},
		log:      zap.NewNop(),
	}

	for _, o := range opts {
		o(l)
	}

	return l
}

// BalanceOf returns balance of the account, zero for unknown accounts.
func (l *Ledger) BalanceOf(account util.Uint160) *uint256.Int {
	return l.st.Get(BalanceKey(account))
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *uint256.Int {
	return l.st.Get(TotalSupplyKey)
}

// Grant credits the caller with amount and increases total supply by the
// same value. Caller balance must be zero, otherwise ErrAlreadyFunded is
// returned. Zero amount is allowed and changes nothing.
func (l *Ledger) Grant(caller util.Uint160, amount *uint256.Int) error {
	callerKey := BalanceKey(caller)

	if !l.st.Get(callerKey).IsZero() {
		l.log.Debug("grant rejected, account is already funded",
			zap.Stringer("caller", caller))
		return ErrAlreadyFunded
	}

	supply := l.st.Get(TotalSupplyKey)
	if _, overflow := new(uint256.Int).AddOverflow(supply, amount); overflow {
		l.log.Debug("grant rejected, total supply overflow",
			zap.Stringer("caller", caller), zap.Stringer("amount", amount.ToBig()))
		return ErrOverflow
	}

	l.st.Insert(callerKey, amount)
	l.st.Mutate(TotalSupplyKey, func(v *uint256.Int) {
		v.Add(v, amount)
	})

	l.log.Debug("grant applied",
		zap.Stringer("caller", caller), zap.Stringer("amount", amount.ToBig()))

	return nil
}

// Transfer moves amount from the caller to the recipient. The checks are
// made in the following order: zero amount (ErrZeroAmount), caller balance
// (ErrInsufficientBalance), recipient overflow (ErrOverflow). Transfer to
// self is allowed and keeps the balance. Notifier is called after all
// checks pass.
func (l *Ledger) Transfer(caller, recipient util.Uint160, amount *uint256.Int) error {
	if amount.IsZero() {
		l.log.Debug("transfer rejected, zero amount",
			zap.Stringer("from", caller), zap.Stringer("to", recipient))
		return ErrZeroAmount
	}

	var (
		fromKey = BalanceKey(caller)
		toKey   = BalanceKey(recipient)
		fromBal = l.st.Get(fromKey)
	)

	if fromBal.Lt(amount) {
		l.log.Debug("transfer rejected, not enough assets",
			zap.Stringer("from", caller), zap.Stringer("to", recipient),
			zap.Stringer("balance", fromBal.ToBig()), zap.Stringer("amount", amount.ToBig()))
		return ErrInsufficientBalance
	}

	if !caller.Equals(recipient) {
		if _, overflow := new(uint256.Int).AddOverflow(l.st.Get(toKey), amount); overflow {
			l.log.Debug("transfer rejected, recipient balance overflow",
				zap.Stringer("from", caller), zap.Stringer("to", recipient))
			return ErrOverflow
		}
	}

	l.notifier.NotifyTransfer(TransferEvent{
		From:   caller,
		To:     recipient,
		Amount: amount.Clone(),
	})

	l.st.Insert(fromKey, fromBal.Sub(fromBal, amount))
	l.st.Mutate(toKey, func(v *uint256.Int) {
		v.Add(v, amount)
	})

	l.log.Debug("transfer applied",
		zap.Stringer("from", caller), zap.Stringer("to", recipient),
		zap.Stringer("amount", amount.ToBig()))

	return nil
}

// CheckSupply compares the sum of all stored balances with the total
// supply. Storage must implement Iterator.
func (l *Ledger) CheckSupply() error {
	it, ok := l.st.(Iterator)
	if !ok {
		return ErrNotIterable
	}

	var (
		sum      uint256.Int
		overflow bool
		badKey   []byte
	)

	err := it.Iterate(BalancePrefix, func(key []byte, value *uint256.Int) bool {
		if _, ok := ParseBalanceKey(key); !ok {
			badKey = key
			return false
		}

		_, overflow = sum.AddOverflow(&sum, value)
		return !overflow
	})
	if err != nil {
		return fmt.Errorf("iterate balances: %w", err)
	}

	if badKey != nil {
		return fmt.Errorf("%w: malformed balance key %x", ErrSupplyMismatch, badKey)
	}

	if overflow {
		return fmt.Errorf("%w: sum of balances overflows", ErrSupplyMismatch)
	}

	supply := l.TotalSupply()
	if !sum.Eq(supply) {
		return fmt.Errorf("%w: balances sum to %s, total supply is %s",
			ErrSupplyMismatch, sum.ToBig(), supply.ToBig())
	}

	return nil
}
