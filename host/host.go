/*
Package host executes faucet ledger calls on behalf of authenticated callers.

Host owns a persistent storage backend and evaluates calls strictly one by
one. Each transition runs against its own write-buffering overlay: the
overlay is committed only if the ledger accepts the call, so a rejected call
leaves no trace in the backend. Transfer notifications are buffered during
the call and delivered to subscribers after the commit in the neo-go
notification format:

	Transfer
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Host also counts committed transitions (height) under a dedicated storage
key which is never touched by the ledger.
*/
package host

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/faucet-ledger/dump"
	"github.com/nspcc-dev/faucet-ledger/ledger"
	"github.com/nspcc-dev/faucet-ledger/lookup"
	"github.com/nspcc-dev/faucet-ledger/store"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// TransferNotification is a name of the notification emitted on transfer.
const TransferNotification = "Transfer"

// HeightKey is a storage key of the committed transitions counter.
var HeightKey = []byte{'h'}

var (
	// ErrInvalidAmount is returned when requested amount can not be
	// represented as an unsigned 256-bit integer.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotEmpty is returned on attempt to restore a dump into the
	// storage which already has some state.
	ErrNotEmpty = errors.New("storage is not empty")

	// ErrUnknownKey is returned on attempt to restore a storage item out of
	// the ledger key namespace.
	ErrUnknownKey = errors.New("unknown storage key")
)

// Prm groups parameters of the Host.
type Prm struct {
	// Logger of the Host. Optional: no logging by default.
	Logger *zap.Logger

	// Persistent storage of the ledger. Required.
	Backend storage.Store

	// Recipient reference resolver. Optional: addresses and hex script
	// hashes only by default.
	Resolver lookup.Resolver

	// Registerer of the Host metrics. Optional: metrics are collected but
	// not exported by default.
	Registerer prometheus.Registerer

	// Script hash put into emitted notifications.
	ScriptHash util.Uint160
}

// Receipt describes committed state transition.
type Receipt struct {
	// Unique identifier of the call.
	ID uuid.UUID
	// Called method.
	Method string
	// Authenticated caller.
	Caller util.Uint160
	// Ledger height after the transition.
	Height uint64
	// Notifications emitted by the call in emission order.
	Notifications []state.NotificationEvent
}

// Host serializes ledger calls over the persistent storage.
type Host struct {
	log        *zap.Logger
	backend    storage.Store
	resolver   lookup.Resolver
	scriptHash util.Uint160
	metrics    *metrics

	mtx      sync.Mutex
	handlers []func(state.NotificationEvent)
}

// New constructs Host from the given parameters.
func New(prm Prm) (*Host, error) {
	if prm.Backend == nil {
		return nil, errors.New("missing storage backend")
	}

	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	if prm.Resolver == nil {
		r, err := lookup.New(nil)
		if err != nil {
			return nil, fmt.Errorf("init default resolver: %w", err)
		}
		prm.Resolver = r
	}

	m, err := newMetrics(prm.Registerer)
	if err != nil {
		return nil, err
	}

	h := &Host{
		log:        prm.Logger,
		backend:    prm.Backend,
		resolver:   prm.Resolver,
		scriptHash: prm.ScriptHash,
		metrics:    m,
	}

	height, err := h.Height()
	if err != nil {
		return nil, err
	}

	m.height.Set(float64(height))

	return h, nil
}

// Subscribe registers handler of the notifications emitted by committed
// calls. Handlers are called synchronously in the subscription order while
// the Host is locked, so they must not call Host methods.
func (h *Host) Subscribe(handler func(state.NotificationEvent)) {
	h.mtx.Lock()
	h.handlers = append(h.handlers, handler)
	h.mtx.Unlock()
}

// Resolve resolves the account reference using Host resolver.
func (h *Host) Resolve(ref string) (util.Uint160, error) {
	return h.resolver.Resolve(ref)
}

// Grant credits amount to the caller if its balance is zero.
func (h *Host) Grant(caller util.Uint160, amount *big.Int) (*Receipt, error) {
	v, err := toBalance(amount)
	if err != nil {
		h.metrics.observe(methodGrant, resultRejected)
		return nil, err
	}

	return h.execute(methodGrant, caller, func(l *ledger.Ledger) error {
		return l.Grant(caller, v)
	})
}

// Transfer moves amount from the caller to the account referenced by
// recipientRef. Unresolvable reference fails the call before the ledger
// is invoked.
func (h *Host) Transfer(caller util.Uint160, recipientRef string, amount *big.Int) (*Receipt, error) {
	recipient, err := h.resolver.Resolve(recipientRef)
	if err != nil {
		h.metrics.observe(methodTransfer, resultRejected)
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	v, err := toBalance(amount)
	if err != nil {
		h.metrics.observe(methodTransfer, resultRejected)
		return nil, err
	}

	return h.execute(methodTransfer, caller, func(l *ledger.Ledger) error {
		return l.Transfer(caller, recipient, v)
	})
}

func (h *Host) execute(method string, caller util.Uint160, op func(*ledger.Ledger) error) (*Receipt, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	res := &Receipt{
		ID:     uuid.New(),
		Method: method,
		Caller: caller,
	}

	log := h.log.With(
		zap.Stringer("id", res.ID),
		zap.String("method", method),
		zap.Stringer("caller", caller),
	)

	st := store.New(h.backend)

	l := ledger.New(st,
		ledger.WithLogger(log),
		ledger.WithNotifier(ledger.NotifierFunc(func(e ledger.TransferEvent) {
			res.Notifications = append(res.Notifications, h.transferNotification(e))
		})),
	)

	err := op(l)

	if stErr := st.Err(); stErr != nil {
		h.metrics.observe(method, resultFailed)
		log.Error("failed to read ledger state", zap.Error(stErr))
		return nil, fmt.Errorf("read ledger state: %w", stErr)
	}

	if err != nil {
		h.metrics.observe(method, resultRejected)
		log.Info("call rejected", zap.Error(err))
		return nil, err
	}

	height := st.Get(HeightKey)
	height.AddUint64(height, 1)
	st.Insert(HeightKey, height)

	n, err := st.Commit()
	if err != nil {
		h.metrics.observe(method, resultFailed)
		log.Error("failed to commit ledger state", zap.Error(err))
		return nil, fmt.Errorf("commit %s: %w", method, err)
	}

	res.Height = height.Uint64()

	h.metrics.observe(method, resultSuccess)
	h.metrics.height.Set(float64(res.Height))

	log.Info("call committed",
		zap.Uint64("height", res.Height),
		zap.Int("items", n),
		zap.Int("notifications", len(res.Notifications)),
	)

	for i := range res.Notifications {
		for _, handler := range h.handlers {
			handler(res.Notifications[i])
		}
	}

	return res, nil
}

func (h *Host) transferNotification(e ledger.TransferEvent) state.NotificationEvent {
	return state.NotificationEvent{
		ScriptHash: h.scriptHash,
		Name:       TransferNotification,
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(e.From.BytesBE()),
			stackitem.NewByteArray(e.To.BytesBE()),
			stackitem.NewBigInteger(e.Amount.ToBig()),
		}),
	}
}

// BalanceOf returns current balance of the account.
func (h *Host) BalanceOf(account util.Uint160) (*big.Int, error) {
	return h.query(func(l *ledger.Ledger) *uint256.Int {
		return l.BalanceOf(account)
	})
}

// TotalSupply returns current total supply.
func (h *Host) TotalSupply() (*big.Int, error) {
	return h.query(func(l *ledger.Ledger) *uint256.Int {
		return l.TotalSupply()
	})
}

func (h *Host) query(f func(*ledger.Ledger) *uint256.Int) (*big.Int, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	st := store.New(h.backend)

	v := f(ledger.New(st))

	if err := st.Err(); err != nil {
		return nil, fmt.Errorf("read ledger state: %w", err)
	}

	return v.ToBig(), nil
}

// Height returns number of committed transitions.
func (h *Host) Height() (uint64, error) {
	st := store.New(h.backend)

	v := st.Get(HeightKey)
	if err := st.Err(); err != nil {
		return 0, fmt.Errorf("read height: %w", err)
	}

	if !v.IsUint64() {
		return 0, fmt.Errorf("height %s overflows uint64", v.ToBig())
	}

	return v.Uint64(), nil
}

// CheckSupply verifies that total supply equals the sum of all balances.
func (h *Host) CheckSupply() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return ledger.New(store.New(h.backend)).CheckSupply()
}

// namespace lists prefixes of all keys kept in the storage in ascending
// order.
var namespace = [][]byte{ledger.BalancePrefix, HeightKey, ledger.TotalSupplyKey}

// validKey checks that the key belongs to the ledger or the Host.
func validKey(key []byte) bool {
	if _, ok := ledger.ParseBalanceKey(key); ok {
		return true
	}

	return bytes.Equal(key, ledger.TotalSupplyKey) || bytes.Equal(key, HeightKey)
}

// seekAll passes all stored items to f until it returns false.
func seekAll(st *store.Store, f func(key, value []byte) bool) error {
	var stop bool

	for _, prefix := range namespace {
		err := st.SeekRaw(prefix, func(key, value []byte) bool {
			stop = !f(key, value)
			return !stop
		})
		if err != nil {
			return fmt.Errorf("seek '%x' items: %w", prefix, err)
		}

		if stop {
			break
		}
	}

	return nil
}

// Dump writes current ledger state into the directory as the dump with the
// given label. Dump is identified by the label and current height. Nothing
// is left in the directory on failure.
func (h *Host) Dump(dir, label string) (dump.ID, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	height, err := h.Height()
	if err != nil {
		return dump.ID{}, err
	}

	id := dump.ID{Label: label, Height: height}

	c, err := dump.NewCreator(dir, id)
	if err != nil {
		return dump.ID{}, fmt.Errorf("create dump: %w", err)
	}

	err = h.writeDump(c)
	if err != nil {
		if dErr := c.Discard(); dErr != nil {
			h.log.Error("failed to discard unfinished dump", zap.Stringer("dump", id), zap.Error(dErr))
		}
		return dump.ID{}, err
	}

	c.Close()

	h.log.Info("ledger state dumped", zap.Stringer("dump", id), zap.String("dir", dir))

	return id, nil
}

func (h *Host) writeDump(c *dump.Creator) error {
	st := store.New(h.backend)

	c.SetTotalSupply(ledger.New(st).TotalSupply().ToBig())

	var wErr error

	err := seekAll(st, func(key, value []byte) bool {
		wErr = c.Write(key, value)
		return wErr == nil
	})
	if err != nil {
		return err
	}

	if wErr != nil {
		return fmt.Errorf("write storage item: %w", wErr)
	}

	if err = st.Err(); err != nil {
		return fmt.Errorf("read ledger state: %w", err)
	}

	err = c.Flush()
	if err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}

	return nil
}

// Restore fills empty storage with the ledger state from the dump. Restored
// state must consist of ledger keys only, be consistent with the dump header
// and keep the supply invariant, otherwise nothing is written.
func (h *Host) Restore(r *dump.Reader) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	err := h.restore(r)
	if err != nil {
		h.metrics.observe(methodRestore, resultRejected)
		return err
	}

	h.metrics.observe(methodRestore, resultSuccess)
	h.metrics.height.Set(float64(r.Header().Height))

	h.log.Info("ledger state restored",
		zap.String("label", r.Header().Label),
		zap.Uint64("height", r.Header().Height),
		zap.Int("items", r.Header().Items),
	)

	return nil
}

func (h *Host) restore(r *dump.Reader) error {
	st := store.New(h.backend)

	var empty = true

	err := seekAll(st, func([]byte, []byte) bool {
		empty = false
		return false
	})
	if err != nil {
		return err
	}

	if !empty {
		return ErrNotEmpty
	}

	err = r.IterateStorage(func(key, value []byte) error {
		if !validKey(key) {
			return fmt.Errorf("%w: %x", ErrUnknownKey, key)
		}

		return st.PutRaw(key, value)
	})
	if err != nil {
		return fmt.Errorf("restore storage item: %w", err)
	}

	hdr := r.Header()

	if height := st.Get(HeightKey); !height.Eq(uint256.NewInt(hdr.Height)) {
		return fmt.Errorf("restored height %s differs from the declared %d", height.ToBig(), hdr.Height)
	}

	l := ledger.New(st)

	if supply := l.TotalSupply().ToBig().String(); supply != hdr.TotalSupply {
		return fmt.Errorf("restored total supply %s differs from the declared %s", supply, hdr.TotalSupply)
	}

	err = l.CheckSupply()
	if err != nil {
		return fmt.Errorf("verify restored state: %w", err)
	}

	_, err = st.Commit()
	if err != nil {
		return fmt.Errorf("commit restored state: %w", err)
	}

	return nil
}

func toBalance(amount *big.Int) (*uint256.Int, error) {
	v, err := store.FromBig(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return v, nil
}
