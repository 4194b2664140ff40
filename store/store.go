/*
Package store provides ledger.Storage over neo-go key-value backends.

Store buffers all writes in a storage.MemCachedStore layered over the
backend. Nothing reaches the backend until Commit, so a batch of
transitions is persisted atomically or not at all. Values are encoded in
the NeoVM integer format (see encoding/bigint), the same format the faucet
contract keeps in its storage.
*/
package store

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
)

// ErrEmptyPrefix is returned on attempt to seek without a key prefix, neo-go
// storages index items by the first key byte.
var ErrEmptyPrefix = errors.New("empty seek prefix")

// Supported backend types of dbconfig.DBConfiguration.
const (
	InMemory = "inmemory"
	BoltDB   = "boltdb"
	LevelDB  = "leveldb"
)

// Store is a write-buffering ledger.Storage. A read or decoding failure
// poisons the Store: all subsequent reads return zero and Commit fails.
type Store struct {
	cache *storage.MemCachedStore
	err   error
}

// New returns Store over the backend. The backend is written only by
// Commit.
func New(backend storage.Store) *Store {
	return &Store{
		cache: storage.NewMemCachedStore(backend),
	}
}

// Open opens the backend described by cfg.
func Open(cfg dbconfig.DBConfiguration) (storage.Store, error) {
	switch cfg.Type {
	case InMemory, BoltDB, LevelDB:
	default:
		return nil, fmt.Errorf("unknown storage type '%s'", cfg.Type)
	}

	st, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Type, err)
	}

	return st, nil
}

// Err returns the error that poisoned the Store, if any.
func (s *Store) Err() error {
	return s.err
}

// Get implements ledger.Storage.
func (s *Store) Get(key []byte) *uint256.Int {
	if s.err != nil {
		return new(uint256.Int)
	}

	raw, err := s.cache.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.err = fmt.Errorf("read key %x: %w", key, err)
		}
		return new(uint256.Int)
	}

	v, err := Decode(raw)
	if err != nil {
		s.err = fmt.Errorf("decode value of key %x: %w", key, err)
		return new(uint256.Int)
	}

	return v
}

// Insert implements ledger.Storage. Zero value deletes the key.
func (s *Store) Insert(key []byte, value *uint256.Int) {
	if value.IsZero() {
		s.cache.Delete(key)
		return
	}

	s.cache.Put(bytes.Clone(key), Encode(value))
}

// Mutate implements ledger.Storage.
func (s *Store) Mutate(key []byte, f func(*uint256.Int)) {
	v := s.Get(key)
	f(v)
	s.Insert(key, v)
}

// Iterate implements ledger.Iterator. Both buffered and persisted items
// are visited. Prefix must not be empty.
func (s *Store) Iterate(prefix []byte, f func(key []byte, value *uint256.Int) bool) error {
	if s.err != nil {
		return s.err
	}

	if len(prefix) == 0 {
		return ErrEmptyPrefix
	}

	var err error

	s.cache.Seek(storage.SeekRange{Prefix: prefix}, func(k, v []byte) bool {
		val, decErr := Decode(v)
		if decErr != nil {
			err = fmt.Errorf("decode value of key %x: %w", k, decErr)
			return false
		}

		return f(bytes.Clone(k), val)
	})

	return err
}

// PutRaw stores raw encoded value under the key bypassing decoding. It is
// used to restore dumped state.
func (s *Store) PutRaw(key, value []byte) error {
	if _, err := Decode(value); err != nil {
		return fmt.Errorf("decode value of key %x: %w", key, err)
	}

	s.cache.Put(bytes.Clone(key), bytes.Clone(value))

	return nil
}

// SeekRaw passes every stored key-value pair with the given prefix to f in
// ascending key order until f returns false. Prefix must not be empty.
func (s *Store) SeekRaw(prefix []byte, f func(key, value []byte) bool) error {
	if len(prefix) == 0 {
		return ErrEmptyPrefix
	}

	s.cache.Seek(storage.SeekRange{Prefix: prefix}, f)

	return nil
}

// Commit persists buffered changes into the backend and returns the number
// of written items. Commit fails without touching the backend if the Store
// is poisoned.
func (s *Store) Commit() (int, error) {
	if s.err != nil {
		return 0, fmt.Errorf("refuse to persist poisoned batch: %w", s.err)
	}

	n, err := s.cache.PersistSync()
	if err != nil {
		return 0, fmt.Errorf("persist batch: %w", err)
	}

	return n, nil
}

// Encode returns NeoVM integer representation of v.
func Encode(v *uint256.Int) []byte {
	return bigint.ToBytes(v.ToBig())
}

// Decode parses NeoVM integer into an unsigned 256-bit value.
func Decode(raw []byte) (*uint256.Int, error) {
	return FromBig(bigint.FromBytes(raw))
}

// FromBig converts non-negative b into an unsigned 256-bit value.
func FromBig(b *big.Int) (*uint256.Int, error) {
	if b == nil {
		return nil, errors.New("nil value")
	}
	if b.Sign() < 0 {
		return nil, errors.New("negative value")
	}

	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.New("value exceeds 256 bits")
	}

	return v, nil
}
