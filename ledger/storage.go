package ledger

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const (
	accPrefix = 'a'
	supplyKey = 's'
)

// TotalSupplyKey is a storage key of the total supply value.
var TotalSupplyKey = []byte{supplyKey}

// BalancePrefix is a common prefix of all balance keys.
var BalancePrefix = []byte{accPrefix}

// Storage is a key-value backend the Ledger keeps its state in. Storage
// must behave as if every absent key holds zero.
type Storage interface {
	// Get returns value stored under the key or zero if there is none.
	// Returned value is owned by the caller.
	Get(key []byte) *uint256.Int
	// Insert stores value under the key. Zero value is equivalent to
	// removing the key. Storage must not retain value.
	Insert(key []byte, value *uint256.Int)
	// Mutate passes current value of the key (zero if absent) to f and
	// stores the result.
	Mutate(key []byte, f func(*uint256.Int))
}

// Iterator is implemented by storages which can enumerate stored values.
type Iterator interface {
	// Iterate passes every key with the given prefix and its value to f
	// in ascending key order until f returns false.
	Iterate(prefix []byte, f func(key []byte, value *uint256.Int) bool) error
}

// BalanceKey returns storage key of the account balance.
func BalanceKey(account util.Uint160) []byte {
	return append([]byte{accPrefix}, account.BytesBE()...)
}

// ParseBalanceKey extracts account from the balance storage key. Returns
// false if the key is not a balance key.
func ParseBalanceKey(key []byte) (util.Uint160, bool) {
	if len(key) != 1+util.Uint160Size || key[0] != accPrefix {
		return util.Uint160{}, false
	}

	acc, err := util.Uint160DecodeBytesBE(key[1:])
	if err != nil {
		return util.Uint160{}, false
	}

	return acc, true
}
