package faucet

import (
	"github.com/nspcc-dev/faucet-ledger/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	symbol   = "FAUCET"
	decimals = 0

	accPrefix = 'a'
	supplyKey = 's'
)

// Exceptions thrown by the contract methods.
const (
	ErrAlreadyFunded       = "already funded"
	ErrZeroAmount          = "zero amount"
	ErrInsufficientBalance = "insufficient balance"
	ErrNegativeAmount      = "negative amount"
	ErrInvalidAccount      = "invalid account"
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("faucet contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("faucet contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Symbol is a NEP-17 standard method that returns faucet token symbol.
func Symbol() string {
	return symbol
}

// Decimals is a NEP-17 standard method that returns precision of faucet
// balances.
func Decimals() int {
	return decimals
}

// TotalSupply is a NEP-17 standard method that returns the sum of all
// balances.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return getInt(ctx, []byte{supplyKey})
}

// BalanceOf is a NEP-17 standard method that returns balance of the specified
// account. Unknown accounts have zero balance.
func BalanceOf(account interop.Hash160) int {
	checkAccount(account)

	ctx := storage.GetReadOnlyContext()
	return getInt(ctx, balanceKey(account))
}

// Grant credits caller account with the amount and increases total supply
// by the same value. It can be invoked only by the caller account owner while
// its balance is zero. Zero amount is accepted and changes nothing.
func Grant(caller interop.Hash160, amount int) {
	checkAccount(caller)
	common.CheckWitness(caller)

	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	ctx := storage.GetContext()
	key := balanceKey(caller)

	if getInt(ctx, key) != 0 {
		panic(ErrAlreadyFunded)
	}

	putInt(ctx, key, amount)
	putInt(ctx, []byte{supplyKey}, getInt(ctx, []byte{supplyKey})+amount)

	runtime.Log("faucet grant")
}

// Transfer is a NEP-17 standard method that transfers assets from one
// account to another. It can be invoked only by the sender account owner.
// Amount must be positive and not exceed the sender balance. Transfer to
// self keeps the balance.
//
// It produces Transfer notification. If recipient is a deployed contract,
// its onNEP17Payment method is called with the data.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	checkAccount(from)
	checkAccount(to)
	common.CheckWitness(from)

	if amount < 0 {
		panic(ErrNegativeAmount)
	}
	if amount == 0 {
		panic(ErrZeroAmount)
	}

	ctx := storage.GetContext()
	fromKey := balanceKey(from)
	fromBalance := getInt(ctx, fromKey)

	if fromBalance < amount {
		runtime.Log("not enough assets")
		panic(ErrInsufficientBalance)
	}

	runtime.Notify("Transfer", from, to, amount)

	if !from.Equals(to) {
		toKey := balanceKey(to)

		putInt(ctx, fromKey, fromBalance-amount)
		putInt(ctx, toKey, getInt(ctx, toKey)+amount)
	}

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}

	return true
}

func checkAccount(h interop.Hash160) {
	if len(h) != interop.Hash160Len {
		panic(ErrInvalidAccount)
	}
}

func balanceKey(h interop.Hash160) []byte {
	return append([]byte{accPrefix}, h...)
}

func getInt(ctx storage.Context, key []byte) int {
	v := storage.Get(ctx, key)
	if v == nil {
		return 0
	}

	return v.(int)
}

// putInt stores v under the key, zero deletes the key.
func putInt(ctx storage.Context, key []byte, v int) {
	if v == 0 {
		storage.Delete(ctx, key)
		return
	}

	storage.Put(ctx, key, v)
}
