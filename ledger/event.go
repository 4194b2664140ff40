package ledger

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// TransferEvent describes a committed transfer.
type TransferEvent struct {
	From   util.Uint160
	To     util.Uint160
	Amount *uint256.Int
}

// Notifier receives ledger notifications.
type Notifier interface {
	// NotifyTransfer is called once per successful Transfer. It is never
	// called for a rejected one.
	NotifyTransfer(TransferEvent)
}

// NotifierFunc is a function adapter for Notifier.
type NotifierFunc func(TransferEvent)

// NotifyTransfer implements Notifier.
func (f NotifierFunc) NotifyTransfer(e TransferEvent) {
	f(e)
}

type nopNotifier struct{}

func (nopNotifier) NotifyTransfer(TransferEvent) {}
