package faucet

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func transferItem(from, to util.Uint160, amount int64) *stackitem.Array {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(from.BytesBE()),
		stackitem.NewByteArray(to.BytesBE()),
		stackitem.NewBigInteger(big.NewInt(amount)),
	})
}

func TestTransferEventsFromApplicationLog(t *testing.T) {
	var (
		a = util.Uint160{1}
		b = util.Uint160{2}
	)

	_, err := TransferEventsFromApplicationLog(nil)
	require.Error(t, err)

	events, err := TransferEventsFromApplicationLog(&result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{Name: "Transfer", Item: transferItem(a, b, 10)},
				{Name: "Other", Item: stackitem.NewArray(nil)},
				{Name: "Transfer", Item: transferItem(b, a, 3)},
			},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, []*TransferEvent{
		{From: a, To: b, Amount: big.NewInt(10)},
		{From: b, To: a, Amount: big.NewInt(3)},
	}, events)

	_, err = TransferEventsFromApplicationLog(&result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{Name: "Transfer", Item: stackitem.NewArray([]stackitem.Item{stackitem.Null{}})},
			},
		}},
	})
	require.Error(t, err)
}

func TestTransferEventFromStackItem(t *testing.T) {
	var e TransferEvent

	require.Error(t, e.FromStackItem(nil))

	require.Error(t, e.FromStackItem(stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray([]byte{1, 2, 3}),
		stackitem.NewByteArray(util.Uint160{}.BytesBE()),
		stackitem.NewBigInteger(big.NewInt(1)),
	})), "short hash")

	require.Error(t, e.FromStackItem(stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(util.Uint160{}.BytesBE()),
		stackitem.NewByteArray(util.Uint160{}.BytesBE()),
		stackitem.NewArray(nil),
	})), "non-integer amount")
}
