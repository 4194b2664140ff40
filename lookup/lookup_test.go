package lookup

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func randomAccount(t *testing.T) util.Uint160 {
	p, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return p.GetScriptHash()
}

func TestResolve(t *testing.T) {
	var (
		h    = randomAccount(t)
		addr = address.Uint160ToString(h)
	)

	r, err := New(map[string]string{"alice": addr})
	require.NoError(t, err)

	for _, ref := range []string{
		"alice",
		addr,
		h.StringLE(),
		"0x" + h.StringLE(),
	} {
		got, err := r.Resolve(ref)
		require.NoError(t, err, ref)
		require.Equal(t, h, got, ref)
	}
}

func TestResolveAddressWalletBytes(t *testing.T) {
	h := randomAccount(t)

	// wallet form: version byte, script hash (BE), 4-byte checksum
	wallet, err := base58.Decode(address.Uint160ToString(h))
	require.NoError(t, err)
	require.Len(t, wallet, 25)

	r, err := New(nil)
	require.NoError(t, err)

	got, err := r.Resolve(base58.Encode(wallet))
	require.NoError(t, err)
	require.Equal(t, h.BytesBE(), got.BytesBE())
	require.Equal(t, wallet[1:21], got.BytesBE())
}

func TestResolveFailures(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	for _, ref := range []string{
		"",
		"bob",
		"0x1234",
		"zz" + util.Uint160{}.StringLE()[2:],
	} {
		_, err := r.Resolve(ref)
		require.ErrorIs(t, err, ErrUnresolved, ref)
	}
}

func TestNewInvalidAliases(t *testing.T) {
	_, err := New(map[string]string{"bob": "not an address"})
	require.ErrorIs(t, err, ErrUnresolved)

	_, err = New(map[string]string{"": util.Uint160{}.StringLE()})
	require.Error(t, err)

	// aliases do not chain
	h := randomAccount(t)
	_, err = New(map[string]string{
		"alice": h.StringLE(),
		"bob":   "alice",
	})
	require.Error(t, err)
}
