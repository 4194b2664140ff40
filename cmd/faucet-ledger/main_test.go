package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/faucet-ledger/host"
	"github.com/nspcc-dev/faucet-ledger/ledger"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
)

const testPassword = "one"

func newWallet(t *testing.T, dir, name string) (string, string) {
	path := filepath.Join(dir, name+".json")

	w, err := wallet.NewWallet(path)
	require.NoError(t, err)
	require.NoError(t, w.CreateAccount(name, testPassword))
	require.Len(t, w.Accounts, 1)

	addr := w.Accounts[0].Address
	w.Close()

	return path, addr
}

func writeConfig(t *testing.T, dir, name, aliases string) string {
	path := filepath.Join(dir, name+".yml")

	err := os.WriteFile(path, []byte(`
Storage:
  Type: boltdb
  BoltDBOptions:
    FilePath: `+filepath.Join(dir, name+".bolt")+`
Logger:
  Level: error
Aliases:
`+aliases), 0600)
	require.NoError(t, err)

	return path
}

type cliRunner struct {
	t      *testing.T
	config string
}

func (x cliRunner) run(args ...string) (string, error) {
	var buf bytes.Buffer

	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf

	err := app.Run(append([]string{"faucet-ledger", "--config", x.config}, args...))

	return buf.String(), err
}

func (x cliRunner) mustRun(args ...string) string {
	out, err := x.run(args...)
	require.NoError(x.t, err, out)
	return out
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()

	aliceWallet, aliceAddr := newWallet(t, dir, "alice")
	bobWallet, bobAddr := newWallet(t, dir, "bob")

	fl := cliRunner{t: t, config: writeConfig(t, dir, "main", "  bob: "+bobAddr+"\n")}

	out := fl.mustRun("grant", "--wallet", aliceWallet, "--password", testPassword, "100")
	require.Contains(t, out, "grant by")
	require.Contains(t, out, "height 1")

	_, err := fl.run("grant", "--wallet", aliceWallet, "--password", testPassword, "5")
	require.ErrorIs(t, err, ledger.ErrAlreadyFunded)

	_, err = fl.run("grant", "--wallet", bobWallet, "--password", "wrong", "5")
	require.Error(t, err)

	_, err = fl.run("grant", "--wallet", bobWallet, "--password", testPassword, "--", "-5")
	require.ErrorIs(t, err, host.ErrInvalidAmount)

	_, err = fl.run("grant", "--wallet", bobWallet, "--password", testPassword, "five")
	require.Error(t, err)

	out = fl.mustRun("transfer", "--wallet", aliceWallet, "--password", testPassword, "bob", "40")
	require.Contains(t, out, host.TransferNotification)
	require.Contains(t, out, "height 2")

	_, err = fl.run("transfer", "--wallet", aliceWallet, "--password", testPassword, "bob", "61")
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	_, err = fl.run("transfer", "--wallet", aliceWallet, "--password", testPassword, "bob", "0")
	require.ErrorIs(t, err, ledger.ErrZeroAmount)

	require.Equal(t, "60\n", fl.mustRun("balance", aliceAddr))
	require.Equal(t, "40\n", fl.mustRun("balance", "bob"))
	require.Equal(t, "100\n", fl.mustRun("supply"))
	require.Contains(t, fl.mustRun("verify"), "height 2")

	dumps := filepath.Join(dir, "dumps")
	require.NoError(t, os.Mkdir(dumps, 0700))

	require.Contains(t, fl.mustRun("dump", "--dir", dumps, "--label", "backup"), "backup-2")

	restored := cliRunner{t: t, config: writeConfig(t, dir, "restored", "")}

	_, err = restored.run("restore", "--dir", dumps, "--label", "backup", "--height", "1")
	require.Error(t, err, "no dump at this height")

	restored.mustRun("restore", "--dir", dumps, "--label", "backup", "--height", "2")
	require.Equal(t, "40\n", restored.mustRun("balance", bobAddr))
	require.Equal(t, "100\n", restored.mustRun("supply"))

	_, err = restored.run("restore", "--dir", dumps, "--label", "backup", "--height", "2")
	require.ErrorIs(t, err, host.ErrNotEmpty)
}

func TestCLIArguments(t *testing.T) {
	fl := cliRunner{t: t, config: writeConfig(t, t.TempDir(), "args", "")}

	for _, args := range [][]string{
		{"grant"},
		{"grant", "--password", testPassword, "1"},
		{"transfer", "1"},
		{"balance"},
		{"balance", "unknown"},
		{"dump"},
		{"restore", "--height", "1"},
	} {
		_, err := fl.run(args...)
		require.Error(t, err, args)
	}
}
