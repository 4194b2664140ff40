package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/faucet-ledger/store"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), c)
	require.Equal(t, store.InMemory, c.Storage.Type)
	require.Equal(t, DefaultLogLevel, c.Logger.Level)
	require.Equal(t, DefaultLogEncoding, c.Logger.Encoding)

	h, err := c.Emitter()
	require.NoError(t, err)
	require.Equal(t, util.Uint160{}, h)
}

func TestParse(t *testing.T) {
	h := util.Uint160{1, 2, 3}

	c, err := Parse([]byte(`
Storage:
  Type: boltdb
  BoltDBOptions:
    FilePath: /tmp/ledger.bolt
Logger:
  Level: debug
  Encoding: json
ScriptHash: ` + h.StringLE() + `
Aliases:
  alice: NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP
`))
	require.NoError(t, err)

	require.Equal(t, store.BoltDB, c.Storage.Type)
	require.Equal(t, "/tmp/ledger.bolt", c.Storage.BoltDBOptions.FilePath)
	require.Equal(t, "debug", c.Logger.Level)
	require.Equal(t, "json", c.Logger.Encoding)
	require.Equal(t, map[string]string{"alice": "NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP"}, c.Aliases)

	emitter, err := c.Emitter()
	require.NoError(t, err)
	require.Equal(t, h, emitter)

	log, err := c.Logger.Build()
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestParseBackendDefaults(t *testing.T) {
	c, err := Parse([]byte("Storage:\n  Type: leveldb\n"))
	require.NoError(t, err)
	require.Equal(t, DefaultLevelDBDir, c.Storage.LevelDBOptions.DataDirectoryPath)

	c, err = Parse([]byte("Storage:\n  Type: boltdb\n"))
	require.NoError(t, err)
	require.Equal(t, DefaultBoltDBFile, c.Storage.BoltDBOptions.FilePath)
}

func TestParseInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"unknown field":   "Unknown: 1\n",
		"storage type":    "Storage:\n  Type: badger\n",
		"log level":       "Logger:\n  Level: loud\n",
		"log encoding":    "Logger:\n  Encoding: xml\n",
		"script hash":     "ScriptHash: 1234\n",
		"malformed YAML":  "Storage: [\n",
		"not hex emitter": "ScriptHash: zz00000000000000000000000000000000000000\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faucet.yml")

	_, err := Load(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	c := Default()
	c.Logger.Level = "warn"
	c.Aliases = map[string]string{"bob": util.Uint160{7}.StringLE()}

	require.NoError(t, Save(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}
