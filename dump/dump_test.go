package dump

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDump(t *testing.T, dir string, id ID, items map[string]string) {
	c, err := NewCreator(dir, id)
	require.NoError(t, err)
	defer c.Close()

	c.SetTotalSupply(big.NewInt(100))

	for k, v := range items {
		require.NoError(t, c.Write([]byte(k), []byte(v)))
	}

	require.NoError(t, c.Flush())
}

func TestIDString(t *testing.T) {
	id := ID{Label: "test-net", Height: 12}
	require.Equal(t, "test-net-12", id.String())

	var decoded ID
	require.NoError(t, decoded.decodeString(id.String()))
	require.Equal(t, id, decoded)

	for _, s := range []string{"", "12", "-12", "label", "label-x"} {
		require.Error(t, decoded.decodeString(s), s)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "backup", Height: 3}

	writeDump(t, dir, id, map[string]string{"a\x01": "\x64"})

	r, err := Open(dir, id)
	require.NoError(t, err)
	require.Equal(t, Header{
		Label:       "backup",
		Height:      3,
		TotalSupply: "100",
		Items:       1,
	}, r.Header())

	var got [][2][]byte
	require.NoError(t, r.IterateStorage(func(key, value []byte) error {
		got = append(got, [2][]byte{key, value})
		return nil
	}))
	require.Equal(t, [][2][]byte{{[]byte("a\x01"), []byte("\x64")}}, got)

	_, err = NewCreator(dir, id)
	require.ErrorIs(t, err, os.ErrExist)
}

func TestIterateDumps(t *testing.T) {
	dir := t.TempDir()

	writeDump(t, dir, ID{Label: "one", Height: 1}, nil)
	writeDump(t, dir, ID{Label: "two", Height: 5}, map[string]string{"s": "\x05"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), nil, 0600))

	var ids []ID

	require.NoError(t, IterateDumps(dir, func(id ID, r *Reader) {
		ids = append(ids, id)
		require.Equal(t, id.Height, r.Header().Height)
	}))
	require.ElementsMatch(t, []ID{{Label: "one", Height: 1}, {Label: "two", Height: 5}}, ids)

	require.NoError(t, IterateDumps(filepath.Join(dir, "missing"), func(ID, *Reader) {
		t.Fatal("unexpected dump")
	}))
}

func TestOpenCorrupted(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "bad", Height: 2}

	writeDump(t, dir, id, map[string]string{"k": "v"})

	err := os.WriteFile(filepath.Join(dir, "bad-2-storage.csv"), []byte("not base64!,AA==\n"), 0600)
	require.NoError(t, err)

	_, err = Open(dir, id)
	require.Error(t, err)

	_, err = Open(dir, ID{Label: "absent", Height: 1})
	require.Error(t, err)
}

func TestCreatorDiscard(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "partial", Height: 7}

	c, err := NewCreator(dir, id)
	require.NoError(t, err)
	require.NoError(t, c.Write([]byte("k"), []byte("v")))
	require.NoError(t, c.Discard())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	writeDump(t, dir, id, map[string]string{"k": "v"})

	_, err = Open(dir, id)
	require.NoError(t, err)
}
