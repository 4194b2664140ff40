package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// IterateDumps iterates over all dumps collected by the Creator model in
// the specified directory, and passes ID and Reader of each dump into f.
// Files not following the naming model are skipped.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if e != nil {
			if errors.Is(e, fs.ErrNotExist) {
				return nil
			}
			return e
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, sep+headerFileSuffix) {
			return nil
		}

		var id ID

		err := id.decodeString(strings.TrimSuffix(name, sep+headerFileSuffix))
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		r, err := Open(dir, id)
		if err != nil {
			return err
		}

		f(id, r)

		return nil
	})
}

// Open reads the dump with the given ID from the specified directory.
func Open(dir string, id ID) (*Reader, error) {
	var streams dumpStreams

	err := initDumpStreams(&streams, dir, id, true)
	if err != nil {
		return nil, fmt.Errorf("init dump streams ('%s'): %w", id, err)
	}

	defer streams.close()

	var r Reader

	err = r.fromDumpStreams(streams.header, streams.storageItems)
	if err != nil {
		return nil, fmt.Errorf("init dump reader ('%s'): %w", id, err)
	}

	if r.header.Label != id.Label || r.header.Height != id.Height {
		return nil, fmt.Errorf("dump '%s' header describes '%s'", id, ID{Label: r.header.Label, Height: r.header.Height})
	}

	if r.header.Items != len(r.items) {
		return nil, fmt.Errorf("dump '%s' declares %d items, found %d", id, r.header.Items, len(r.items))
	}

	return &r, nil
}

type kv struct{ k, v []byte }

// Reader reads ledger state collected in the superior dump.
type Reader struct {
	header Header
	items  []kv
}

func (x *Reader) fromDumpStreams(rHeader, rStorageItems io.Reader) error {
	err := json.NewDecoder(rHeader).Decode(&x.header)
	if err != nil {
		return fmt.Errorf("decode ledger header from JSON: %w", err)
	}

	var rec []string
	var _kv kv

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 2
	_csv.ReuseRecord = true

	x.items = x.items[:0]

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		_kv.k, err = _encoding.DecodeString(rec[0])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		_kv.v, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		x.items = append(x.items, _kv)
	}
}

// Header returns header of the superior dump.
func (x *Reader) Header() Header {
	return x.header
}

// IterateStorage passes all storage items from the superior dump into f in
// the order they were written. Iteration stops at the first error returned
// by f.
func (x *Reader) IterateStorage(f func(key, value []byte) error) error {
	for i := range x.items {
		if err := f(x.items[i].k, x.items[i].v); err != nil {
			return err
		}
	}
	return nil
}
