package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
)

// Creator dumps storage items of the faucet ledger.
//
// Use IterateDumps or Open to access existing dumps.
type Creator struct {
	dumpStreams

	header Header

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps ledger state into given directory.
// The dump is identified by specified ID. Resulting Creator should be closed
// when finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.header = Header{
		Label:       id.Label,
		Height:      id.Height,
		TotalSupply: "0",
	}
	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// SetTotalSupply records total supply of the dumped ledger in the header.
func (x *Creator) SetTotalSupply(v *big.Int) {
	x.header.TotalSupply = v.String()
}

// Write saves given binary key-value into the dump as storage item.
func (x *Creator) Write(key, value []byte) error {
	err := x.storageItemsCSV.Write([]string{
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	x.header.Items++

	return nil
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.header)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.header)
	if err != nil {
		return fmt.Errorf("encode ledger header to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// Discard closes the Creator and removes all files of the unfinished dump,
// so the dump with the same ID can be created again.
func (x *Creator) Discard() error {
	x.close()

	for _, p := range []string{x.headerPath, x.storageItemsPath} {
		err := os.Remove(p)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove dump file: %w", err)
		}
	}

	return nil
}
