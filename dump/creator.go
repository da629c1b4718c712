package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound/soulboundconst"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
)

// Creator dumps states of Soulbound ledgers. Output file format:
//
//	'<label>-<tokens>-contracts.json': JSON array of ledgers' states
//	'<label>-<tokens>-storage.csv': CSV of ledgers' storages
//
// Storage CSV are 'name,key,value' where name stands for ledger name and
// binary key-value are base64-encoded.
//
// Use IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	contracts []dumpContractState

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps ledgers into given directory. The
// dump is identified by specified ID. Resulting Creator should be closed when
// finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// AddContract adds given state of the named ledger to the resulting dump
// and returns StorageWriter for the ledger storage. After all needed
// ledgers are added, they should be flushed via Flush method.
func (x *Creator) AddContract(name string, st ContractState) *StorageWriter {
	x.contracts = append(x.contracts, dumpContractState{
		Name:  name,
		State: st,
	})

	return &StorageWriter{
		name: name,
		csv:  x.storageItemsCSV,
	}
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.contracts)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.contracts)
	if err != nil {
		return fmt.Errorf("encode contract states to JSON: %w", err)
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

// StorageWriter writes data into the superior ledger's storage dump.
type StorageWriter struct {
	name string
	csv  *csv.Writer
}

// Write saves given binary key-value into the ledger dump as storage item.
func (x *StorageWriter) Write(key, value []byte) error {
	err := x.csv.Write([]string{
		x.name,
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}

// WriteStore saves all ledger items of the storage in key order.
func (x *StorageWriter) WriteStore(st storage.Store) error {
	for _, p := range soulboundconst.StoragePrefixes {
		var err error

		seekErr := common.Seek(st, storage.SeekRange{Prefix: []byte{p}}, func(k, v []byte) bool {
			err = x.Write(k, v)
			return err == nil
		})
		if err != nil {
			return err
		}
		if seekErr != nil {
			return fmt.Errorf("read storage items with prefix 0x%02x: %w", p, seekErr)
		}
	}

	return nil
}
