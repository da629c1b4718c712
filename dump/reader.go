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

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
)

// ErrUnknownContract is returned by Reader for ledgers missing in the dump.
var ErrUnknownContract = errors.New("contract is not in the dump")

// IterateDumps iterates over all ledgers collected by the Creator model in
// the specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID
	var r Reader
	var streams dumpStreams

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, statesFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", d.Name(), err)
		}

		err = initDumpStreams(&streams, dir, id, true)
		if err != nil {
			return fmt.Errorf("init dump streams ('%s'): %w", name, err)
		}

		err = r.fromDumpStreams(streams.contracts, streams.storageItems)
		streams.close()
		if err != nil {
			return fmt.Errorf("init dump reader ('%s'): %w", name, err)
		}

		f(id, &r)

		return nil
	})
}

type kv struct{ k, v []byte }

// Reader reads ledgers collected in the superior dump.
type Reader struct {
	states   []dumpContractState
	mStorage map[string][]kv
}

func (x *Reader) fromDumpStreams(rContracts, rStorageItems io.Reader) error {
	x.states = x.states[:0]

	err := json.NewDecoder(rContracts).Decode(&x.states)
	if err != nil {
		return fmt.Errorf("decode contract states from JSON: %w", err)
	}

	var rec []string
	var _kv kv

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 3
	_csv.ReuseRecord = true

	if x.mStorage != nil {
		clear(x.mStorage)
	} else {
		x.mStorage = make(map[string][]kv)
	}

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		_kv.k, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		_kv.v, err = _encoding.DecodeString(rec[2])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		x.mStorage[rec[0]] = append(x.mStorage[rec[0]], _kv)
	}
}

// IterateContractStates iterates over all ledgers from the superior dump and
// passes their states into f.
func (x *Reader) IterateContractStates(f func(name string, _state ContractState)) {
	for i := range x.states {
		f(x.states[i].Name, x.states[i].State)
	}
}

// IterateContractStorages iterates over all ledgers from the superior dump
// and passes their storage items into f.
func (x *Reader) IterateContractStorages(f func(name string, key, value []byte)) {
	for name, kvs := range x.mStorage {
		for i := range kvs {
			f(name, kvs[i].k, kvs[i].v)
		}
	}
}

// ContractState returns state of the named ledger.
func (x *Reader) ContractState(name string) (ContractState, error) {
	for i := range x.states {
		if x.states[i].Name == name {
			return x.states[i].State, nil
		}
	}
	return ContractState{}, fmt.Errorf("%w: %s", ErrUnknownContract, name)
}

// Restore writes storage items of the named ledger into st in a single
// change set.
func (x *Reader) Restore(name string, st storage.Store) error {
	if _, err := x.ContractState(name); err != nil {
		return err
	}

	kvs := x.mStorage[name]
	puts := make(map[string][]byte, len(kvs))

	for i := range kvs {
		puts[string(kvs[i].k)] = kvs[i].v
	}

	err := st.PutChangeSet(puts, nil)
	if err != nil {
		return fmt.Errorf("put storage items: %w", err)
	}

	return nil
}
