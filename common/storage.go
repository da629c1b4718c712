package common

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// RangeReader is implemented by storages whose range scans can fail, e.g.
// ones backed by a remote database. storage.Store.Seek has no way to report
// such failures.
type RangeReader interface {
	SeekErr(rng storage.SeekRange, f func(k, v []byte) bool) error
}

// Seek walks the range of st like storage.Store.Seek but returns scan failure
// if st is a RangeReader.
func Seek(st storage.Store, rng storage.SeekRange, f func(k, v []byte) bool) error {
	if rr, ok := st.(RangeReader); ok {
		return rr.SeekErr(rng, f)
	}

	st.Seek(rng, f)

	return nil
}

// Getter is a read-only view of contract storage.
type Getter interface {
	Get(key []byte) ([]byte, error)
}

// Putter is a write-only view of contract storage.
type Putter interface {
	Put(key, value []byte)
}

// GetSerialized reads item stored under the key and deserializes it. Storage
// errors (including missing key) are returned as is.
func GetSerialized(s Getter, key []byte) (stackitem.Item, error) {
	data, err := s.Get(key)
	if err != nil {
		return nil, err
	}

	item, err := stackitem.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("deserialize item 0x%x: %w", key, err)
	}

	return item, nil
}

// SetSerialized serializes item and puts it into contract storage.
func SetSerialized(s Putter, key []byte, item stackitem.Item) error {
	data, err := stackitem.Serialize(item)
	if err != nil {
		return fmt.Errorf("serialize item 0x%x: %w", key, err)
	}

	s.Put(key, data)

	return nil
}

// GetStruct reads serialized struct with exactly n fields.
func GetStruct(s Getter, key []byte, n int) ([]stackitem.Item, error) {
	item, err := GetSerialized(s, key)
	if err != nil {
		return nil, err
	}

	return StructFields(item, n)
}

// StructFields returns fields of the struct item which must have exactly n
// of them.
func StructFields(item stackitem.Item, n int) ([]stackitem.Item, error) {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return nil, fmt.Errorf("unexpected item type %s, struct expected", item.Type())
	}

	fields := st.Value().([]stackitem.Item)
	if len(fields) != n {
		return nil, fmt.Errorf("unexpected number of struct fields %d, %d expected", len(fields), n)
	}

	return fields, nil
}

// GetUint64 reads serialized non-negative integer. Missing key is returned
// as storage error.
func GetUint64(s Getter, key []byte) (uint64, error) {
	item, err := GetSerialized(s, key)
	if err != nil {
		return 0, err
	}

	n, err := item.TryInteger()
	if err != nil {
		return 0, fmt.Errorf("integer expected: %w", err)
	}

	if n.Sign() < 0 || !n.IsUint64() {
		return 0, fmt.Errorf("integer %s is out of uint64 range", n)
	}

	return n.Uint64(), nil
}

// SetUint64 puts serialized integer into contract storage.
func SetUint64(s Putter, key []byte, n uint64) error {
	return SetSerialized(s, key, stackitem.NewBigInteger(new(big.Int).SetUint64(n)))
}

// ItemString returns string value of byte array item.
func ItemString(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}
