package common

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestSerialized(t *testing.T) {
	s := storage.NewMemCachedStore(storage.NewMemoryStore())
	key := []byte{'k'}

	_, err := GetSerialized(s, key)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, SetSerialized(s, key, stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte("name")),
		stackitem.NewBool(true),
	})))

	fields, err := GetStruct(s, key, 2)
	require.NoError(t, err)

	name, err := ItemString(fields[0])
	require.NoError(t, err)
	require.Equal(t, "name", name)

	_, err = GetStruct(s, key, 3)
	require.Error(t, err)

	s.Put(key, []byte{0xff})
	_, err = GetSerialized(s, key)
	require.Error(t, err)
}

func TestUint64(t *testing.T) {
	s := storage.NewMemCachedStore(storage.NewMemoryStore())
	key := []byte{'n'}

	for _, n := range []uint64{0, 1, 1 << 40, 1<<64 - 1} {
		require.NoError(t, SetUint64(s, key, n))

		got, err := GetUint64(s, key)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}

	require.NoError(t, SetSerialized(s, key, stackitem.NewBigInteger(bigNeg())))
	_, err := GetUint64(s, key)
	require.Error(t, err)
}

func TestWitness(t *testing.T) {
	require.NoError(t, CheckOwnerWitness("a", "a"))
	require.ErrorIs(t, CheckOwnerWitness("b", "a"), ErrOwnerWitnessFailed)
	require.ErrorIs(t, CheckOwnerWitness("", ""), ErrOwnerWitnessFailed)
	require.NoError(t, CheckAuthorityWitness("a", "a"))
	require.ErrorIs(t, CheckAuthorityWitness("b", "a"), ErrAuthorityWitnessFailed)
}

func TestCheckVersion(t *testing.T) {
	require.NoError(t, CheckVersion(PrevVersion))
	require.ErrorIs(t, CheckVersion(PrevVersion-1), ErrVersionMismatch)
	require.ErrorIs(t, CheckVersion(Version), ErrAlreadyUpdated)
	require.Equal(t, "0.2.0", VersionString(Version))
}

func bigNeg() *big.Int {
	return big.NewInt(-1)
}
