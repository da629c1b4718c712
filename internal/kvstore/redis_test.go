package kvstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aura-nw/soulbound/contracts/soulbound"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := NewRedis(context.Background(), client, "", zaptest.NewLogger(t))
	t.Cleanup(func() { _ = st.Close() })

	return st, mr
}

func TestRedis(t *testing.T) {
	st, _ := newTestRedis(t)
	testStoreConformance(t, st)
}

func TestRedisNamespaces(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a := NewRedis(ctx, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "a", nil)
	b := NewRedis(ctx, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "b", nil)
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})

	require.NoError(t, a.PutChangeSet(map[string][]byte{"\x01k": []byte("v")}, nil))

	_, err := b.Get([]byte("\x01k"))
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	v, err := a.Get([]byte("\x01k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}

func TestRedisUnavailable(t *testing.T) {
	st, mr := newTestRedis(t)
	require.NoError(t, st.PutChangeSet(map[string][]byte{"\x01k": []byte("v")}, nil))

	mr.Close()

	_, err := st.Get([]byte("\x01k"))
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrKeyNotFound)

	require.Error(t, st.PutChangeSet(map[string][]byte{"\x01k": nil}, nil))

	var called bool
	st.Seek(storage.SeekRange{Prefix: []byte{0x01}}, func(_, _ []byte) bool {
		called = true
		return true
	})
	require.False(t, called)
}

func TestRedisContract(t *testing.T) {
	st, _ := newTestRedis(t)

	const (
		minter = "aura1minter"
		owner  = "aura1owner"
	)

	c := soulbound.New(st, soulbound.Options{
		Logger:    zaptest.NewLogger(t),
		Validator: nopValidator{},
	})
	require.NoError(t, c.Initialize("Aura 4973", "A4973", minter))

	_, err := c.Mint(minter, "1", owner, "ipfs://1")
	require.NoError(t, err)
	_, err = c.Mint(minter, "2", owner, "ipfs://2")
	require.NoError(t, err)
	_, err = c.Unequip(owner, "1")
	require.NoError(t, err)

	// reopen over the same data
	c = soulbound.New(st, soulbound.Options{Validator: nopValidator{}})

	n, err := c.NumTokens()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	eq, err := c.AllEquippedOf(owner)
	require.NoError(t, err)
	require.Len(t, eq, 1)
	require.Equal(t, "2", eq[0].ID)

	uneq, err := c.AllUnequippedOf(owner)
	require.NoError(t, err)
	require.Len(t, uneq, 1)
	require.Equal(t, "1", uneq[0].ID)
}

func TestRedisSeekFailure(t *testing.T) {
	st, mr := newTestRedis(t)
	require.NoError(t, st.PutChangeSet(map[string][]byte{"\x01k": []byte("v")}, nil))

	mr.SetError("backend down")

	var called bool
	err := st.SeekErr(storage.SeekRange{Prefix: []byte{0x01}}, func(_, _ []byte) bool {
		called = true
		return true
	})
	require.ErrorContains(t, err, "backend down")
	require.False(t, called)

	mr.SetError("")

	require.NoError(t, st.SeekErr(storage.SeekRange{Prefix: []byte{0x01}}, func(_, _ []byte) bool {
		called = true
		return true
	}))
	require.True(t, called)
}

func TestRedisContractBackendFailure(t *testing.T) {
	st, mr := newTestRedis(t)

	const (
		minter = "aura1minter"
		owner  = "aura1owner"
	)

	c := soulbound.New(st, soulbound.Options{
		Logger:    zaptest.NewLogger(t),
		Validator: nopValidator{},
	})
	require.NoError(t, c.Initialize("Aura 4973", "A4973", minter))

	_, err := c.Mint(minter, "t1", owner, "ipfs://1")
	require.NoError(t, err)

	mr.SetError("backend down")

	_, err = c.AllEquippedOf(owner)
	require.ErrorContains(t, err, "backend down")

	_, err = c.AllUnequippedOf(owner)
	require.Error(t, err)
}

type nopValidator struct{}

func (nopValidator) ValidateAddress(string) error { return nil }
