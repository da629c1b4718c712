package deploy

import (
	"context"
	"testing"

	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound"
	"github.com/aura-nw/soulbound/contracts/soulbound/soulboundconst"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type anyAddress struct{}

func (anyAddress) ValidateAddress(string) error { return nil }

func testPrm(t *testing.T, st storage.Store) Prm {
	return Prm{
		Logger:  zaptest.NewLogger(t),
		Store:   st,
		Name:    "Aura 4973",
		Symbol:  "A4973",
		Minter:  "minter",
		Options: soulbound.Options{Validator: anyAddress{}},
	}
}

func setVersion(t *testing.T, st storage.Store, v int) {
	cache := storage.NewMemCachedStore(st)
	require.NoError(t, common.SetSerialized(cache, []byte{soulboundconst.VersionKey}, stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(soulboundconst.ContractName)),
		stackitem.Make(v),
	})))
	_, err := cache.Persist()
	require.NoError(t, err)
}

func TestDeploy(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	prm := testPrm(t, st)

	c, err := Deploy(ctx, prm)
	require.NoError(t, err)

	info, err := c.ContractInfo()
	require.NoError(t, err)
	require.Equal(t, soulbound.ContractInfo{Name: prm.Name, Symbol: prm.Symbol}, info)

	_, err = c.Mint("minter", "1", "owner", "ipfs://1")
	require.NoError(t, err)

	t.Run("repeated", func(t *testing.T) {
		c, err := Deploy(ctx, prm)
		require.NoError(t, err)

		n, err := c.NumTokens()
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("metadata from storage", func(t *testing.T) {
		prm := prm
		prm.Name, prm.Symbol, prm.Minter = "", "", ""

		_, err := Deploy(ctx, prm)
		require.NoError(t, err)
	})

	t.Run("mismatch", func(t *testing.T) {
		for _, modify := range []func(*Prm){
			func(p *Prm) { p.Name = "other" },
			func(p *Prm) { p.Symbol = "OTHER" },
			func(p *Prm) { p.Minter = "other" },
		} {
			prm := prm
			modify(&prm)

			_, err := Deploy(ctx, prm)
			require.ErrorIs(t, err, ErrMismatch)
		}
	})

	t.Run("migration", func(t *testing.T) {
		setVersion(t, st, common.PrevVersion)

		c, err := Deploy(ctx, prm)
		require.NoError(t, err)

		v, err := c.Version()
		require.NoError(t, err)
		require.Equal(t, common.Version, v.Version)
	})

	t.Run("newer storage", func(t *testing.T) {
		setVersion(t, st, common.Version+1)
		t.Cleanup(func() { setVersion(t, st, common.Version) })

		_, err := Deploy(ctx, prm)
		require.Error(t, err)
	})

	t.Run("unsupported old storage", func(t *testing.T) {
		setVersion(t, st, common.PrevVersion-1)
		t.Cleanup(func() { setVersion(t, st, common.Version) })

		_, err := Deploy(ctx, prm)
		require.ErrorIs(t, err, common.ErrVersionMismatch)
	})
}

func TestDeployFresh(t *testing.T) {
	t.Run("missing metadata", func(t *testing.T) {
		prm := testPrm(t, storage.NewMemoryStore())
		prm.Minter = ""

		_, err := Deploy(context.Background(), prm)
		require.Error(t, err)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Deploy(ctx, testPrm(t, storage.NewMemoryStore()))
		require.ErrorIs(t, err, context.Canceled)
	})
}
