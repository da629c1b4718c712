package soulbound_test

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"sync"
	"testing"

	"github.com/aura-nw/soulbound/agreement"
	"github.com/aura-nw/soulbound/contracts/soulbound"
	rpcsoulbound "github.com/aura-nw/soulbound/rpc/soulbound"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type account struct {
	key  *secp256k1.PrivateKey
	addr string
}

func newAccount(t *testing.T) account {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	addr, err := agreement.Address(key.PubKey(), agreement.DefaultPrefix)
	require.NoError(t, err)

	return account{key: key, addr: addr}
}

func newContract(t *testing.T, minter string) *soulbound.Contract {
	c := soulbound.New(storage.NewMemoryStore(), soulbound.Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, c.Initialize("Aura 4973", "A4973", minter))
	return c
}

func TestDecodeExecuteMsg(t *testing.T) {
	for _, tc := range []struct {
		in  string
		exp rpcsoulbound.ExecuteMsg
	}{
		{`{"mint":{"nft_id":"1","owner":"o","nft_uri":"u"}}`, rpcsoulbound.Mint{ID: "1", Owner: "o", URI: "u"}},
		{`{"give":{"to":"o","uri":"u","signature":"ab"}}`, rpcsoulbound.Give{To: "o", URI: "u", Signature: "ab"}},
		{`{"take":{"from":"m","uri":"u","signature":"ab"}}`, rpcsoulbound.Take{From: "m", URI: "u", Signature: "ab"}},
		{`{"un_equip":{"nft_id":"1"}}`, rpcsoulbound.Unequip{ID: "1"}},
		{`{"unequip":{"nft_id":"1"}}`, rpcsoulbound.Unequip{ID: "1"}},
		{`{"equip":{"nft_id":"1"}}`, rpcsoulbound.Equip{ID: "1"}},
		{`{"un_admit":{"nft_id":"1"}}`, rpcsoulbound.Revoke{ID: "1"}},
		{`{"revoke":{"nft_id":"1"}}`, rpcsoulbound.Revoke{ID: "1"}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			msg, err := rpcsoulbound.DecodeExecuteMsg([]byte(tc.in))
			require.NoError(t, err)
			require.Equal(t, tc.exp, msg)
		})
	}

	for _, in := range []string{
		`[]`,
		`{}`,
		`{"burn":{"nft_id":"1"}}`,
		`{"equip":{"nft_id":"1"},"un_equip":{"nft_id":"1"}}`,
		`{"equip":{"id":"1"}}`,
		`{"equip":"1"}`,
	} {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := rpcsoulbound.DecodeExecuteMsg([]byte(in))
			require.ErrorIs(t, err, rpcsoulbound.ErrInvalidMessage)
		})
	}
}

func TestDecodeQueryMsg(t *testing.T) {
	for _, tc := range []struct {
		in  string
		exp rpcsoulbound.QueryMsg
	}{
		{`{"contract_info":{}}`, rpcsoulbound.ContractInfo{}},
		{`{"name":{}}`, rpcsoulbound.Name{}},
		{`{"symbol":{}}`, rpcsoulbound.Symbol{}},
		{`{"minter":{}}`, rpcsoulbound.Minter{}},
		{`{"num_nfts":{}}`, rpcsoulbound.NumTokens{}},
		{`{"version":{}}`, rpcsoulbound.Version{}},
		{`{"owner_of":{"nft_id":"1"}}`, rpcsoulbound.OwnerOf{ID: "1"}},
		{`{"nft_info":{"nft_id":"1"}}`, rpcsoulbound.TokenInfo{ID: "1"}},
		{`{"all_equipped_nft_of":{"owner":"o"}}`, rpcsoulbound.AllEquippedOf{Owner: "o"}},
		{`{"all_unequipped_nft_of":{"owner":"o"}}`, rpcsoulbound.AllUnequippedOf{Owner: "o"}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			msg, err := rpcsoulbound.DecodeQueryMsg([]byte(tc.in))
			require.NoError(t, err)
			require.Equal(t, tc.exp, msg)
		})
	}

	_, err := rpcsoulbound.DecodeQueryMsg([]byte(`{"tokens":{}}`))
	require.ErrorIs(t, err, rpcsoulbound.ErrInvalidMessage)
}

func TestEncodeMsg(t *testing.T) {
	data, err := rpcsoulbound.EncodeExecuteMsg(rpcsoulbound.Revoke{ID: "x"})
	require.NoError(t, err)
	require.JSONEq(t, `{"un_admit":{"nft_id":"x"}}`, string(data))

	msg, err := rpcsoulbound.DecodeExecuteMsg(data)
	require.NoError(t, err)
	require.Equal(t, rpcsoulbound.Revoke{ID: "x"}, msg)

	data, err = rpcsoulbound.EncodeQueryMsg(rpcsoulbound.NumTokens{})
	require.NoError(t, err)
	require.JSONEq(t, `{"num_nfts":{}}`, string(data))
}

func TestExecute(t *testing.T) {
	minter := newAccount(t)
	owner := newAccount(t)
	c := newContract(t, minter.addr)

	const uri = "ipfs://badge"

	digest := agreement.Digest(minter.addr, owner.addr, uri)
	sig := agreement.Sign(owner.key, digest)

	resp, err := rpcsoulbound.Execute(c, minter.addr, rpcsoulbound.Give{
		To:        owner.addr,
		URI:       uri,
		Signature: hex.EncodeToString(sig),
	})
	require.NoError(t, err)
	require.Equal(t, "mint", resp.Attribute("action"))
	id := resp.Attribute("nft_id")
	require.Equal(t, agreement.TokenID(digest), id)

	_, err = rpcsoulbound.Execute(c, owner.addr, rpcsoulbound.Unequip{ID: id})
	require.NoError(t, err)

	_, err = rpcsoulbound.Execute(c, owner.addr, rpcsoulbound.Equip{ID: id})
	require.NoError(t, err)

	resp, err = rpcsoulbound.Execute(c, minter.addr, rpcsoulbound.Revoke{ID: id})
	require.NoError(t, err)
	require.Equal(t, "unadmit", resp.Attribute("action"))

	t.Run("take with base64 signature", func(t *testing.T) {
		const uri = "ipfs://other"
		sig := agreement.Sign(minter.key, agreement.Digest(owner.addr, minter.addr, uri))

		resp, err := rpcsoulbound.Execute(c, owner.addr, rpcsoulbound.Take{
			From:      minter.addr,
			URI:       uri,
			Signature: base64.StdEncoding.EncodeToString(sig),
		})
		require.NoError(t, err)
		require.Equal(t, owner.addr, resp.Attribute("owner"))
	})

	t.Run("undecodable signature", func(t *testing.T) {
		_, err := rpcsoulbound.Execute(c, minter.addr, rpcsoulbound.Give{
			To:        owner.addr,
			URI:       "ipfs://x",
			Signature: "not a signature",
		})
		require.ErrorIs(t, err, soulbound.ErrInvalidConsent)
	})

	t.Run("mint", func(t *testing.T) {
		resp, err := rpcsoulbound.Execute(c, minter.addr, rpcsoulbound.Mint{ID: "explicit", Owner: owner.addr, URI: "u"})
		require.NoError(t, err)
		require.Equal(t, "explicit", resp.Attribute("nft_id"))

		_, err = rpcsoulbound.Execute(c, owner.addr, rpcsoulbound.Mint{ID: "other", Owner: owner.addr, URI: "u"})
		require.ErrorIs(t, err, soulbound.ErrUnauthorized)
	})
}

func TestQuery(t *testing.T) {
	minter := newAccount(t)
	owner := newAccount(t)
	c := newContract(t, minter.addr)

	_, err := c.Mint(minter.addr, "a", owner.addr, "uri-a")
	require.NoError(t, err)
	_, err = c.Mint(minter.addr, "b", owner.addr, "uri-b")
	require.NoError(t, err)
	_, err = c.Unequip(owner.addr, "b")
	require.NoError(t, err)

	query := func(q string) string {
		msg, err := rpcsoulbound.DecodeQueryMsg([]byte(q))
		require.NoError(t, err)

		res, err := rpcsoulbound.Query(c, msg)
		require.NoError(t, err)

		data, err := json.Marshal(res)
		require.NoError(t, err)

		return string(data)
	}

	require.JSONEq(t, `{"name":"Aura 4973","symbol":"A4973"}`, query(`{"contract_info":{}}`))
	require.JSONEq(t, `{"name":"Aura 4973"}`, query(`{"name":{}}`))
	require.JSONEq(t, `{"symbol":"A4973"}`, query(`{"symbol":{}}`))
	require.JSONEq(t, `{"minter":"`+minter.addr+`"}`, query(`{"minter":{}}`))
	require.JSONEq(t, `{"count":2}`, query(`{"num_nfts":{}}`))
	require.JSONEq(t, `{"owner":"`+owner.addr+`"}`, query(`{"owner_of":{"nft_id":"a"}}`))
	require.JSONEq(t, `{"id":"b","owner":"`+owner.addr+`","nft_uri":"uri-b","equipped":false,"revoked":false}`,
		query(`{"nft_info":{"nft_id":"b"}}`))
	require.JSONEq(t, `{"tokens":[{"id":"a","owner":"`+owner.addr+`","nft_uri":"uri-a","equipped":true,"revoked":false}]}`,
		query(`{"all_equipped_nft_of":{"owner":"`+owner.addr+`"}}`))
	require.JSONEq(t, `{"tokens":[{"id":"b","owner":"`+owner.addr+`","nft_uri":"uri-b","equipped":false,"revoked":false}]}`,
		query(`{"all_unequipped_nft_of":{"owner":"`+owner.addr+`"}}`))
	require.JSONEq(t, `{"tokens":[]}`, query(`{"all_equipped_nft_of":{"owner":"`+minter.addr+`"}}`))

	_, err = rpcsoulbound.Query(c, rpcsoulbound.TokenInfo{ID: "missing"})
	require.ErrorIs(t, err, soulbound.ErrNotFound)
}

func TestReader(t *testing.T) {
	minter := newAccount(t)
	owner := newAccount(t)
	c := newContract(t, minter.addr)

	const n = 7
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i)
		_, err := c.Mint(minter.addr, id, owner.addr, "uri-"+id)
		require.NoError(t, err)
	}
	// 1, 3 and 5 are unequipped, 4 is revoked.
	for _, id := range []string{"1", "3", "5"} {
		_, err := c.Unequip(owner.addr, id)
		require.NoError(t, err)
	}
	_, err := c.Revoke(minter.addr, "4")
	require.NoError(t, err)

	ids := func(tokens []soulbound.Token) []string {
		var res []string
		for i := range tokens {
			res = append(res, tokens[i].ID)
		}
		return res
	}

	r := rpcsoulbound.NewReader(c)

	t.Run("paging", func(t *testing.T) {
		s := r.EquippedOf(owner.addr)

		page, err := r.TraverseIterator(s, 2)
		require.NoError(t, err)
		require.Equal(t, []string{"0", "2"}, ids(page))

		// state changes of already listed tokens don't shift the cursor
		_, err = c.Unequip(owner.addr, "0")
		require.NoError(t, err)
		t.Cleanup(func() {
			_, err := c.Equip(owner.addr, "0")
			require.NoError(t, err)
		})

		page, err = r.TraverseIterator(s, 2)
		require.NoError(t, err)
		require.Equal(t, []string{"6"}, ids(page))

		page, err = r.TraverseIterator(s, 2)
		require.NoError(t, err)
		require.Empty(t, page)

		require.NoError(t, r.TerminateSession(s))
		require.ErrorIs(t, r.TerminateSession(s), rpcsoulbound.ErrUnknownSession)

		_, err = r.TraverseIterator(s, 1)
		require.ErrorIs(t, err, rpcsoulbound.ErrUnknownSession)
	})

	t.Run("unequipped", func(t *testing.T) {
		s := r.UnequippedOf(owner.addr)
		t.Cleanup(func() { _ = r.TerminateSession(s) })

		page, err := r.TraverseIterator(s, 10)
		require.NoError(t, err)
		require.Equal(t, []string{"1", "3", "5"}, ids(page))
	})

	t.Run("expanded", func(t *testing.T) {
		res, err := r.EquippedOfExpanded(owner.addr, 10)
		require.NoError(t, err)
		require.Equal(t, []string{"0", "2", "6"}, ids(res))

		res, err = r.UnequippedOfExpanded(owner.addr, 2)
		require.NoError(t, err)
		require.Equal(t, []string{"1", "3"}, ids(res))

		res, err = r.EquippedOfExpanded(owner.addr, 0)
		require.NoError(t, err)
		require.Empty(t, res)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := r.TraverseIterator(uuid.New(), 1)
		require.ErrorIs(t, err, rpcsoulbound.ErrUnknownSession)
	})
}

func TestReaderConcurrentTraversal(t *testing.T) {
	minter := newAccount(t)
	owner := newAccount(t)
	c := newContract(t, minter.addr)

	const n = 40
	var exp []string
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i)
		exp = append(exp, id)
		_, err := c.Mint(minter.addr, id, owner.addr, "uri-"+id)
		require.NoError(t, err)
	}

	r := rpcsoulbound.NewReader(c)
	s := r.EquippedOf(owner.addr)

	const workers = 8

	var (
		wg   sync.WaitGroup
		mtx  sync.Mutex
		got  []string
		errs = make(chan error, workers)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				page, err := r.TraverseIterator(s, 3)
				if err != nil {
					errs <- err
					return
				}
				if len(page) == 0 {
					return
				}
				mtx.Lock()
				for i := range page {
					got = append(got, page[i].ID)
				}
				mtx.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.ElementsMatch(t, exp, got)
}

func TestReaderNewTokens(t *testing.T) {
	minter := newAccount(t)
	owner := newAccount(t)
	c := newContract(t, minter.addr)

	for _, id := range []string{"a", "b"} {
		_, err := c.Mint(minter.addr, id, owner.addr, "uri")
		require.NoError(t, err)
	}

	r := rpcsoulbound.NewReader(c)
	s := r.EquippedOf(owner.addr)

	page, err := r.TraverseIterator(s, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)

	_, err = c.Mint(minter.addr, "c", owner.addr, "uri")
	require.NoError(t, err)

	// exhausted session picks up tokens issued later without repeating
	page, err = r.TraverseIterator(s, 5)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "c", page[0].ID)
}
