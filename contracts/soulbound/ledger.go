package soulbound

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound/soulboundconst"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ContractInfo is the immutable contract metadata.
type ContractInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// VersionInfo identifies contract code that last wrote the storage.
type VersionInfo struct {
	Contract string `json:"contract"`
	Version  int    `json:"version"`
}

// ledger operates on a single cached view of the contract storage. All
// writes of one operation go into the cache and reach the host store
// together.
type ledger struct {
	st *storage.MemCachedStore
	// host is the underlying storage of read-only views. Owner index scans
	// go directly to it to learn about backend failures. Nil for views
	// with pending changes.
	host storage.Store
}

// scanBatch limits the number of owner index entries held in memory by a
// single scan step.
const scanBatch = 64

var (
	contractInfoKey = []byte{soulboundconst.ContractInfoKey}
	authorityKey    = []byte{soulboundconst.AuthorityKey}
	counterKey      = []byte{soulboundconst.CounterKey}
	versionKey      = []byte{soulboundconst.VersionKey}
)

func tokenKey(id string) []byte {
	return append([]byte{soulboundconst.TokenPrefix}, id...)
}

func ownerPrefix(owner string) []byte {
	key := make([]byte, 0, 2+len(owner)+8)
	key = append(key, soulboundconst.OwnerIndexPrefix, byte(len(owner)))
	return append(key, owner...)
}

func ownerIndexKey(owner string, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(ownerPrefix(owner), seq)
}

func notFound(err error) bool {
	return errors.Is(err, storage.ErrKeyNotFound)
}

func (l *ledger) initialized() (bool, error) {
	_, err := l.st.Get(authorityKey)
	if err == nil {
		return true, nil
	}
	if notFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("read authority: %w", err)
}

func (l *ledger) initialize(info ContractInfo, authority string, v VersionInfo) error {
	ok, err := l.initialized()
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialized
	}

	err = common.SetSerialized(l.st, contractInfoKey, stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(info.Name)),
		stackitem.NewByteArray([]byte(info.Symbol)),
	}))
	if err != nil {
		return err
	}

	l.st.Put(authorityKey, []byte(authority))

	if err = common.SetUint64(l.st, counterKey, 0); err != nil {
		return err
	}

	return l.setVersion(v)
}

func (l *ledger) info() (ContractInfo, error) {
	var res ContractInfo

	fields, err := common.GetStruct(l.st, contractInfoKey, 2)
	if err != nil {
		if notFound(err) {
			return res, ErrNotInitialized
		}
		return res, fmt.Errorf("read contract info: %w", err)
	}

	if res.Name, err = common.ItemString(fields[0]); err != nil {
		return res, fmt.Errorf("invalid contract name: %w", err)
	}
	if res.Symbol, err = common.ItemString(fields[1]); err != nil {
		return res, fmt.Errorf("invalid contract symbol: %w", err)
	}

	return res, nil
}

func (l *ledger) authority() (string, error) {
	b, err := l.st.Get(authorityKey)
	if err != nil {
		if notFound(err) {
			return "", ErrNotInitialized
		}
		return "", fmt.Errorf("read authority: %w", err)
	}

	return string(b), nil
}

func (l *ledger) count() (uint64, error) {
	n, err := common.GetUint64(l.st, counterKey)
	if err != nil {
		if notFound(err) {
			return 0, ErrNotInitialized
		}
		return 0, fmt.Errorf("read token counter: %w", err)
	}

	return n, nil
}

func (l *ledger) version() (VersionInfo, error) {
	var res VersionInfo

	fields, err := common.GetStruct(l.st, versionKey, 2)
	if err != nil {
		if notFound(err) {
			return res, ErrNotInitialized
		}
		return res, fmt.Errorf("read version: %w", err)
	}

	if res.Contract, err = common.ItemString(fields[0]); err != nil {
		return res, fmt.Errorf("invalid contract name: %w", err)
	}

	n, err := fields[1].TryInteger()
	if err != nil || !n.IsInt64() {
		return res, fmt.Errorf("invalid version number: %v", fields[1].Value())
	}
	res.Version = int(n.Int64())

	return res, nil
}

func (l *ledger) setVersion(v VersionInfo) error {
	return common.SetSerialized(l.st, versionKey, stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(v.Contract)),
		stackitem.Make(v.Version),
	}))
}

// insert adds new token, its owner index entry and increments the counter.
func (l *ledger) insert(t Token) error {
	if len(t.Owner) > soulboundconst.MaxOwnerLen {
		return fmt.Errorf("%w: owner address is longer than %d bytes", ErrValidation, soulboundconst.MaxOwnerLen)
	}

	_, err := l.st.Get(tokenKey(t.ID))
	if err == nil {
		return fmt.Errorf("%w: %s", ErrTokenExists, t.ID)
	}
	if !notFound(err) {
		return fmt.Errorf("read token %s: %w", t.ID, err)
	}

	n, err := l.count()
	if err != nil {
		return err
	}

	if err = common.SetSerialized(l.st, tokenKey(t.ID), t.toStackItem()); err != nil {
		return err
	}

	l.st.Put(ownerIndexKey(t.Owner, n), []byte(t.ID))

	return common.SetUint64(l.st, counterKey, n+1)
}

// load returns token by ID.
func (l *ledger) load(id string) (Token, error) {
	var t Token

	item, err := common.GetSerialized(l.st, tokenKey(id))
	if err != nil {
		if notFound(err) {
			return t, fmt.Errorf("%w: token %s", ErrNotFound, id)
		}
		return t, fmt.Errorf("read token %s: %w", id, err)
	}

	if err = t.fromStackItem(item); err != nil {
		return t, fmt.Errorf("decode token %s: %w", id, err)
	}

	return t, nil
}

// store overwrites existing token. Owner and ID are never changed, so the
// owner index stays untouched.
func (l *ledger) store(t Token) error {
	_, err := l.st.Get(tokenKey(t.ID))
	if err != nil {
		if notFound(err) {
			return fmt.Errorf("%w: token %s", ErrNotFound, t.ID)
		}
		return fmt.Errorf("read token %s: %w", t.ID, err)
	}

	return common.SetSerialized(l.st, tokenKey(t.ID), t.toStackItem())
}

// scanByOwner passes tokens of the owner selected by filter into f in
// issuance order until f returns false. Scan starts from the owner index
// position from. Each token is accompanied by its index position.
func (l *ledger) scanByOwner(owner string, from uint64, filter Filter, f func(uint64, Token) bool) error {
	if len(owner) > soulboundconst.MaxOwnerLen {
		return nil
	}

	type entry struct {
		pos uint64
		id  string
	}

	prefix := ownerPrefix(owner)
	batch := make([]entry, 0, scanBatch)

	for {
		batch = batch[:0]

		err := l.seek(storage.SeekRange{
			Prefix: prefix,
			Start:  binary.BigEndian.AppendUint64(nil, from),
		}, func(k, v []byte) bool {
			if len(k) < 8 {
				return true
			}
			batch = append(batch, entry{
				pos: binary.BigEndian.Uint64(k[len(k)-8:]),
				id:  string(v),
			})
			return len(batch) < scanBatch
		})
		if err != nil {
			return fmt.Errorf("scan owner index of %s: %w", owner, err)
		}

		for i := range batch {
			t, err := l.load(batch[i].id)
			if err != nil {
				return fmt.Errorf("owner index of %s: %w", owner, err)
			}

			if filter != nil && !filter(t) {
				continue
			}

			if !f(batch[i].pos, t) {
				return nil
			}
		}

		if len(batch) < scanBatch {
			return nil
		}

		from = batch[len(batch)-1].pos + 1
	}
}

func (l *ledger) seek(rng storage.SeekRange, f func(k, v []byte) bool) error {
	if l.host != nil {
		return common.Seek(l.host, rng, f)
	}

	l.st.Seek(rng, f)

	return nil
}
