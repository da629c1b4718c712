package soulbound

import (
	"fmt"
	"sync"

	"github.com/aura-nw/soulbound/agreement"
	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound/soulboundconst"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"go.uber.org/zap"
)

// AddressValidator checks that a string is a valid account address of the
// network the contract is deployed to.
type AddressValidator interface {
	ValidateAddress(string) error
}

// Options groups optional parameters of New.
type Options struct {
	// Logger receives operation logs. Defaults to no-op logger.
	Logger *zap.Logger

	// AddressPrefix is the human-readable part of network addresses used to
	// derive signer addresses from consent signatures. Defaults to
	// agreement.DefaultPrefix.
	AddressPrefix string

	// Validator checks every address supplied to the contract. Defaults to
	// bech32 validation with AddressPrefix.
	Validator AddressValidator
}

// Contract is the Soulbound contract bound to the host storage. Contract
// executes one operation at a time; each mutating operation either commits
// all its writes to the storage or none of them.
//
// Contract instances must be constructed using New.
type Contract struct {
	mtx sync.Mutex

	store     storage.Store
	log       *zap.Logger
	prefix    string
	validator AddressValidator
}

// Attribute is a key-value pair describing the operation result.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the result of a mutating operation.
type Response struct {
	Attributes []Attribute `json:"attributes"`
}

// Attribute returns value of the attribute with the given key or empty string.
func (r Response) Attribute(key string) string {
	for i := range r.Attributes {
		if r.Attributes[i].Key == key {
			return r.Attributes[i].Value
		}
	}
	return ""
}

func newResponse(action, id, roleKey, roleValue string) Response {
	return Response{Attributes: []Attribute{
		{Key: soulboundconst.AttrAction, Value: action},
		{Key: soulboundconst.AttrTokenID, Value: id},
		{Key: roleKey, Value: roleValue},
	}}
}

// New returns Contract working on top of the given storage.
func New(st storage.Store, opts Options) *Contract {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.AddressPrefix == "" {
		opts.AddressPrefix = agreement.DefaultPrefix
	}
	if opts.Validator == nil {
		opts.Validator = agreement.Validator{Prefix: opts.AddressPrefix}
	}

	return &Contract{
		store:     st,
		log:       opts.Logger,
		prefix:    opts.AddressPrefix,
		validator: opts.Validator,
	}
}

// AddressPrefix returns address prefix used for consent verification.
func (x *Contract) AddressPrefix() string {
	return x.prefix
}

// Initialize sets contract metadata and the authority. It can be called only
// once per storage.
func (x *Contract) Initialize(name, symbol, authority string) error {
	err := x.validateAddress("authority", authority)
	if err != nil {
		return err
	}

	_, err = x.execute("initialize", func(l *ledger) (Response, error) {
		return Response{}, l.initialize(ContractInfo{Name: name, Symbol: symbol}, authority, VersionInfo{
			Contract: soulboundconst.ContractName,
			Version:  common.Version,
		})
	})
	if err != nil {
		return err
	}

	x.log.Info("soulbound contract initialized",
		zap.String("name", name), zap.String("symbol", symbol), zap.String("minter", authority))

	return nil
}

// Migrate updates version record of the storage written by an older
// contract version.
func (x *Contract) Migrate() error {
	var from int

	_, err := x.execute("migrate", func(l *ledger) (Response, error) {
		v, err := l.version()
		if err != nil {
			return Response{}, err
		}

		if v.Contract != soulboundconst.ContractName {
			return Response{}, fmt.Errorf("%w: storage belongs to contract '%s'", ErrValidation, v.Contract)
		}

		if err = common.CheckVersion(v.Version); err != nil {
			return Response{}, err
		}

		from = v.Version
		v.Version = common.Version

		return Response{}, l.setVersion(v)
	})
	if err != nil {
		return err
	}

	x.log.Info("soulbound contract updated",
		zap.String("from", common.VersionString(from)), zap.String("to", common.VersionString(common.Version)))

	return nil
}

func (x *Contract) validateAddress(role, addr string) error {
	if err := x.validator.ValidateAddress(addr); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrValidation, role, err)
	}
	return nil
}

// execute runs f on a fresh cached view of the storage and persists the
// changes only if f succeeds.
func (x *Contract) execute(op string, f func(*ledger) (Response, error)) (Response, error) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	cache := storage.NewMemCachedStore(x.store)

	res, err := f(&ledger{st: cache})
	if err != nil {
		x.log.Debug("operation rejected", zap.String("op", op), zap.Error(err))
		return Response{}, err
	}

	if _, err = cache.Persist(); err != nil {
		return Response{}, fmt.Errorf("persist %s changes: %w", op, err)
	}

	return res, nil
}

// read runs f on a read-only view of the storage.
func (x *Contract) read(f func(*ledger) error) error {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	return f(&ledger{st: storage.NewMemCachedStore(x.store), host: x.store})
}
