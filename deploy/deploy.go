package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"go.uber.org/zap"
)

// ErrMismatch is returned by Deploy if the storage already holds a ledger
// different from the requested one.
var ErrMismatch = errors.New("deployed ledger mismatch")

// Prm groups all parameters of the ledger deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Host storage the ledger lives in.
	Store storage.Store

	// Name and symbol of the ledger. Both are checked against the deployed
	// ledger if set, and are required for a fresh storage.
	Name   string
	Symbol string

	// Address of the authority allowed to issue and revoke tokens. Checked
	// against the deployed ledger if set, required for a fresh storage.
	Minter string

	// Options of the resulting contract.
	Options soulbound.Options
}

// Deploy binds the Soulbound contract to Prm.Store and makes it ready for
// operation:
//  1. fresh storage is initialized with Prm metadata
//  2. storage written by an older contract version is migrated
//  3. storage of the current version is checked against Prm
//
// Deploy is idempotent: repeated calls with the same Prm do not change the
// storage.
func Deploy(ctx context.Context, prm Prm) (*soulbound.Contract, error) {
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}
	if prm.Options.Logger == nil {
		prm.Options.Logger = prm.Logger
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := soulbound.New(prm.Store, prm.Options)

	v, err := c.Version()
	if errors.Is(err, soulbound.ErrNotInitialized) {
		prm.Logger.Info("initializing soulbound ledger...",
			zap.String("name", prm.Name), zap.String("symbol", prm.Symbol), zap.String("minter", prm.Minter))

		if prm.Name == "" || prm.Symbol == "" || prm.Minter == "" {
			return nil, errors.New("name, symbol and minter are required to initialize ledger")
		}

		err = c.Initialize(prm.Name, prm.Symbol, prm.Minter)
		if err != nil {
			return nil, fmt.Errorf("initialize ledger: %w", err)
		}

		prm.Logger.Info("soulbound ledger successfully initialized")

		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger version: %w", err)
	}

	err = checkDeployed(c, prm)
	if err != nil {
		return nil, err
	}

	switch {
	case v.Version == common.Version:
		prm.Logger.Info("soulbound ledger is up to date", zap.String("version", common.VersionString(v.Version)))
	case v.Version > common.Version:
		return nil, fmt.Errorf("ledger version %s is newer than supported %s",
			common.VersionString(v.Version), common.VersionString(common.Version))
	default:
		prm.Logger.Info("updating soulbound ledger...",
			zap.String("from", common.VersionString(v.Version)), zap.String("to", common.VersionString(common.Version)))

		err = c.Migrate()
		if err != nil {
			return nil, fmt.Errorf("migrate ledger: %w", err)
		}

		prm.Logger.Info("soulbound ledger successfully updated")
	}

	return c, nil
}

func checkDeployed(c *soulbound.Contract, prm Prm) error {
	info, err := c.ContractInfo()
	if err != nil {
		return fmt.Errorf("read ledger info: %w", err)
	}

	if prm.Name != "" && prm.Name != info.Name {
		return fmt.Errorf("%w: name '%s' instead of '%s'", ErrMismatch, info.Name, prm.Name)
	}

	if prm.Symbol != "" && prm.Symbol != info.Symbol {
		return fmt.Errorf("%w: symbol '%s' instead of '%s'", ErrMismatch, info.Symbol, prm.Symbol)
	}

	if prm.Minter == "" {
		return nil
	}

	minter, err := c.Minter()
	if err != nil {
		return fmt.Errorf("read ledger minter: %w", err)
	}

	if minter != prm.Minter {
		return fmt.Errorf("%w: minter '%s' instead of '%s'", ErrMismatch, minter, prm.Minter)
	}

	return nil
}
