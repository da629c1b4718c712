package soulbound

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotMinter is returned by authority-only lifecycle transitions.
	ErrNotMinter = fmt.Errorf("%w: caller is not minter", ErrUnauthorized)
	// ErrInvalidConsent is returned when the consent signature is not valid
	// for the agreement.
	ErrInvalidConsent = errors.New("invalid consent")
	// ErrNotFound is returned for missing tokens.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyInState is matched by all transitions attempted from the
	// target state.
	ErrAlreadyInState = errors.New("already in state")
	// ErrAlreadyEquipped is returned by Equip for an equipped token.
	ErrAlreadyEquipped = fmt.Errorf("%w: NFT is already equipped", ErrAlreadyInState)
	// ErrAlreadyUnequipped is returned by Unequip for an unequipped token.
	ErrAlreadyUnequipped = fmt.Errorf("%w: NFT is already unequipped", ErrAlreadyInState)
	// ErrAlreadyRevoked is returned by Revoke for a revoked token.
	ErrAlreadyRevoked = fmt.Errorf("%w: NFT is already unadmitted", ErrAlreadyInState)
	// ErrValidation is returned for malformed addresses and arguments.
	ErrValidation = errors.New("validation failed")
	// ErrTokenExists is returned when a token with the same ID is already
	// issued.
	ErrTokenExists = errors.New("token already exists")
	// ErrAlreadyInitialized is returned by repeated initialization.
	ErrAlreadyInitialized = errors.New("contract is already initialized")
	// ErrNotInitialized is returned by any call to a contract that was not
	// initialized.
	ErrNotInitialized = errors.New("contract is not initialized")
)
