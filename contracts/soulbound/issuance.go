package soulbound

import (
	"fmt"

	"github.com/aura-nw/soulbound/agreement"
	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound/soulboundconst"
	"go.uber.org/zap"
)

// Mint issues token with explicit ID to the owner without consent
// verification. It can be invoked only by the authority.
func (x *Contract) Mint(caller, id, owner, uri string) (Response, error) {
	if id == "" {
		return Response{}, fmt.Errorf("%w: empty token ID", ErrValidation)
	}

	return x.execute(soulboundconst.ActionMint, func(l *ledger) (Response, error) {
		authority, err := l.authority()
		if err != nil {
			return Response{}, err
		}

		if err = common.CheckAuthorityWitness(caller, authority); err != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}

		return x.mint(l, id, owner, uri)
	})
}

// Give issues token to the recipient on behalf of the authority. The
// signature is the recipient's consent to receive the token with the given
// URI from the authority. It can be invoked only by the authority.
func (x *Contract) Give(caller, recipient, uri string, signature []byte) (Response, error) {
	return x.execute(soulboundconst.ActionMint, func(l *ledger) (Response, error) {
		authority, err := l.authority()
		if err != nil {
			return Response{}, err
		}

		if err = common.CheckAuthorityWitness(caller, authority); err != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}

		if err = x.validateAddress("recipient", recipient); err != nil {
			return Response{}, err
		}

		id, err := agreement.Check(authority, recipient, uri, signature, x.prefix)
		if err != nil {
			return Response{}, fmt.Errorf("%w: recipient: %w", ErrInvalidConsent, err)
		}

		return x.mint(l, id, recipient, uri)
	})
}

// Take issues token to the caller from the authority. The signature is the
// authority's consent to issue the token with the given URI to the caller.
func (x *Contract) Take(caller, from, uri string, signature []byte) (Response, error) {
	return x.execute(soulboundconst.ActionMint, func(l *ledger) (Response, error) {
		if err := x.validateAddress("from", from); err != nil {
			return Response{}, err
		}

		authority, err := l.authority()
		if err != nil {
			return Response{}, err
		}

		if from != authority {
			return Response{}, fmt.Errorf("%w: tokens can only be taken from the minter", ErrUnauthorized)
		}

		if err = x.validateAddress("caller", caller); err != nil {
			return Response{}, err
		}

		id, err := agreement.Check(caller, authority, uri, signature, x.prefix)
		if err != nil {
			return Response{}, fmt.Errorf("%w: minter: %w", ErrInvalidConsent, err)
		}

		return x.mint(l, id, caller, uri)
	})
}

func (x *Contract) mint(l *ledger, id, owner, uri string) (Response, error) {
	if err := x.validateAddress("owner", owner); err != nil {
		return Response{}, err
	}

	err := l.insert(Token{
		ID:       id,
		Owner:    owner,
		URI:      uri,
		Equipped: true,
	})
	if err != nil {
		return Response{}, err
	}

	x.log.Info("token minted", zap.String("id", id), zap.String("owner", owner), zap.String("uri", uri))

	return newResponse(soulboundconst.ActionMint, id, soulboundconst.AttrOwner, owner), nil
}
