package soulbound

import (
	"fmt"

	"github.com/aura-nw/soulbound/agreement"
	"github.com/aura-nw/soulbound/contracts/soulbound"
)

type (
	// NameResponse is the result of Name query.
	NameResponse struct {
		Name string `json:"name"`
	}

	// SymbolResponse is the result of Symbol query.
	SymbolResponse struct {
		Symbol string `json:"symbol"`
	}

	// MinterResponse is the result of Minter query.
	MinterResponse struct {
		Minter string `json:"minter"`
	}

	// NumTokensResponse is the result of NumTokens query.
	NumTokensResponse struct {
		Count uint64 `json:"count"`
	}

	// OwnerOfResponse is the result of OwnerOf query.
	OwnerOfResponse struct {
		Owner string `json:"owner"`
	}

	// TokensResponse is the result of AllEquippedOf and AllUnequippedOf
	// queries.
	TokensResponse struct {
		Tokens []soulbound.Token `json:"tokens"`
	}
)

// Execute dispatches msg to the corresponding operation of c on behalf of
// caller. Consent signatures are accepted in hex and base64 encodings.
func Execute(c *soulbound.Contract, caller string, msg ExecuteMsg) (soulbound.Response, error) {
	switch m := msg.(type) {
	case Mint:
		return c.Mint(caller, m.ID, m.Owner, m.URI)
	case Give:
		sig, err := decodeSignature(m.Signature)
		if err != nil {
			return soulbound.Response{}, err
		}
		return c.Give(caller, m.To, m.URI, sig)
	case Take:
		sig, err := decodeSignature(m.Signature)
		if err != nil {
			return soulbound.Response{}, err
		}
		return c.Take(caller, m.From, m.URI, sig)
	case Unequip:
		return c.Unequip(caller, m.ID)
	case Equip:
		return c.Equip(caller, m.ID)
	case Revoke:
		return c.Revoke(caller, m.ID)
	default:
		return soulbound.Response{}, fmt.Errorf("%w: unsupported execute message %T", ErrInvalidMessage, msg)
	}
}

// Query dispatches msg to the corresponding read method of c. The returned
// value is ready for JSON encoding.
func Query(c *soulbound.Contract, msg QueryMsg) (any, error) {
	switch m := msg.(type) {
	case ContractInfo:
		return c.ContractInfo()
	case Name:
		v, err := c.Name()
		return NameResponse{Name: v}, err
	case Symbol:
		v, err := c.Symbol()
		return SymbolResponse{Symbol: v}, err
	case Minter:
		v, err := c.Minter()
		return MinterResponse{Minter: v}, err
	case NumTokens:
		v, err := c.NumTokens()
		return NumTokensResponse{Count: v}, err
	case Version:
		return c.Version()
	case OwnerOf:
		v, err := c.OwnerOf(m.ID)
		return OwnerOfResponse{Owner: v}, err
	case TokenInfo:
		return c.TokenInfo(m.ID)
	case AllEquippedOf:
		v, err := c.AllEquippedOf(m.Owner)
		return tokensResponse(v), err
	case AllUnequippedOf:
		v, err := c.AllUnequippedOf(m.Owner)
		return tokensResponse(v), err
	default:
		return nil, fmt.Errorf("%w: unsupported query message %T", ErrInvalidMessage, msg)
	}
}

func tokensResponse(tokens []soulbound.Token) TokensResponse {
	if tokens == nil {
		tokens = []soulbound.Token{}
	}
	return TokensResponse{Tokens: tokens}
}

func decodeSignature(s string) ([]byte, error) {
	sig, err := agreement.DecodeSignature(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", soulbound.ErrInvalidConsent, err)
	}
	return sig, nil
}
