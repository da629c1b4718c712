// Package soulbound contains message definitions and dispatching wrappers
// for the Soulbound contract.
package soulbound

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidMessage is returned for messages that can not be decoded.
var ErrInvalidMessage = errors.New("invalid message")

// ExecuteMsg is one of Mint, Give, Take, Unequip, Equip and Revoke.
type ExecuteMsg interface {
	executeKey() string
}

// QueryMsg is one of ContractInfo, Name, Symbol, Minter, NumTokens, OwnerOf,
// TokenInfo, AllEquippedOf, AllUnequippedOf and Version.
type QueryMsg interface {
	queryKey() string
}

type (
	// Mint issues token with explicit ID, minter only.
	Mint struct {
		ID    string `json:"nft_id"`
		Owner string `json:"owner"`
		URI   string `json:"nft_uri"`
	}

	// Give issues token to the recipient with its consent, minter only.
	Give struct {
		To        string `json:"to"`
		URI       string `json:"uri"`
		Signature string `json:"signature"`
	}

	// Take issues token to the sender with the minter's consent.
	Take struct {
		From      string `json:"from"`
		URI       string `json:"uri"`
		Signature string `json:"signature"`
	}

	// Unequip takes token off, owner only.
	Unequip struct {
		ID string `json:"nft_id"`
	}

	// Equip puts token on, owner only.
	Equip struct {
		ID string `json:"nft_id"`
	}

	// Revoke unadmits token, minter only.
	Revoke struct {
		ID string `json:"nft_id"`
	}
)

func (Mint) executeKey() string    { return "mint" }
func (Give) executeKey() string    { return "give" }
func (Take) executeKey() string    { return "take" }
func (Unequip) executeKey() string { return "un_equip" }
func (Equip) executeKey() string   { return "equip" }
func (Revoke) executeKey() string  { return "un_admit" }

type (
	// ContractInfo requests contract name and symbol.
	ContractInfo struct{}
	// Name requests contract name.
	Name struct{}
	// Symbol requests contract symbol.
	Symbol struct{}
	// Minter requests the minter address.
	Minter struct{}
	// NumTokens requests number of issued tokens.
	NumTokens struct{}
	// Version requests contract version record.
	Version struct{}

	// OwnerOf requests owner of the token.
	OwnerOf struct {
		ID string `json:"nft_id"`
	}

	// TokenInfo requests full token record.
	TokenInfo struct {
		ID string `json:"nft_id"`
	}

	// AllEquippedOf requests active equipped tokens of the owner.
	AllEquippedOf struct {
		Owner string `json:"owner"`
	}

	// AllUnequippedOf requests active unequipped tokens of the owner.
	AllUnequippedOf struct {
		Owner string `json:"owner"`
	}
)

func (ContractInfo) queryKey() string    { return "contract_info" }
func (Name) queryKey() string            { return "name" }
func (Symbol) queryKey() string          { return "symbol" }
func (Minter) queryKey() string          { return "minter" }
func (NumTokens) queryKey() string       { return "num_nfts" }
func (Version) queryKey() string         { return "version" }
func (OwnerOf) queryKey() string         { return "owner_of" }
func (TokenInfo) queryKey() string       { return "nft_info" }
func (AllEquippedOf) queryKey() string   { return "all_equipped_nft_of" }
func (AllUnequippedOf) queryKey() string { return "all_unequipped_nft_of" }

// DecodeExecuteMsg decodes JSON object with exactly one key naming the
// operation, e.g. {"equip":{"nft_id":"..."}}.
func DecodeExecuteMsg(data []byte) (ExecuteMsg, error) {
	key, body, err := splitMsg(data)
	if err != nil {
		return nil, err
	}

	switch key {
	case "mint":
		return decodeExecute[Mint](key, body)
	case "give":
		return decodeExecute[Give](key, body)
	case "take":
		return decodeExecute[Take](key, body)
	case "un_equip", "unequip":
		return decodeExecute[Unequip](key, body)
	case "equip":
		return decodeExecute[Equip](key, body)
	case "un_admit", "unadmit", "revoke":
		return decodeExecute[Revoke](key, body)
	default:
		return nil, fmt.Errorf("%w: unknown execute message '%s'", ErrInvalidMessage, key)
	}
}

// DecodeQueryMsg decodes JSON object with exactly one key naming the query,
// e.g. {"num_nfts":{}}.
func DecodeQueryMsg(data []byte) (QueryMsg, error) {
	key, body, err := splitMsg(data)
	if err != nil {
		return nil, err
	}

	switch key {
	case "contract_info":
		return decodeQuery[ContractInfo](key, body)
	case "name":
		return decodeQuery[Name](key, body)
	case "symbol":
		return decodeQuery[Symbol](key, body)
	case "minter":
		return decodeQuery[Minter](key, body)
	case "num_nfts":
		return decodeQuery[NumTokens](key, body)
	case "version":
		return decodeQuery[Version](key, body)
	case "owner_of":
		return decodeQuery[OwnerOf](key, body)
	case "nft_info":
		return decodeQuery[TokenInfo](key, body)
	case "all_equipped_nft_of":
		return decodeQuery[AllEquippedOf](key, body)
	case "all_unequipped_nft_of":
		return decodeQuery[AllUnequippedOf](key, body)
	default:
		return nil, fmt.Errorf("%w: unknown query message '%s'", ErrInvalidMessage, key)
	}
}

// EncodeExecuteMsg encodes message into the form accepted by
// DecodeExecuteMsg.
func EncodeExecuteMsg(msg ExecuteMsg) ([]byte, error) {
	return json.Marshal(map[string]any{msg.executeKey(): msg})
}

// EncodeQueryMsg encodes message into the form accepted by DecodeQueryMsg.
func EncodeQueryMsg(msg QueryMsg) ([]byte, error) {
	return json.Marshal(map[string]any{msg.queryKey(): msg})
}

func splitMsg(data []byte) (string, json.RawMessage, error) {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if len(raw) != 1 {
		return "", nil, fmt.Errorf("%w: exactly one operation expected, got %d", ErrInvalidMessage, len(raw))
	}

	for k, v := range raw {
		return k, v, nil
	}

	panic("unreachable")
}

func decodeExecute[T ExecuteMsg](key string, body json.RawMessage) (ExecuteMsg, error) {
	msg, err := decodeBody[T](key, body)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeQuery[T QueryMsg](key string, body json.RawMessage) (QueryMsg, error) {
	msg, err := decodeBody[T](key, body)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeBody[T any](key string, body json.RawMessage) (T, error) {
	var res T

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	err := dec.Decode(&res)
	if err != nil {
		return res, fmt.Errorf("%w: decode '%s': %w", ErrInvalidMessage, key, err)
	}

	return res, nil
}
