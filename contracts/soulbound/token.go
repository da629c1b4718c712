package soulbound

import (
	"fmt"

	"github.com/aura-nw/soulbound/common"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Token is a soulbound token record.
type Token struct {
	// ID is the token identifier, immutable.
	ID string `json:"id"`
	// Owner is the address the token is bound to.
	Owner string `json:"owner"`
	// URI points to token metadata, immutable.
	URI string `json:"nft_uri"`
	// Equipped is set while the token is worn by its owner.
	Equipped bool `json:"equipped"`
	// Revoked is set once the authority unadmits the token. Revoked tokens
	// are kept but never listed.
	Revoked bool `json:"revoked"`
}

const tokenFields = 5

// Active reports whether the token is not revoked.
func (t Token) Active() bool {
	return !t.Revoked
}

// Filter selects tokens during enumeration.
type Filter func(Token) bool

// Equipped selects active equipped tokens.
func Equipped(t Token) bool {
	return t.Equipped && t.Active()
}

// Unequipped selects active unequipped tokens.
func Unequipped(t Token) bool {
	return !t.Equipped && t.Active()
}

// All selects every token including revoked ones.
func All(Token) bool {
	return true
}

func (t Token) toStackItem() stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(t.ID)),
		stackitem.NewByteArray([]byte(t.Owner)),
		stackitem.NewByteArray([]byte(t.URI)),
		stackitem.NewBool(t.Equipped),
		stackitem.NewBool(t.Revoked),
	})
}

func (t *Token) fromStackItem(item stackitem.Item) error {
	fields, err := common.StructFields(item, tokenFields)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	if t.ID, err = common.ItemString(fields[0]); err != nil {
		return fmt.Errorf("invalid token ID: %w", err)
	}
	if t.Owner, err = common.ItemString(fields[1]); err != nil {
		return fmt.Errorf("invalid token owner: %w", err)
	}
	if t.URI, err = common.ItemString(fields[2]); err != nil {
		return fmt.Errorf("invalid token URI: %w", err)
	}
	if t.Equipped, err = fields[3].TryBool(); err != nil {
		return fmt.Errorf("invalid token equip flag: %w", err)
	}
	if t.Revoked, err = fields[4].TryBool(); err != nil {
		return fmt.Errorf("invalid token revoke flag: %w", err)
	}

	return nil
}
