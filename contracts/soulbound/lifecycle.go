package soulbound

import (
	"fmt"

	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound/soulboundconst"
	"go.uber.org/zap"
)

// Unequip takes the token off. It can be invoked only by the token owner.
func (x *Contract) Unequip(caller, id string) (Response, error) {
	return x.execute(soulboundconst.ActionUnequip, func(l *ledger) (Response, error) {
		t, err := x.ownedToken(l, caller, id)
		if err != nil {
			return Response{}, err
		}

		if !t.Equipped {
			return Response{}, ErrAlreadyUnequipped
		}

		t.Equipped = false

		if err = l.store(t); err != nil {
			return Response{}, err
		}

		x.log.Info("token unequipped", zap.String("id", id), zap.String("owner", caller))

		return newResponse(soulboundconst.ActionUnequip, id, soulboundconst.AttrOwner, caller), nil
	})
}

// Equip puts the token back on. It can be invoked only by the token owner.
func (x *Contract) Equip(caller, id string) (Response, error) {
	return x.execute(soulboundconst.ActionEquip, func(l *ledger) (Response, error) {
		t, err := x.ownedToken(l, caller, id)
		if err != nil {
			return Response{}, err
		}

		if t.Equipped {
			return Response{}, ErrAlreadyEquipped
		}

		t.Equipped = true

		if err = l.store(t); err != nil {
			return Response{}, err
		}

		x.log.Info("token equipped", zap.String("id", id), zap.String("owner", caller))

		return newResponse(soulboundconst.ActionEquip, id, soulboundconst.AttrOwner, caller), nil
	})
}

// Revoke unadmits the token: it stays in the ledger but disappears from
// owner listings. There is no way back. It can be invoked only by the
// authority.
func (x *Contract) Revoke(caller, id string) (Response, error) {
	return x.execute(soulboundconst.ActionUnadmit, func(l *ledger) (Response, error) {
		authority, err := l.authority()
		if err != nil {
			return Response{}, err
		}

		if err = common.CheckAuthorityWitness(caller, authority); err != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrNotMinter, err)
		}

		t, err := l.load(id)
		if err != nil {
			return Response{}, err
		}

		if t.Revoked {
			return Response{}, ErrAlreadyRevoked
		}

		t.Revoked = true

		if err = l.store(t); err != nil {
			return Response{}, err
		}

		x.log.Info("token unadmitted", zap.String("id", id), zap.String("owner", t.Owner))

		return newResponse(soulboundconst.ActionUnadmit, id, soulboundconst.AttrMinter, caller), nil
	})
}

func (x *Contract) ownedToken(l *ledger, caller, id string) (Token, error) {
	t, err := l.load(id)
	if err != nil {
		return t, err
	}

	if err = common.CheckOwnerWitness(caller, t.Owner); err != nil {
		return t, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return t, nil
}
