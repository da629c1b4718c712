package soulbound

// ContractInfo returns contract name and symbol.
func (x *Contract) ContractInfo() (ContractInfo, error) {
	var res ContractInfo
	err := x.read(func(l *ledger) (err error) {
		res, err = l.info()
		return
	})
	return res, err
}

// Name returns contract name.
func (x *Contract) Name() (string, error) {
	info, err := x.ContractInfo()
	return info.Name, err
}

// Symbol returns contract symbol.
func (x *Contract) Symbol() (string, error) {
	info, err := x.ContractInfo()
	return info.Symbol, err
}

// Minter returns address of the authority.
func (x *Contract) Minter() (string, error) {
	var res string
	err := x.read(func(l *ledger) (err error) {
		res, err = l.authority()
		return
	})
	return res, err
}

// NumTokens returns number of tokens ever issued.
func (x *Contract) NumTokens() (uint64, error) {
	var res uint64
	err := x.read(func(l *ledger) (err error) {
		res, err = l.count()
		return
	})
	return res, err
}

// Version returns version record of the storage.
func (x *Contract) Version() (VersionInfo, error) {
	var res VersionInfo
	err := x.read(func(l *ledger) (err error) {
		res, err = l.version()
		return
	})
	return res, err
}

// TokenInfo returns token by ID.
func (x *Contract) TokenInfo(id string) (Token, error) {
	var res Token
	err := x.read(func(l *ledger) (err error) {
		res, err = l.load(id)
		return
	})
	return res, err
}

// OwnerOf returns owner of the token.
func (x *Contract) OwnerOf(id string) (string, error) {
	t, err := x.TokenInfo(id)
	return t.Owner, err
}

// AllEquippedOf returns active equipped tokens of the owner.
func (x *Contract) AllEquippedOf(owner string) ([]Token, error) {
	return x.tokensOf(owner, Equipped)
}

// AllUnequippedOf returns active unequipped tokens of the owner.
func (x *Contract) AllUnequippedOf(owner string) ([]Token, error) {
	return x.tokensOf(owner, Unequipped)
}

func (x *Contract) tokensOf(owner string, filter Filter) ([]Token, error) {
	res := []Token{}
	err := x.IterateTokensOf(owner, filter, func(t Token) bool {
		res = append(res, t)
		return true
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// IterateTokensOf passes tokens of the owner selected by filter into f in
// issuance order. Iteration stops when f returns false. Nil filter selects
// all tokens including revoked ones.
func (x *Contract) IterateTokensOf(owner string, filter Filter, f func(Token) bool) error {
	return x.IterateTokensFrom(owner, 0, filter, func(_ uint64, t Token) bool {
		return f(t)
	})
}

// IterateTokensFrom is like IterateTokensOf but skips tokens placed in the
// owner index before position from. Each token is passed into f along with
// its position, so the walk can be resumed from the next one. Positions grow
// in issuance order and never change.
func (x *Contract) IterateTokensFrom(owner string, from uint64, filter Filter, f func(pos uint64, t Token) bool) error {
	return x.read(func(l *ledger) error {
		return l.scanByOwner(owner, from, filter, f)
	})
}
