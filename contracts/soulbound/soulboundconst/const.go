/*
Package soulboundconst contains constants shared by the Soulbound contract
and its clients.
*/
package soulboundconst

// ContractName is recorded in the contract version record.
const ContractName = "aura-4973"

// Storage layout. Every key starts with one of these bytes.
const (
	// ContractInfoKey stores [name, symbol] struct.
	ContractInfoKey = 'i'
	// AuthorityKey stores address of the minter.
	AuthorityKey = 'm'
	// CounterKey stores number of issued tokens.
	CounterKey = 'n'
	// VersionKey stores [contract name, version] struct.
	VersionKey = 'v'
	// TokenPrefix prefixes token records keyed by token ID.
	TokenPrefix = 't'
	// OwnerIndexPrefix prefixes owner index entries:
	//
	//	'o' | len(owner) | owner | big-endian uint64 sequence -> token ID
	OwnerIndexPrefix = 'o'
)

// StoragePrefixes lists first bytes of all contract storage keys.
var StoragePrefixes = [...]byte{
	ContractInfoKey,
	AuthorityKey,
	CounterKey,
	VersionKey,
	TokenPrefix,
	OwnerIndexPrefix,
}

// MaxOwnerLen is the maximum length of owner address kept in the owner index.
const MaxOwnerLen = 255

// Response actions.
const (
	ActionMint    = "mint"
	ActionEquip   = "equip"
	ActionUnequip = "unequip"
	ActionUnadmit = "unadmit"
)

// Response attribute keys.
const (
	AttrAction  = "action"
	AttrTokenID = "nft_id"
	AttrOwner   = "owner"
	AttrMinter  = "minter"
)
