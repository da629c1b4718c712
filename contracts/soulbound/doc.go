/*
Package soulbound implements the Soulbound contract: a ledger of
non-transferable tokens issued only with mutual consent of the minter and
the token owner.

Tokens are issued in three ways:

  - Give: the minter issues a token to a recipient presenting the
    recipient's signature of the agreement (minter, recipient, URI);
  - Take: a user issues a token to itself presenting the minter's signature
    of the agreement (user, minter, URI);
  - Mint: the minter issues a token with explicit ID without any consent.

Token IDs of consent-based issuance are derived from the agreement (see
package agreement), so the same agreement can be used only once.

Token owners can Unequip and Equip their tokens. The minter can Revoke
(unadmit) any token: revoked tokens stay in the ledger, but are excluded
from owner listings forever.

# Contract storage

	'i'                          -> [name, symbol]
	'm'                          -> minter address
	'n'                          -> number of issued tokens
	'v'                          -> [contract name, version]
	't' | ID                     -> [ID, owner, URI, equipped, revoked]
	'o' | len | owner | sequence -> ID

Each operation either writes all of its changes or none of them.

# Operation responses

Mutating operations return attributes:

	mint:    action, nft_id, owner
	unequip: action, nft_id, owner
	equip:   action, nft_id, owner
	unadmit: action, nft_id, minter
*/
package soulbound
