/*
Package agreement implements consent verification for soulbound token
issuance.

An agreement binds three values: the active party (the one submitting the
issuance), the passive party (the one whose consent is required) and the
token URI. The agreement digest is

	sha256(Schema || active || passive || uri)

The passive party signs the digest with its secp256k1 key. Verification
recovers the signer's public key from the signature, derives its bech32
address (hash160 of the compressed key under the chain prefix) and compares
it with the passive party address. The token identifier is the base58
encoding of sha256(digest), so it can only be reproduced by someone knowing
all agreement fields.

Signatures are accepted in two forms: over the raw digest, and over an
ADR-36 sign document carrying the digest (what browser wallets produce for
arbitrary data signing).
*/
package agreement
