package agreement

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
)

// DefaultPrefix is the human-readable address prefix of the Aura network.
const DefaultPrefix = "aura"

// addressLen is the length of the address payload (hash160).
const addressLen = 20

// ErrInvalidAddress is returned for strings which are not valid addresses
// of the expected network.
var ErrInvalidAddress = errors.New("invalid address")

// Address derives bech32 address of the given public key under the hrp
// prefix: hash160 (ripemd160 of sha256) of the compressed key encoding.
func Address(pub *secp256k1.PublicKey, hrp string) (string, error) {
	h := hash.Hash160(pub.SerializeCompressed())

	conv, err := bech32.ConvertBits(h.BytesBE(), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address bits: %w", err)
	}

	addr, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", fmt.Errorf("encode address with prefix '%s': %w", hrp, err)
	}

	return addr, nil
}

// ValidateAddress checks that addr is a bech32 address with the hrp prefix
// and a 20-byte payload.
func ValidateAddress(addr, hrp string) error {
	prefix, data, err := bech32.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w '%s': %w", ErrInvalidAddress, addr, err)
	}

	if prefix != hrp {
		return fmt.Errorf("%w '%s': prefix '%s' expected, got '%s'", ErrInvalidAddress, addr, hrp, prefix)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return fmt.Errorf("%w '%s': %w", ErrInvalidAddress, addr, err)
	}

	if len(payload) != addressLen {
		return fmt.Errorf("%w '%s': %d-byte payload expected, got %d", ErrInvalidAddress, addr, addressLen, len(payload))
	}

	return nil
}

// Validator validates addresses of a single network.
type Validator struct {
	// Prefix is the human-readable part required in all addresses.
	Prefix string
}

// ValidateAddress checks addr against the Validator prefix.
func (v Validator) ValidateAddress(addr string) error {
	return ValidateAddress(addr, v.Prefix)
}
