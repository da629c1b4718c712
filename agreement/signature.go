package agreement

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrNoConsent is matched by every consent verification failure.
	ErrNoConsent = errors.New("no consent")
	// ErrMalformedSignature is returned for signatures that can not be parsed.
	ErrMalformedSignature = fmt.Errorf("%w: malformed signature", ErrNoConsent)
	// ErrRecoveryFailed is returned when no public key can be recovered from
	// the signature.
	ErrRecoveryFailed = fmt.Errorf("%w: public key recovery failed", ErrNoConsent)
	// ErrSignerMismatch is returned when the recovered signer differs from
	// the party whose consent is required.
	ErrSignerMismatch = fmt.Errorf("%w: signer mismatch", ErrNoConsent)
)

const (
	scalarLen = 32
	// SignatureLen is the length of r || s signature without recovery id.
	SignatureLen = 2 * scalarLen
	// RecoverableSignatureLen is the length of r || s || v signature.
	RecoverableSignatureLen = SignatureLen + 1

	// compact signature header used by secp256k1 package: 27 + recovery id
	// + 4 for compressed keys.
	compactMagic      = 27
	compactCompressed = 4
)

// DecodeSignature decodes hex or base64 encoded signature. It doesn't check
// signature length or contents, see Recover for that.
func DecodeSignature(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedSignature)
	}

	if b, err := hex.DecodeString(strings.TrimPrefix(s, "0x")); err == nil {
		return b, nil
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: neither hex nor base64", ErrMalformedSignature)
	}

	return b, nil
}

// Recover returns public keys which could have produced sig over digest.
//
// 65-byte signatures carry recovery id in the last byte (0, 1, 27 or 28) and
// yield at most one key. 64-byte signatures have no recovery id, so all
// possible ids are tried and every successfully recovered key is returned.
// Signatures with s in the upper half of the group order are rejected as
// non-canonical.
func Recover(digest []byte, sig []byte) ([]*secp256k1.PublicKey, error) {
	var ids []byte

	switch len(sig) {
	case SignatureLen:
		ids = []byte{0, 1}
	case RecoverableSignatureLen:
		v := sig[SignatureLen]
		if v >= compactMagic {
			v -= compactMagic
		}
		if v > 1 {
			return nil, fmt.Errorf("%w: unsupported recovery id %d", ErrMalformedSignature, sig[SignatureLen])
		}
		ids = []byte{v}
	default:
		return nil, fmt.Errorf("%w: length %d", ErrMalformedSignature, len(sig))
	}

	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(sig[:scalarLen]) || r.IsZero() {
		return nil, fmt.Errorf("%w: invalid r", ErrMalformedSignature)
	}
	if s.SetByteSlice(sig[scalarLen:SignatureLen]) || s.IsZero() {
		return nil, fmt.Errorf("%w: invalid s", ErrMalformedSignature)
	}
	if s.IsOverHalfOrder() {
		return nil, fmt.Errorf("%w: non-canonical s", ErrMalformedSignature)
	}

	compact := make([]byte, RecoverableSignatureLen)
	copy(compact[1:], sig[:SignatureLen])

	var res []*secp256k1.PublicKey
	for _, id := range ids {
		compact[0] = compactMagic + compactCompressed + id

		pub, _, err := ecdsa.RecoverCompact(compact, digest)
		if err == nil {
			res = append(res, pub)
		}
	}

	if len(res) == 0 {
		return nil, ErrRecoveryFailed
	}

	return res, nil
}

// Verify checks that sig was produced over the agreement digest by the key
// of the expected address under the hrp prefix. Both raw digest signatures
// and ADR-36 signatures (see SignBytes) are accepted.
func Verify(digest util.Uint256, sig []byte, expected, hrp string) error {
	err := verifyHash(digest.BytesBE(), sig, expected, hrp)
	if err == nil || errors.Is(err, ErrMalformedSignature) {
		return err
	}

	signDoc, sErr := SignBytes(expected, digest.BytesBE())
	if sErr != nil {
		return err
	}

	if verifyHash(hash.Sha256(signDoc).BytesBE(), sig, expected, hrp) == nil {
		return nil
	}

	return err
}

func verifyHash(h []byte, sig []byte, expected, hrp string) error {
	pubs, err := Recover(h, sig)
	if err != nil {
		return err
	}

	for i := range pubs {
		addr, err := Address(pubs[i], hrp)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRecoveryFailed, err)
		}

		if addr == expected {
			return nil
		}
	}

	return ErrSignerMismatch
}

// Sign signs the agreement digest with the given key and returns 65-byte
// r || s || v signature accepted by Verify.
func Sign(key *secp256k1.PrivateKey, digest util.Uint256) []byte {
	return signHash(key, digest.BytesBE())
}

// SignADR36 signs the ADR-36 document of the agreement digest on behalf of
// signer (which must be the key's address) like wallets do for arbitrary
// data.
func SignADR36(key *secp256k1.PrivateKey, signer string, digest util.Uint256) ([]byte, error) {
	doc, err := SignBytes(signer, digest.BytesBE())
	if err != nil {
		return nil, err
	}

	return signHash(key, hash.Sha256(doc).BytesBE()), nil
}

func signHash(key *secp256k1.PrivateKey, h []byte) []byte {
	compact := ecdsa.SignCompact(key, h, true)

	sig := make([]byte, RecoverableSignatureLen)
	copy(sig, compact[1:])
	sig[SignatureLen] = compact[0] - compactMagic - compactCompressed

	return sig
}
