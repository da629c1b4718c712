package agreement

import (
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Schema is the agreement type string prepended to every digested agreement.
const Schema = "Agreement(address active,address passive,string tokenURI)"

// Digest returns the agreement digest of the given parties and token URI.
// The order of the parties matters.
func Digest(active, passive, uri string) util.Uint256 {
	buf := make([]byte, 0, len(Schema)+len(active)+len(passive)+len(uri))
	buf = append(buf, Schema...)
	buf = append(buf, active...)
	buf = append(buf, passive...)
	buf = append(buf, uri...)

	return hash.Sha256(buf)
}

// TokenID returns identifier of the token issued under the agreement with
// the given digest.
func TokenID(digest util.Uint256) string {
	id := hash.Sha256(digest.BytesBE())
	return base58.Encode(id.BytesBE())
}

// Check verifies that sig is the passive party's consent to the agreement
// and returns identifier of the token to issue. Any verification failure is
// reported with an error matching ErrNoConsent.
func Check(active, passive, uri string, sig []byte, hrp string) (string, error) {
	digest := Digest(active, passive, uri)

	err := Verify(digest, sig, passive, hrp)
	if err != nil {
		return "", err
	}

	return TokenID(digest), nil
}
