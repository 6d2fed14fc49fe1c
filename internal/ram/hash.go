package ram

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainQuery is the domain prefix for query fingerprints.
// Version suffix enables future algorithm migration.
const DomainQuery = "quarry/ram/v1"

// Fingerprint computes a content-addressed identity for a query: the
// SHA-256 of its canonical JSON form with domain separation. Two queries
// have equal fingerprints exactly when they are structurally identical,
// including value-list order.
func Fingerprint(q *Query) (string, error) {
	canonical, err := MarshalCanonical(CanonicalMap(q))
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
