package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests. The version suffix leaves room for
// an algorithm change without colliding with stored digests.
const (
	DomainDocument = "dativeconv/document/v1"
	DomainBatch    = "dativeconv/batch/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentDigest returns the content digest of d's canonical encoding.
// The store uses it to tell a re-import of identical content from a change.
func DocumentDigest(d Document) (string, error) {
	canonical, err := MarshalCanonical(d)
	if err != nil {
		return "", fmt.Errorf("DocumentDigest %s: %w", Key(d), err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// BatchDigest identifies a bulk write by its project and the digests of its
// documents. The result does not depend on the order of docs.
func BatchDigest(project string, docs []Document) (string, error) {
	digests := make(map[string]any, len(docs))
	for _, d := range docs {
		dd, err := DocumentDigest(d)
		if err != nil {
			return "", err
		}
		digests[Key(d)] = dd
	}
	obj := map[string]any{
		"project":   project,
		"documents": digests,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("BatchDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBatch, canonical), nil
}

// MustDocumentDigest is like DocumentDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDocumentDigest(d Document) string {
	dd, err := DocumentDigest(d)
	if err != nil {
		panic(err)
	}
	return dd
}
