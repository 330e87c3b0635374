package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows a future
// change of encoding without colliding with stored hashes.
const (
	DomainIssue  = "hubstream/issue/v1"
	DomainStream = "hubstream/stream/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// IssueHash computes the content hash of an issue. The store compares it
// to skip upserts that would not change a row.
func IssueHash(issue Issue) (string, error) {
	data, err := json.Marshal(issue)
	if err != nil {
		return "", fmt.Errorf("IssueHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainIssue, data), nil
}

// StreamHash computes the content hash of a stream definition, ignoring
// its ID. `streams watch` uses it to report which streams changed.
func StreamHash(spec StreamSpec) string {
	spec.ID = ""
	// StreamSpec holds only strings; Marshal cannot fail.
	data, _ := json.Marshal(spec)
	return hashWithDomain(DomainStream, data)
}

// MustIssueHash is like IssueHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustIssueHash(issue Issue) string {
	hash, err := IssueHash(issue)
	if err != nil {
		panic(err)
	}
	return hash
}
