package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrHashing is returned when the content digest cannot be computed.
var ErrHashing = errors.New("hash: content digest failed")

// Sha256Hasher computes exact-match content digests.
type Sha256Hasher struct{}

// NewSha256Hasher creates a new Sha256Hasher.
func NewSha256Hasher() *Sha256Hasher {
	return &Sha256Hasher{}
}

// ComputeHashFromBytes returns the lowercase hex SHA-256 of data.
// Empty input is rejected: there is nothing to fingerprint.
func (h *Sha256Hasher) ComputeHashFromBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrHashing)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IsSHA256Hex reports whether s looks like a lowercase hex SHA-256 digest.
func IsSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
