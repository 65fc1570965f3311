package hash

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

const (
	// MaxDistance is the bit length of a fingerprint.
	MaxDistance = 64
	// DefaultSimilarityThreshold is the similarity a pair must exceed to be similar.
	DefaultSimilarityThreshold = 0.85
)

var (
	// ErrInvalidHash is returned for fingerprints outside the hex alphabet.
	ErrInvalidHash = errors.New("hash: invalid fingerprint")
	// ErrComparisonDegraded is returned together with a result when the two
	// fingerprints had different lengths and the shorter one was zero-padded.
	ErrComparisonDegraded = errors.New("hash: fingerprint length mismatch")
)

// IsBlank reports whether a fingerprint has no bits set. Flat or single-tone
// images hash to all zeros under both schemes, so a blank fingerprint says
// nothing about the picture and matches every other blank one.
func IsBlank(fp string) bool {
	if fp == "" {
		return false
	}
	for i := 0; i < len(fp); i++ {
		if fp[i] != '0' {
			return false
		}
	}
	return true
}

// ComparisonResult is the outcome of comparing two fingerprints.
type ComparisonResult struct {
	Distance   int     `json:"distance"`
	Similarity float64 `json:"similarity"`
	IsSimilar  bool    `json:"isSimilar"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// HammingDistance calculates the Hamming distance between two hashes.
// Returns the number of different bits (0 = identical images).
func HammingDistance(hash1, hash2 uint64) int {
	return bits.OnesCount64(hash1 ^ hash2)
}

// Similarity converts a bit distance to a score in [0,1].
func Similarity(distance int) float64 {
	s := 1 - float64(distance)/MaxDistance
	if s < 0 {
		return 0
	}
	return s
}

// Compare compares two hex fingerprints using DefaultSimilarityThreshold.
func Compare(a, b string) (ComparisonResult, error) {
	return CompareWithThreshold(a, b, DefaultSimilarityThreshold)
}

// CompareWithThreshold compares two hex fingerprints bit by bit. When the lengths
// differ the shorter one is right-padded with '0', the result is marked Degraded
// and ErrComparisonDegraded is returned alongside it.
func CompareWithThreshold(a, b string, threshold float64) (ComparisonResult, error) {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	n := max(len(a), len(b))
	distance := 0
	for i := 0; i < n; i++ {
		x, err := nibbleAt(a, i)
		if err != nil {
			return ComparisonResult{}, err
		}
		y, err := nibbleAt(b, i)
		if err != nil {
			return ComparisonResult{}, err
		}
		distance += bits.OnesCount8(x ^ y)
	}

	sim := Similarity(distance)
	res := ComparisonResult{
		Distance:   distance,
		Similarity: sim,
		IsSimilar:  sim > threshold,
		Degraded:   len(a) != len(b),
	}
	if res.Degraded {
		return res, fmt.Errorf("%w: %d vs %d chars", ErrComparisonDegraded, len(a), len(b))
	}
	return res, nil
}

// nibbleAt returns the value of the hex digit at i, or 0 past the end of s.
func nibbleAt(s string, i int) (uint8, error) {
	if i >= len(s) {
		return 0, nil
	}
	c := s[i]
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	default:
		return 0, fmt.Errorf("%w: %q at %d", ErrInvalidHash, c, i)
	}
}
