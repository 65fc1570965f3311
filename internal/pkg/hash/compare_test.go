package hash

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func errorsIs(err, target error) bool { return errors.Is(err, target) }

// flipBits returns the 16-char hex fingerprint with the lowest n bits inverted.
func flipBits(base uint64, n int) string {
	mask := uint64(0)
	for i := 0; i < n; i++ {
		mask |= 1 << uint(i)
	}
	return fmt.Sprintf("%016x", base^mask)
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name     string
		hash1    uint64
		hash2    uint64
		expected int
	}{
		{"identical", 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF, 0},
		{"one bit different", 0xFFFFFFFFFFFFFFFE, 0xFFFFFFFFFFFFFFFF, 1},
		{"completely different", 0x0000000000000000, 0xFFFFFFFFFFFFFFFF, 64},
		{"half swapped", 0x00000000FFFFFFFF, 0xFFFFFFFF00000000, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HammingDistance(tt.hash1, tt.hash2)
			if result != tt.expected {
				t.Errorf("HammingDistance(%x, %x) = %d; want %d", tt.hash1, tt.hash2, result, tt.expected)
			}
		})
	}
}

func TestCompare_Threshold(t *testing.T) {
	const base = 0xA5A5A5A5A5A5A5A5
	tests := []struct {
		flipped     int
		wantSimilar bool
	}{
		{0, true},
		{5, true},
		{9, true},
		{10, false},
		{32, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("distance %d", tt.flipped), func(t *testing.T) {
			res, err := Compare(flipBits(base, 0), flipBits(base, tt.flipped))
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if res.Distance != tt.flipped {
				t.Errorf("Distance = %d; want %d", res.Distance, tt.flipped)
			}
			if res.IsSimilar != tt.wantSimilar {
				t.Errorf("IsSimilar = %v (similarity %.4f); want %v", res.IsSimilar, res.Similarity, tt.wantSimilar)
			}
			want := 1 - float64(tt.flipped)/64
			if res.Similarity != want {
				t.Errorf("Similarity = %f; want %f", res.Similarity, want)
			}
		})
	}
}

func TestCompare_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"ffffffffffffffff", "0000000000000000"},
		{"deadbeef12345678", "cafebabe87654321"},
		{"0123456789abcdef", "fedcba9876543210"},
		{"abc", "abcdef0123456789"},
	}
	for _, p := range pairs {
		r1, _ := Compare(p[0], p[1])
		r2, _ := Compare(p[1], p[0])
		if r1.Similarity != r2.Similarity || r1.Distance != r2.Distance {
			t.Errorf("Compare(%s, %s) not symmetric: %+v vs %+v", p[0], p[1], r1, r2)
		}
	}
}

func TestCompare_CaseInsensitive(t *testing.T) {
	res, err := Compare("DEADBEEF12345678", "deadbeef12345678")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Distance != 0 {
		t.Errorf("Distance = %d; want 0", res.Distance)
	}
}

func TestCompare_LengthMismatch(t *testing.T) {
	res, err := Compare("ff", "ff00000000000000")
	if !errors.Is(err, ErrComparisonDegraded) {
		t.Fatalf("Expected ErrComparisonDegraded, got %v", err)
	}
	if !res.Degraded {
		t.Error("Expected result flagged as degraded")
	}
	if res.Distance != 0 {
		t.Errorf("Zero-padded distance = %d; want 0", res.Distance)
	}
}

func TestCompare_InvalidHash(t *testing.T) {
	_, err := Compare("zz", "00")
	if !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Expected ErrInvalidHash, got %v", err)
	}
}

func TestSimilarity_Clamped(t *testing.T) {
	if s := Similarity(100); s != 0 {
		t.Errorf("Similarity(100) = %f; want 0", s)
	}
	long := strings.Repeat("f", 32)
	res, _ := Compare(long, strings.Repeat("0", 32))
	if res.Similarity != 0 {
		t.Errorf("Similarity for 128 differing bits = %f; want 0", res.Similarity)
	}
}

func TestSha256Hasher(t *testing.T) {
	h := NewSha256Hasher()
	a, err := h.ComputeHashFromBytes([]byte("hello"))
	if err != nil {
		t.Fatalf("ComputeHashFromBytes failed: %v", err)
	}
	if a != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("unexpected digest %s", a)
	}
	if !IsSHA256Hex(a) {
		t.Errorf("IsSHA256Hex(%s) = false", a)
	}
	if _, err := h.ComputeHashFromBytes(nil); !errors.Is(err, ErrHashing) {
		t.Errorf("Expected ErrHashing for empty input, got %v", err)
	}
}

func TestPairKey_OrderIndependent(t *testing.T) {
	if PairKey("a", "b") != PairKey("b", "a") {
		t.Error("PairKey should not depend on argument order")
	}
	if PairKey("a", "b") == PairKey("a", "c") {
		t.Error("PairKey should differ for different pairs")
	}
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		fp   string
		want bool
	}{
		{"0000000000000000", true},
		{"000000000000000", true},
		{"0000000000000001", false},
		{"8000000000000000", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.fp); got != tt.want {
			t.Errorf("IsBlank(%q) = %v; want %v", tt.fp, got, tt.want)
		}
	}
}
