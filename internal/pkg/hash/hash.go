package hash

import (
	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hash returns the hash value of data.
func Hash(data []byte) uint64 {
	return murmur3.Sum64(data)
}

// PairKey returns an order-independent key for two digests, so that
// PairKey(a, b) == PairKey(b, a).
func PairKey(a, b string) uint64 {
	if b < a {
		a, b = b, a
	}
	d := xxhash.New()
	_, _ = d.WriteString(a)
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(b)
	return d.Sum64()
}
