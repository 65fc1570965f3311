package bloom

import (
	"context"
	_ "embed"
	"errors"

	"assetguard/internal/pkg/hash"
	"assetguard/internal/pkg/redis"
)

var (
	// ErrTooLargeOffset indicates the offset is too large in bitset.
	ErrTooLargeOffset = errors.New("too large offset")

	//go:embed set_script.lua
	setLuaScript string
	setScript    = redis.NewScript(setLuaScript)

	//go:embed get_script.lua
	getLuaScript string
	getScript    = redis.NewScript(getLuaScript)
)

// Filter represents a Bloom filter data structure.
type Filter struct {
	bitSet         bitSetProvider
	bits           uint
	kHashFunctions uint
}

// NewBloomFilter creates a new Bloom filter with the given parameters.
func NewBloomFilter(store redis.Cache, key string, bits uint, kHashFunctions uint) *Filter {
	return &Filter{
		bits:           bits,
		bitSet:         newRedisBitSet(store, key, bits),
		kHashFunctions: kHashFunctions,
	}
}

// getLocations computes the bit locations for the given data.
func (f *Filter) getLocations(data []byte) []uint {
	locations := make([]uint, f.kHashFunctions)
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	for i := uint(0); i < f.kHashFunctions; i++ {
		buf[len(data)] = byte(i)
		hashVal := hash.Hash(buf)
		locations[i] = uint(hashVal % uint64(f.bits))
	}
	return locations
}

// AddWithCtx adds the given data to the Bloom filter with context.
func (f *Filter) AddWithCtx(ctx context.Context, data []byte) error {
	locations := f.getLocations(data)
	return f.bitSet.set(ctx, locations)
}

// Reset clears every bit, e.g. before a rebuild.
func (f *Filter) Reset(ctx context.Context) error {
	return f.bitSet.del(ctx)
}

// ExistsWithCtx checks if the given data may exist in the Bloom filter with context.
func (f *Filter) ExistsWithCtx(ctx context.Context, data []byte) (bool, error) {
	locations := f.getLocations(data)
	isSet, err := f.bitSet.check(ctx, locations)
	if err != nil {
		return false, err
	}
	return isSet, nil
}
