package data

import (
	"context"
	"encoding/hex"

	"assetguard/internal/biz"
	"assetguard/internal/conf"
	"assetguard/internal/pkg/bloom"
	"assetguard/internal/pkg/hash"
	"assetguard/internal/pkg/redis"
)

const (
	defaultBloomKey   = "assetguard:bloom:sha256"
	defaultBloomBits  = 1 << 23 // 1 MiB of bits
	defaultBloomFuncs = 7
)

// digestFilter stores SHA-256 digests in a Redis-backed bloom filter.
type digestFilter struct {
	filter *bloom.Filter
}

// NewDigestFilter creates the digest bloom filter.
func NewDigestFilter(c *conf.Dedup, cache redis.Cache) biz.DigestFilter {
	key, bits, funcs := defaultBloomKey, uint(defaultBloomBits), uint(defaultBloomFuncs)
	if c != nil {
		if c.BloomKey != "" {
			key = c.BloomKey
		}
		if c.BloomBits > 0 {
			bits = c.BloomBits
		}
		if c.BloomHashFuncs > 0 {
			funcs = c.BloomHashFuncs
		}
	}
	return &digestFilter{filter: bloom.NewBloomFilter(cache, key, bits, funcs)}
}

func (f *digestFilter) Add(ctx context.Context, digest string) error {
	return f.filter.AddWithCtx(ctx, digestBytes(digest))
}

func (f *digestFilter) MayContain(ctx context.Context, digest string) (bool, error) {
	return f.filter.ExistsWithCtx(ctx, digestBytes(digest))
}

func (f *digestFilter) Reset(ctx context.Context) error {
	return f.filter.Reset(ctx)
}

// digestBytes decodes a hex SHA-256; anything else is used verbatim.
func digestBytes(digest string) []byte {
	if hash.IsSHA256Hex(digest) {
		b, _ := hex.DecodeString(digest)
		return b
	}
	return []byte(digest)
}
