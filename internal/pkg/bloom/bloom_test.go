package bloom

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// memBitSet is an in-memory bitSetProvider.
type memBitSet struct {
	mu   sync.Mutex
	bits map[uint]bool
}

func (m *memBitSet) check(_ context.Context, offsets []uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range offsets {
		if !m.bits[o] {
			return false, nil
		}
	}
	return true, nil
}

func (m *memBitSet) set(_ context.Context, offsets []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range offsets {
		m.bits[o] = true
	}
	return nil
}

func (m *memBitSet) del(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bits = make(map[uint]bool)
	return nil
}

func newMemFilter(bits, k uint) *Filter {
	return &Filter{bitSet: &memBitSet{bits: make(map[uint]bool)}, bits: bits, kHashFunctions: k}
}

func TestFilter_AddExists(t *testing.T) {
	ctx := context.Background()
	f := newMemFilter(1<<16, 7)

	for i := 0; i < 100; i++ {
		if err := f.AddWithCtx(ctx, []byte(fmt.Sprintf("digest-%d", i))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	for i := 0; i < 100; i++ {
		ok, err := f.ExistsWithCtx(ctx, []byte(fmt.Sprintf("digest-%d", i)))
		if err != nil || !ok {
			t.Errorf("digest-%d: expected present, got %v %v", i, ok, err)
		}
	}

	falsePositives := 0
	for i := 100; i < 1100; i++ {
		if ok, _ := f.ExistsWithCtx(ctx, []byte(fmt.Sprintf("digest-%d", i))); ok {
			falsePositives++
		}
	}
	if falsePositives > 10 {
		t.Errorf("Too many false positives: %d/1000", falsePositives)
	}
}

func TestFilter_Reset(t *testing.T) {
	ctx := context.Background()
	f := newMemFilter(1024, 3)
	data := []byte("abc")

	_ = f.AddWithCtx(ctx, data)
	if err := f.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if ok, _ := f.ExistsWithCtx(ctx, data); ok {
		t.Error("Expected empty filter after Reset")
	}
}

func TestFilter_LocationsDoNotMutateInput(t *testing.T) {
	f := newMemFilter(1024, 5)
	backing := make([]byte, 3, 8)
	copy(backing, "abc")
	extended := backing[:4]
	extended[3] = 'z'

	_ = f.getLocations(backing)
	if extended[3] != 'z' {
		t.Error("getLocations wrote past the input slice")
	}

	a := f.getLocations([]byte("abc"))
	b := f.getLocations([]byte("abc"))
	for i := range a {
		if a[i] != b[i] || a[i] >= 1024 {
			t.Fatalf("locations not deterministic or out of range: %v %v", a, b)
		}
	}
}

func TestRedisBitSet_OffsetBounds(t *testing.T) {
	r := newRedisBitSet(nil, "k", 8)
	if _, err := r.buildOffsetArgs([]uint{1, 8}); err != ErrTooLargeOffset {
		t.Errorf("Expected ErrTooLargeOffset, got %v", err)
	}
	args, err := r.buildOffsetArgs([]uint{0, 7})
	if err != nil || len(args) != 2 || args[1] != "7" {
		t.Errorf("Unexpected args %v, err %v", args, err)
	}
}
