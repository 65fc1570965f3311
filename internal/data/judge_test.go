package data

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"assetguard/internal/conf"
	"assetguard/internal/pkg/llm"
	pkgredis "assetguard/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
	goredis "github.com/redis/go-redis/v9"
)

// memCache is an in-memory pkgredis.Cache for string keys.
type memCache struct {
	mu   sync.Mutex
	vals map[string]string
	err  error
}

func newMemCache() *memCache {
	return &memCache{vals: make(map[string]string)}
}

func (m *memCache) SetString(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.vals[key] = value
	return nil
}

func (m *memCache) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.vals[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memCache) ScriptRun(context.Context, *goredis.Script, []string, ...any) (any, error) {
	return nil, errors.New("scripts not supported")
}

func (m *memCache) Del(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.vals[k]; ok {
			delete(m.vals, k)
			n++
		}
	}
	return n, nil
}

func (m *memCache) Ping(context.Context) error { return nil }
func (m *memCache) Close() error               { return nil }

type countingJudge struct {
	calls int
	same  bool
	err   error
}

func (j *countingJudge) CompareImages(context.Context, llm.ImageInput, llm.ImageInput) (*llm.Verdict, error) {
	j.calls++
	if j.err != nil {
		return nil, j.err
	}
	return &llm.Verdict{Same: j.same, Message: "checked", Model: "m"}, nil
}

func TestCachedJudge(t *testing.T) {
	ctx := context.Background()
	next := &countingJudge{same: true}
	j := newCachedJudge(next, newMemCache(), time.Hour, log.DefaultLogger)

	a := llm.ImageInput{Data: []byte("image-a")}
	b := llm.ImageInput{Data: []byte("image-b")}

	for _, pair := range [][2]llm.ImageInput{{a, b}, {b, a}, {a, b}} {
		v, err := j.CompareImages(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("CompareImages failed: %v", err)
		}
		if !v.Same || v.Message != "checked" {
			t.Errorf("unexpected verdict %+v", v)
		}
	}
	if next.calls != 1 {
		t.Errorf("Expected one backend call for a pair in either order, got %d", next.calls)
	}

	if _, err := j.CompareImages(ctx, a, llm.ImageInput{Data: []byte("image-c")}); err != nil {
		t.Fatalf("CompareImages failed: %v", err)
	}
	if next.calls != 2 {
		t.Errorf("Expected a new pair to reach the backend, got %d calls", next.calls)
	}
}

func TestCachedJudge_Failures(t *testing.T) {
	ctx := context.Background()
	a := llm.ImageInput{Data: []byte("a")}
	b := llm.ImageInput{Data: []byte("b")}

	// Cache outage falls through to the backend.
	cache := newMemCache()
	cache.err = errors.New("connection refused")
	next := &countingJudge{same: false}
	j := newCachedJudge(next, cache, time.Hour, log.DefaultLogger)
	if v, err := j.CompareImages(ctx, a, b); err != nil || v.Same {
		t.Errorf("Expected backend verdict despite cache outage, got %+v %v", v, err)
	}

	// Backend failures are not cached.
	cache = newMemCache()
	next = &countingJudge{err: llm.ErrJudgeUnavailable}
	j = newCachedJudge(next, cache, time.Hour, log.DefaultLogger)
	for i := 0; i < 2; i++ {
		if _, err := j.CompareImages(ctx, a, b); !errors.Is(err, llm.ErrJudgeUnavailable) {
			t.Errorf("Expected ErrJudgeUnavailable, got %v", err)
		}
	}
	if next.calls != 2 || len(cache.vals) != 0 {
		t.Errorf("failures must not be cached: calls=%d cached=%d", next.calls, len(cache.vals))
	}
}

func TestNewJudgeBackend(t *testing.T) {
	tests := []struct {
		name    string
		conf    *conf.Judge
		wantNil bool
		wantErr error
	}{
		{name: "none", conf: &conf.Judge{Provider: "none"}, wantNil: true},
		{name: "empty", conf: &conf.Judge{}, wantNil: true},
		{name: "ollama", conf: &conf.Judge{Provider: "ollama"}},
		{name: "vllm without key", conf: &conf.Judge{Provider: "vllm"}},
		{name: "groq with key", conf: &conf.Judge{Provider: "groq", APIKey: "k"}},
		{name: "groq without key", conf: &conf.Judge{Provider: "groq"}, wantErr: llm.ErrMissingAPIKey},
		{name: "openai without key", conf: &conf.Judge{Provider: "OpenAI"}, wantErr: llm.ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := newJudgeBackend(tt.conf)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if (j == nil) != tt.wantNil {
				t.Errorf("judge nil = %v; want %v", j == nil, tt.wantNil)
			}
		})
	}

	if _, err := newJudgeBackend(&conf.Judge{Provider: "bard"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewJudge_MissingKeyFailsFast(t *testing.T) {
	_, err := NewJudge(&conf.Judge{Provider: "groq"}, nil, newMemCache(), log.DefaultLogger)
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewDedupEngine_Config(t *testing.T) {
	engine := NewDedupEngine(
		&conf.Dedup{HashScheme: "row", CandidateCap: 50, BatchMaxCalls: 10, AllowDegradedCompare: true},
		&conf.Judge{Timeout: conf.Duration{Duration: 5 * time.Second}},
		nil, nil, log.DefaultLogger,
	)
	cfg := engine.Config()
	if cfg.CandidateCap != 50 || cfg.BatchMaxCalls != 10 || !cfg.AllowDegradedCompare {
		t.Errorf("unexpected engine config %+v", cfg)
	}
	if cfg.JudgeTimeout != 5*time.Second {
		t.Errorf("JudgeTimeout = %v", cfg.JudgeTimeout)
	}
	if cfg.SimilarityThreshold != 0.85 {
		t.Errorf("SimilarityThreshold = %v; want default 0.85", cfg.SimilarityThreshold)
	}
}
