package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"assetguard/internal/conf"
	"assetguard/internal/pkg/hash"
	"assetguard/internal/pkg/llm"
	"assetguard/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
)

const verdictKeyPrefix = "assetguard:verdict:"

type pinger interface {
	Ping(ctx context.Context) error
}

// NewJudge builds the configured similarity judge, wrapped in a Redis verdict
// cache. Provider "none" (or empty) yields a nil judge and hash-only decisions.
func NewJudge(c *conf.Judge, d *conf.Dedup, cache redis.Cache, logger log.Logger) (llm.Judge, error) {
	helper := log.NewHelper(log.With(logger, "module", "data/judge"))
	if c == nil {
		helper.Warn("no judge configured, duplicate decisions use hashing only")
		return nil, nil
	}

	judge, err := newJudgeBackend(c)
	if err != nil {
		return nil, err
	}
	if judge == nil {
		helper.Warn("judge provider is none, duplicate decisions use hashing only")
		return nil, nil
	}

	if p, ok := judge.(pinger); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := p.Ping(ctx); err != nil {
			helper.Warnf("judge %s not reachable yet: %v", c.Provider, err)
		}
		cancel()
	}
	helper.Infof("similarity judge: provider=%s model=%s", c.Provider, c.Model)

	var ttl time.Duration
	if d != nil {
		ttl = d.VerdictCacheTTL.AsDuration()
	}
	if ttl <= 0 || cache == nil {
		return judge, nil
	}
	return newCachedJudge(judge, cache, ttl, logger), nil
}

func newJudgeBackend(c *conf.Judge) (llm.Judge, error) {
	var chat llm.ChatConfig
	switch strings.ToLower(c.Provider) {
	case "", "none":
		return nil, nil
	case "ollama":
		oc := llm.DefaultOllamaConfig()
		if c.BaseURL != "" {
			oc.BaseURL = c.BaseURL
		}
		if c.Model != "" {
			oc.Model = c.Model
		}
		if t := c.Timeout.AsDuration(); t > 0 {
			oc.Timeout = t
		}
		return llm.NewOllamaClient(oc), nil
	case "groq":
		chat = llm.DefaultGroqConfig()
	case "openai":
		chat = llm.ChatConfig{
			BaseURL:       "https://api.openai.com",
			Model:         "gpt-4o-mini",
			RequireAPIKey: true,
			Timeout:       30 * time.Second,
		}
	case "vllm":
		chat = llm.DefaultVLLMConfig()
	default:
		return nil, fmt.Errorf("unknown judge provider %q", c.Provider)
	}

	if c.BaseURL != "" {
		chat.BaseURL = c.BaseURL
	}
	if c.Model != "" {
		chat.Model = c.Model
	}
	if t := c.Timeout.AsDuration(); t > 0 {
		chat.Timeout = t
	}
	chat.APIKey = c.APIKey
	return llm.NewChatClient(chat)
}

// cachedJudge memoises verdicts per unordered pair of image digests.
type cachedJudge struct {
	next  llm.Judge
	cache redis.Cache
	ttl   time.Duration
	log   *log.Helper
}

type cachedVerdict struct {
	Same    bool   `json:"same"`
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

func newCachedJudge(next llm.Judge, cache redis.Cache, ttl time.Duration, logger log.Logger) *cachedJudge {
	return &cachedJudge{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log.NewHelper(log.With(logger, "module", "data/verdict-cache")),
	}
}

func (j *cachedJudge) CompareImages(ctx context.Context, a, b llm.ImageInput) (*llm.Verdict, error) {
	key, err := verdictKey(a.Data, b.Data)
	if err != nil {
		return j.next.CompareImages(ctx, a, b)
	}

	raw, err := j.cache.GetString(ctx, key)
	switch {
	case err == nil:
		var v cachedVerdict
		if jsonErr := json.Unmarshal([]byte(raw), &v); jsonErr == nil {
			j.log.Debugf("verdict cache hit %s", key)
			return &llm.Verdict{Same: v.Same, Message: v.Message, Model: v.Model}, nil
		}
	case !errors.Is(err, redis.Nil):
		j.log.Warnf("verdict cache read failed: %v", err)
	}

	verdict, err := j.next.CompareImages(ctx, a, b)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(cachedVerdict{Same: verdict.Same, Message: verdict.Message, Model: verdict.Model})
	if err := j.cache.SetString(ctx, key, string(payload), j.ttl); err != nil {
		j.log.Warnf("verdict cache write failed: %v", err)
	}
	return verdict, nil
}

func (j *cachedJudge) Ping(ctx context.Context) error {
	if p, ok := j.next.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func verdictKey(a, b []byte) (string, error) {
	sha := hash.NewSha256Hasher()
	da, err := sha.ComputeHashFromBytes(a)
	if err != nil {
		return "", err
	}
	db, err := sha.ComputeHashFromBytes(b)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%016x", verdictKeyPrefix, hash.PairKey(da, db)), nil
}
