package data

import (
	"assetguard/internal/conf"
	"assetguard/internal/pkg/dedup"
	"assetguard/internal/pkg/hash"
	"assetguard/internal/pkg/llm"
	"assetguard/internal/pkg/store"

	"github.com/go-kratos/kratos/v2/log"
)

// NewDedupEngine builds the duplicate decision engine. Candidate images are
// loaded from the content store chain when the judge needs them.
func NewDedupEngine(c *conf.Dedup, j *conf.Judge, judge llm.Judge, chain *store.Chain, logger log.Logger) *dedup.Engine {
	config := dedup.DefaultConfig()
	if c != nil {
		config.Scheme = hash.ParseScheme(c.HashScheme)
		if c.SimilarityThreshold > 0 {
			config.SimilarityThreshold = c.SimilarityThreshold
		}
		if c.CandidateCap > 0 {
			config.CandidateCap = c.CandidateCap
		}
		if c.JudgeConfidenceFloor > 0 {
			config.JudgeConfidenceFloor = c.JudgeConfidenceFloor
		}
		config.AllowDegradedCompare = c.AllowDegradedCompare
		if c.BatchMaxCalls > 0 {
			config.BatchMaxCalls = c.BatchMaxCalls
		}
		if c.BatchWorkers > 0 {
			config.BatchWorkers = c.BatchWorkers
		}
	}
	if j != nil && j.Timeout.AsDuration() > 0 {
		config.JudgeTimeout = j.Timeout.AsDuration()
	}

	var loader dedup.ImageLoader
	if chain != nil {
		loader = chain
	}
	return dedup.NewEngine(config, judge, loader, logger)
}
