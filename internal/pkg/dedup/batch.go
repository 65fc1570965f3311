package dedup

import (
	"context"
	"fmt"

	"assetguard/internal/pkg/hash"
	"assetguard/internal/pkg/llm"

	"golang.org/x/sync/errgroup"
)

// BatchImage is one member of a batch comparison.
type BatchImage struct {
	ID   string
	Data []byte
}

// PairResult is the outcome for one unordered pair of a batch.
type PairResult struct {
	A          string                 `json:"a"`
	B          string                 `json:"b"`
	Comparison *hash.ComparisonResult `json:"comparison,omitempty"`
	Same       *bool                  `json:"same,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// PairCount returns the number of unordered pairs in a set of n images.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// CompareBatch judges every unordered pair of images on a bounded worker pool.
// A batch needing more judge calls than BatchMaxCalls is refused with
// ErrBatchTooLarge before any call is made. Per-pair failures are reported in
// the result and do not fail the batch.
func (e *Engine) CompareBatch(ctx context.Context, images []BatchImage) ([]PairResult, error) {
	pairs := PairCount(len(images))
	if e.config.BatchMaxCalls > 0 && pairs > e.config.BatchMaxCalls {
		return nil, fmt.Errorf("%w: %d images need %d calls, limit is %d",
			ErrBatchTooLarge, len(images), pairs, e.config.BatchMaxCalls)
	}
	if e.judge == nil {
		return nil, fmt.Errorf("%w: no judge configured", llm.ErrJudgeUnavailable)
	}

	fingerprints := make([]string, len(images))
	for i, img := range images {
		rec, err := e.Fingerprint(img.Data)
		if err != nil {
			e.log.Debugf("Batch image %s has no perceptual hash: %v", img.ID, err)
		}
		fingerprints[i] = rec.PerceptualHash
	}

	results := make([]PairResult, 0, pairs)
	for i := 0; i < len(images); i++ {
		for j := i + 1; j < len(images); j++ {
			results = append(results, PairResult{A: images[i].ID, B: images[j].ID})
		}
	}

	workers := e.config.BatchWorkers
	if workers <= 0 {
		workers = 4
	}
	var g errgroup.Group
	g.SetLimit(workers)

	k := 0
	for i := 0; i < len(images); i++ {
		for j := i + 1; j < len(images); j++ {
			res := &results[k]
			a, b := i, j
			k++
			g.Go(func() error {
				if fingerprints[a] != "" && fingerprints[b] != "" {
					if cmp, err := hash.CompareWithThreshold(fingerprints[a], fingerprints[b], e.config.SimilarityThreshold); err == nil {
						res.Comparison = &cmp
					}
				}
				if err := ctx.Err(); err != nil {
					res.Error = err.Error()
					return nil
				}

				callCtx := ctx
				if e.config.JudgeTimeout > 0 {
					var cancel context.CancelFunc
					callCtx, cancel = context.WithTimeout(ctx, e.config.JudgeTimeout)
					defer cancel()
				}
				verdict, err := e.judge.CompareImages(callCtx,
					llm.ImageInput{Data: images[a].Data}, llm.ImageInput{Data: images[b].Data})
				if err != nil {
					e.log.Warnf("Batch judge failed for %s/%s: %v", images[a].ID, images[b].ID, err)
					res.Error = err.Error()
					return nil
				}
				same := verdict.Same
				res.Same = &same
				res.Message = verdict.Message
				return nil
			})
		}
	}
	_ = g.Wait()

	return results, ctx.Err()
}
