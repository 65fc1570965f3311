package dedup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"assetguard/internal/pkg/hash"
	"assetguard/internal/pkg/llm"

	"github.com/go-kratos/kratos/v2/log"
)

// Engine runs the duplicate check for one upload at a time. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	config Config
	sha    *hash.Sha256Hasher
	hasher *hash.PerceptualHasher
	judge  llm.Judge
	loader ImageLoader
	log    *log.Helper
}

// NewEngine creates an engine. judge and loader may be nil, in which case the
// decision relies on hashing alone.
func NewEngine(config Config, judge llm.Judge, loader ImageLoader, logger log.Logger) *Engine {
	if config.CandidateCap <= 0 {
		config.CandidateCap = DefaultConfig().CandidateCap
	}
	if config.SimilarityThreshold <= 0 {
		config.SimilarityThreshold = hash.DefaultSimilarityThreshold
	}
	return &Engine{
		config: config,
		sha:    hash.NewSha256Hasher(),
		hasher: hash.NewPerceptualHasher(config.Scheme),
		judge:  judge,
		loader: loader,
		log:    log.NewHelper(log.With(logger, "module", "pkg/dedup")),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Fingerprint computes the hash record of data. A perceptual hashing failure
// leaves PerceptualHash empty and is returned together with the record; only a
// hash.ErrHashing failure means there is no record at all.
func (e *Engine) Fingerprint(data []byte) (HashRecord, error) {
	digest, err := e.sha.ComputeHashFromBytes(data)
	if err != nil {
		return HashRecord{}, err
	}
	rec := HashRecord{SHA256: digest}

	ph, err := e.hasher.ComputeHashFromBytes(data)
	if err != nil {
		return rec, err
	}
	rec.PerceptualHash = ph.String()
	return rec, nil
}

// Decide checks image against the candidate pool on behalf of uploaderID.
//  1. SHA-256 equal to a selected candidate -> exact duplicate, return
//  2. perceptual hash compared against every selected candidate
//  3. best perceptual match -> one judge call
//  4. merge signals
//
// Only hash.ErrHashing is returned; every other failure degrades the decision.
func (e *Engine) Decide(ctx context.Context, image []byte, uploaderID string, pool []Candidate) (*Decision, error) {
	rec, err := e.Fingerprint(image)
	if errors.Is(err, hash.ErrHashing) {
		return nil, err
	}

	d := &Decision{
		Hash:      rec,
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		e.log.Warnf("Perceptual hash unavailable for %s, continuing with SHA-256 only: %v", rec.SHA256, err)
		d.softFailure(err)
	}

	candidates := SelectCandidates(pool, uploaderID, e.config.CandidateCap)
	e.log.Debugf("Checking %s against %d of %d candidates", rec.SHA256, len(candidates), len(pool))

	// Step 1: exact digest
	for _, c := range candidates {
		if c.Hash.SHA256 != "" && c.Hash.SHA256 == rec.SHA256 {
			d.Matches = []*Match{{
				AssetID:    c.AssetID,
				Methods:    []Method{MethodExact},
				Confidence: 1.0,
				Reason:     "identical content digest",
			}}
			d.finish()
			e.log.Infof("Exact duplicate: sha256=%s asset=%s", rec.SHA256, c.AssetID)
			return d, nil
		}
	}

	if rec.PerceptualHash == "" {
		d.finish()
		return d, nil
	}
	if hash.IsBlank(rec.PerceptualHash) {
		e.log.Debugf("Blank fingerprint for sha256=%s, skipping perceptual comparison", rec.SHA256)
		d.finish()
		return d, nil
	}

	// Step 2: perceptual similarity
	byAsset := make(map[string]*Match)
	var (
		best     *Match
		bestCand Candidate
	)
	for _, c := range candidates {
		if c.Hash.PerceptualHash == "" || hash.IsBlank(c.Hash.PerceptualHash) {
			continue
		}
		d.Compared++
		res, err := hash.CompareWithThreshold(rec.PerceptualHash, c.Hash.PerceptualHash, e.config.SimilarityThreshold)
		if err != nil {
			if !errors.Is(err, hash.ErrComparisonDegraded) || !e.config.AllowDegradedCompare {
				e.log.Warnf("Skipping candidate %s: %v", c.AssetID, err)
				d.softFailure(fmt.Errorf("candidate %s: %w", c.AssetID, err))
				continue
			}
			d.softFailure(fmt.Errorf("candidate %s: %w", c.AssetID, err))
		}
		if !res.IsSimilar {
			continue
		}

		m, ok := byAsset[c.AssetID]
		if !ok {
			m = &Match{AssetID: c.AssetID}
			byAsset[c.AssetID] = m
			d.Matches = append(d.Matches, m)
		}
		m.addMethod(MethodPerceptual)
		if res.Similarity > m.Confidence {
			m.Confidence = res.Similarity
			m.Reason = fmt.Sprintf("perceptual distance %d/%d", res.Distance, hash.MaxDistance)
		}
		if best == nil || m.Confidence > best.Confidence {
			best, bestCand = m, c
		}
	}

	// Step 3: corroborate the best candidate
	if best != nil {
		e.corroborate(ctx, d, image, best, bestCand)
	}

	d.finish()
	if d.IsDuplicate {
		e.log.Infof("Near duplicate: sha256=%s matches=%d confidence=%.3f methods=%v",
			rec.SHA256, len(d.Matches), d.Confidence, d.MethodsUsed)
	}
	return d, nil
}

// corroborate asks the judge about the single best match. Unavailability and
// dissent leave the match unchanged.
func (e *Engine) corroborate(ctx context.Context, d *Decision, image []byte, m *Match, c Candidate) {
	if e.judge == nil {
		return
	}

	// The bound covers loading the candidate image as well as the judge call.
	if e.config.JudgeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.JudgeTimeout)
		defer cancel()
	}

	other := c.Image
	if other == nil {
		if e.loader == nil || c.ImagePath == "" {
			e.log.Debugf("No stored image for candidate %s, skipping judge", c.AssetID)
			return
		}
		data, err := e.loader.Load(ctx, c.ImagePath)
		if err != nil {
			e.log.Warnf("Failed to load candidate %s image %s: %v", c.AssetID, c.ImagePath, err)
			d.softFailure(fmt.Errorf("load %s: %w", c.AssetID, err))
			return
		}
		other = data
	}

	verdict, err := e.judge.CompareImages(ctx, llm.ImageInput{Data: image}, llm.ImageInput{Data: other})
	if err != nil {
		e.log.Warnf("Similarity judge unavailable for candidate %s: %v", c.AssetID, err)
		d.softFailure(err)
		return
	}
	if !verdict.Same {
		e.log.Debugf("Judge dissents on candidate %s: %s", c.AssetID, verdict.Message)
		return
	}

	m.addMethod(MethodAI)
	if m.Confidence < e.config.JudgeConfidenceFloor {
		m.Confidence = e.config.JudgeConfidenceFloor
	}
	if verdict.Message != "" {
		m.Reason += "; judge: " + verdict.Message
	}
}

func (d *Decision) softFailure(err error) {
	d.SoftFailures = append(d.SoftFailures, err.Error())
}

// finish derives the summary fields from Matches.
func (d *Decision) finish() {
	sort.SliceStable(d.Matches, func(i, j int) bool {
		return d.Matches[i].Confidence > d.Matches[j].Confidence
	})
	if d.Matches == nil {
		d.Matches = []*Match{}
	}

	d.IsDuplicate = len(d.Matches) > 0
	d.Confidence = 0
	used := make(map[Method]bool)
	for _, m := range d.Matches {
		d.Confidence = max(d.Confidence, m.Confidence)
		for _, method := range m.Methods {
			used[method] = true
		}
	}

	d.MethodsUsed = []Method{}
	for _, method := range []Method{MethodExact, MethodPerceptual, MethodAI} {
		if used[method] {
			d.MethodsUsed = append(d.MethodsUsed, method)
		}
	}
}
