package dedup

import (
	"context"
	"errors"
	"time"

	"assetguard/internal/pkg/hash"
)

// Method identifies the signal that produced a match.
type Method string

const (
	MethodExact      Method = "exact"
	MethodPerceptual Method = "perceptual"
	MethodAI         Method = "ai"
)

// ErrBatchTooLarge is returned before any judge call when a batch would exceed its call budget.
var ErrBatchTooLarge = errors.New("dedup: batch exceeds judge call limit")

// HashRecord is the pair of fingerprints stored with every asset.
type HashRecord struct {
	SHA256         string `json:"sha256"`
	PerceptualHash string `json:"perceptualHash,omitempty"` // empty when the image could not be decoded
}

// Candidate is an existing asset the upload may duplicate.
type Candidate struct {
	AssetID   string
	CreatorID string
	Hash      *HashRecord
	ImagePath string // content store reference, loaded for the judge when Image is nil
	Image     []byte
}

// Match is one asset the upload duplicates. Methods accumulate per asset.
type Match struct {
	AssetID    string   `json:"assetId"`
	Methods    []Method `json:"methods"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
}

// HasMethod reports whether m was attributed to this match.
func (m *Match) HasMethod(method Method) bool {
	for _, x := range m.Methods {
		if x == method {
			return true
		}
	}
	return false
}

func (m *Match) addMethod(method Method) {
	if !m.HasMethod(method) {
		m.Methods = append(m.Methods, method)
	}
}

// Decision is the outcome of one duplicate check.
type Decision struct {
	IsDuplicate bool       `json:"isDuplicate"`
	Confidence  float64    `json:"confidence"`
	Matches     []*Match   `json:"matches"`
	MethodsUsed []Method   `json:"methodsUsed"`
	Hash        HashRecord `json:"hash"`
	CheckedAt   time.Time  `json:"checkedAt"`
	// Compared counts the fingerprint comparisons performed.
	Compared int `json:"compared"`
	// SoftFailures lists absorbed errors (decode, degraded compare, judge).
	SoftFailures []string `json:"softFailures,omitempty"`
}

// ImageLoader fetches a stored image for the judge.
type ImageLoader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Config holds the tunables of the pipeline.
type Config struct {
	Scheme               hash.Scheme
	SimilarityThreshold  float64       // perceptual match when similarity exceeds this
	CandidateCap         int           // max candidates compared per upload
	JudgeTimeout         time.Duration // bound on the single judge call
	JudgeConfidenceFloor float64       // confidence of a judge-affirmed match
	AllowDegradedCompare bool          // accept zero-padded length-mismatch comparisons
	BatchMaxCalls        int           // hard cap on judge calls per batch request
	BatchWorkers         int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Scheme:               hash.SchemeGrid,
		SimilarityThreshold:  hash.DefaultSimilarityThreshold,
		CandidateCap:         100,
		JudgeTimeout:         15 * time.Second,
		JudgeConfidenceFloor: 0.9,
		BatchMaxCalls:        45,
		BatchWorkers:         4,
	}
}
