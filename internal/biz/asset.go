package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"assetguard/internal/conf"
	"assetguard/internal/pkg/dedup"
	"assetguard/internal/pkg/hash"
	"assetguard/internal/pkg/llm"
	"assetguard/internal/pkg/pagination"
	"assetguard/internal/pkg/store"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

var (
	// ErrAssetNotFound is asset not found.
	ErrAssetNotFound = errors.NotFound("ASSET_NOT_FOUND", "asset not found")
	// ErrInvalidImage is returned for uploads that cannot be fingerprinted.
	ErrInvalidImage = errors.BadRequest("INVALID_IMAGE", "image is empty or unreadable")
	// ErrMissingCreator is returned when an upload has no creator.
	ErrMissingCreator = errors.BadRequest("MISSING_CREATOR", "creator id is required")
	// ErrInvalidCursor is returned for a malformed page cursor.
	ErrInvalidCursor = errors.BadRequest("INVALID_CURSOR", "page cursor is malformed")
)

// Asset is an uploaded image listing.
type Asset struct {
	ID             string
	CreatorID      string
	Title          string
	Description    string
	ContentType    string
	ImagePath      string // content store reference
	Hash           dedup.HashRecord
	DuplicateCheck *DuplicateCheck
	CreatedAt      time.Time
}

// DuplicateCheck is the audit trail of the check that admitted an asset.
type DuplicateCheck struct {
	CheckedAt       time.Time
	IsDuplicate     bool
	Confidence      float64
	MethodsUsed     []dedup.Method
	MatchedAssetIDs []string
	SoftFailures    []string
}

// UploadRequest carries one asset upload.
type UploadRequest struct {
	CreatorID   string
	Title       string
	Description string
	Filename    string
	ContentType string
	Image       []byte
}

// AssetRepo is an Asset repository interface.
type AssetRepo interface {
	Create(ctx context.Context, a *Asset) (*Asset, error)
	// Get returns ErrAssetNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Asset, error)
	// ListCandidates returns assets not owned by excludeCreator in creation order.
	ListCandidates(ctx context.Context, excludeCreator string, limit int) ([]dedup.Candidate, error)
	// FindBySHA256 returns every asset with the given digest not owned by excludeCreator.
	FindBySHA256(ctx context.Context, digest, excludeCreator string) ([]dedup.Candidate, error)
	// ListDigests returns the SHA-256 of every stored asset.
	ListDigests(ctx context.Context) ([]string, error)
	// ListByCreator returns up to limit assets of creatorID, newest first, strictly after the cursor.
	ListByCreator(ctx context.Context, creatorID string, after *pagination.Cursor, limit int) ([]*Asset, error)
}

// DigestFilter answers "maybe seen" for content digests.
type DigestFilter interface {
	Add(ctx context.Context, digest string) error
	MayContain(ctx context.Context, digest string) (bool, error)
	Reset(ctx context.Context) error
}

// ContentStore persists image bytes and returns a reference.
type ContentStore interface {
	Upload(ctx context.Context, data []byte, meta store.Meta) (string, error)
}

// AssetUsecase runs the duplicate check around asset uploads.
type AssetUsecase struct {
	repo            AssetRepo
	engine          *dedup.Engine
	store           ContentStore
	digests         DigestFilter
	screen          *ScreenUsecase
	sha             *hash.Sha256Hasher
	rejectThreshold float64
	log             *log.Helper
}

// NewAssetUsecase creates a new AssetUsecase. digests may be nil.
func NewAssetUsecase(
	c *conf.Dedup,
	repo AssetRepo,
	engine *dedup.Engine,
	contentStore ContentStore,
	digests DigestFilter,
	screen *ScreenUsecase,
	logger log.Logger,
) *AssetUsecase {
	threshold := hash.DefaultSimilarityThreshold
	if c != nil && c.RejectThreshold > 0 {
		threshold = c.RejectThreshold
	}
	return &AssetUsecase{
		repo:            repo,
		engine:          engine,
		store:           contentStore,
		digests:         digests,
		screen:          screen,
		sha:             hash.NewSha256Hasher(),
		rejectThreshold: threshold,
		log:             log.NewHelper(log.With(logger, "module", "biz/asset")),
	}
}

// CheckUpload runs the pipeline for creatorID without persisting anything.
func (uc *AssetUsecase) CheckUpload(ctx context.Context, creatorID string, image []byte) (*dedup.Decision, error) {
	if creatorID == "" {
		return nil, ErrMissingCreator
	}
	return uc.decide(ctx, creatorID, image)
}

// Upload screens the listing, rejects confident duplicates with a Conflict
// error and otherwise stores and persists the asset. The decision is returned
// in both cases.
func (uc *AssetUsecase) Upload(ctx context.Context, req *UploadRequest) (*Asset, *dedup.Decision, error) {
	if req.CreatorID == "" {
		return nil, nil, ErrMissingCreator
	}
	if uc.screen != nil {
		if err := uc.screen.Check(req.Title, req.Description); err != nil {
			return nil, nil, err
		}
	}

	decision, err := uc.decide(ctx, req.CreatorID, req.Image)
	if err != nil {
		return nil, nil, err
	}
	if decision.IsDuplicate && decision.Confidence >= uc.rejectThreshold {
		uc.log.Infof("Rejecting upload by %s: duplicate of %v (confidence %.3f)",
			req.CreatorID, matchedIDs(decision), decision.Confidence)
		return nil, decision, duplicateError(decision)
	}

	ref, err := uc.store.Upload(ctx, req.Image, store.Meta{
		Name:        req.Filename,
		ContentType: req.ContentType,
		SHA256:      decision.Hash.SHA256,
	})
	if err != nil {
		uc.log.Errorf("Failed to store asset image: %v", err)
		return nil, decision, errors.ServiceUnavailable("STORAGE_UNAVAILABLE", "content store unavailable").WithCause(err)
	}

	asset, err := uc.repo.Create(ctx, &Asset{
		ID:          uuid.NewString(),
		CreatorID:   req.CreatorID,
		Title:       req.Title,
		Description: req.Description,
		ContentType: req.ContentType,
		ImagePath:   ref,
		Hash:        decision.Hash,
		DuplicateCheck: &DuplicateCheck{
			CheckedAt:       decision.CheckedAt,
			IsDuplicate:     decision.IsDuplicate,
			Confidence:      decision.Confidence,
			MethodsUsed:     decision.MethodsUsed,
			MatchedAssetIDs: matchedIDs(decision),
			SoftFailures:    decision.SoftFailures,
		},
	})
	if err != nil {
		uc.log.Warnf("Failed to persist asset by %s, stored image %s is orphaned: %v", req.CreatorID, ref, err)
		return nil, decision, err
	}

	if uc.digests != nil {
		if err := uc.digests.Add(ctx, asset.Hash.SHA256); err != nil {
			uc.log.Warnf("Failed to add digest to bloom filter: %v", err)
		}
	}
	uc.log.Infof("Stored asset %s by %s at %s", asset.ID, asset.CreatorID, asset.ImagePath)
	return asset, decision, nil
}

// GetAsset returns an asset with its hash record and audit trail.
func (uc *AssetUsecase) GetAsset(ctx context.Context, id string) (*Asset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAssetNotFound
	}
	return uc.repo.Get(ctx, id)
}

// ListCreatorAssets returns one page of a creator's assets, newest first.
func (uc *AssetUsecase) ListCreatorAssets(ctx context.Context, creatorID, cursor string, limit int) (*pagination.Page[*Asset], error) {
	if creatorID == "" {
		return nil, ErrMissingCreator
	}
	after, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	assets, err := uc.repo.ListByCreator(ctx, creatorID, after, pagination.FetchLimit(limit))
	if err != nil {
		return nil, err
	}
	return pagination.BuildPage(assets, limit, func(a *Asset) *pagination.Cursor {
		return &pagination.Cursor{ID: a.ID, CreatedAt: a.CreatedAt}
	}), nil
}

// CompareBatch judges every pair of a user-supplied image set.
func (uc *AssetUsecase) CompareBatch(ctx context.Context, images []dedup.BatchImage) ([]dedup.PairResult, error) {
	results, err := uc.engine.CompareBatch(ctx, images)
	switch {
	case stderrors.Is(err, dedup.ErrBatchTooLarge):
		return nil, errors.BadRequest("BATCH_TOO_LARGE", err.Error()).WithMetadata(map[string]string{
			"max_calls": fmt.Sprint(uc.engine.Config().BatchMaxCalls),
		})
	case stderrors.Is(err, llm.ErrJudgeUnavailable):
		return nil, errors.ServiceUnavailable("JUDGE_UNAVAILABLE", err.Error())
	case err != nil:
		return results, err
	}
	return results, nil
}

// RebuildDigestFilter refills the digest bloom filter from the asset store.
func (uc *AssetUsecase) RebuildDigestFilter(ctx context.Context) (int, error) {
	if uc.digests == nil {
		return 0, nil
	}
	digests, err := uc.repo.ListDigests(ctx)
	if err != nil {
		return 0, err
	}
	if err := uc.digests.Reset(ctx); err != nil {
		return 0, err
	}
	added := 0
	for _, d := range digests {
		if err := uc.digests.Add(ctx, d); err != nil {
			uc.log.Warnf("Failed to add digest %s to bloom filter: %v", d, err)
			continue
		}
		added++
	}
	uc.log.Infof("Rebuilt digest bloom filter with %d digests", added)
	return added, nil
}

// decide assembles the candidate pool and runs the engine.
func (uc *AssetUsecase) decide(ctx context.Context, creatorID string, image []byte) (*dedup.Decision, error) {
	digest, err := uc.sha.ComputeHashFromBytes(image)
	if err != nil {
		return nil, ErrInvalidImage
	}

	pool, err := uc.candidates(ctx, creatorID, digest)
	if err != nil {
		return nil, err
	}

	decision, err := uc.engine.Decide(ctx, image, creatorID, pool)
	if err != nil {
		if stderrors.Is(err, hash.ErrHashing) {
			return nil, ErrInvalidImage
		}
		return nil, err
	}
	return decision, nil
}

// candidates returns the pool for creatorID: exact digest hits from the whole
// store first, then the capped scan in creation order.
func (uc *AssetUsecase) candidates(ctx context.Context, creatorID, digest string) ([]dedup.Candidate, error) {
	var pool []dedup.Candidate

	lookup := true
	if uc.digests != nil {
		maybe, err := uc.digests.MayContain(ctx, digest)
		if err != nil {
			uc.log.Warnf("Bloom filter check failed, falling back to lookup: %v", err)
		} else {
			lookup = maybe
		}
	}
	if lookup {
		exact, err := uc.repo.FindBySHA256(ctx, digest, creatorID)
		if err != nil {
			uc.log.Warnf("Exact digest lookup failed: %v", err)
		}
		pool = append(pool, exact...)
	}

	scan, err := uc.repo.ListCandidates(ctx, creatorID, uc.engine.Config().CandidateCap)
	if err != nil {
		return nil, err
	}
	return append(pool, scan...), nil
}

func duplicateError(d *dedup.Decision) error {
	methods := make([]string, len(d.MethodsUsed))
	for i, m := range d.MethodsUsed {
		methods[i] = string(m)
	}
	return errors.Conflict("DUPLICATE_ASSET", "image duplicates an existing asset").WithMetadata(map[string]string{
		"matches":    strings.Join(matchedIDs(d), ","),
		"confidence": fmt.Sprintf("%.4f", d.Confidence),
		"methods":    strings.Join(methods, ","),
	})
}

func matchedIDs(d *dedup.Decision) []string {
	ids := make([]string, len(d.Matches))
	for i, m := range d.Matches {
		ids[i] = m.AssetID
	}
	return ids
}
