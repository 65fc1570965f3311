package data

import (
	"context"
	"errors"
	"time"

	"assetguard/internal/biz"
	"assetguard/internal/pkg/dedup"
	"assetguard/internal/pkg/pagination"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
)

type assetRepo struct {
	data *Data
	log  *log.Helper
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(data *Data, logger log.Logger) biz.AssetRepo {
	return &assetRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data/asset")),
	}
}

const assetColumns = `id, creator_id, title, description, content_type, image_path, sha256, perceptual_hash,
	dup_checked_at, dup_is_duplicate, dup_confidence, dup_methods, dup_matched_ids, dup_soft_failures, created_at`

func (r *assetRepo) Create(ctx context.Context, a *biz.Asset) (*biz.Asset, error) {
	check := a.DuplicateCheck
	if check == nil {
		check = &biz.DuplicateCheck{}
	}
	var checkedAt *time.Time
	if !check.CheckedAt.IsZero() {
		checkedAt = &check.CheckedAt
	}

	row := r.data.Pool.QueryRow(ctx, `
		INSERT INTO assets (id, creator_id, title, description, content_type, image_path, sha256, perceptual_hash,
			dup_checked_at, dup_is_duplicate, dup_confidence, dup_methods, dup_matched_ids, dup_soft_failures)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+assetColumns,
		a.ID, a.CreatorID, a.Title, a.Description, a.ContentType, a.ImagePath, a.Hash.SHA256, a.Hash.PerceptualHash,
		checkedAt, check.IsDuplicate, check.Confidence, methodStrings(check.MethodsUsed),
		nonNil(check.MatchedAssetIDs), nonNil(check.SoftFailures),
	)
	return scanAsset(row)
}

func (r *assetRepo) Get(ctx context.Context, id string) (*biz.Asset, error) {
	row := r.data.Pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, biz.ErrAssetNotFound
	}
	return a, err
}

func (r *assetRepo) ListCandidates(ctx context.Context, excludeCreator string, limit int) ([]dedup.Candidate, error) {
	rows, err := r.data.Pool.Query(ctx, `
		SELECT id, creator_id, sha256, perceptual_hash, image_path
		FROM assets
		WHERE creator_id <> $1
		ORDER BY created_at, id
		LIMIT $2`, excludeCreator, limit)
	if err != nil {
		return nil, err
	}
	return collectCandidates(rows)
}

func (r *assetRepo) FindBySHA256(ctx context.Context, digest, excludeCreator string) ([]dedup.Candidate, error) {
	rows, err := r.data.Pool.Query(ctx, `
		SELECT id, creator_id, sha256, perceptual_hash, image_path
		FROM assets
		WHERE sha256 = $1 AND creator_id <> $2
		ORDER BY created_at, id`, digest, excludeCreator)
	if err != nil {
		return nil, err
	}
	return collectCandidates(rows)
}

func (r *assetRepo) ListDigests(ctx context.Context) ([]string, error) {
	rows, err := r.data.Pool.Query(ctx, `SELECT DISTINCT sha256 FROM assets`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *assetRepo) ListByCreator(ctx context.Context, creatorID string, after *pagination.Cursor, limit int) ([]*biz.Asset, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		rows, err = r.data.Pool.Query(ctx, `
			SELECT `+assetColumns+`
			FROM assets
			WHERE creator_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`, creatorID, limit)
	} else {
		rows, err = r.data.Pool.Query(ctx, `
			SELECT `+assetColumns+`
			FROM assets
			WHERE creator_id = $1 AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4`, creatorID, after.CreatedAt, after.ID, limit)
	}
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*biz.Asset, error) {
		return scanAsset(row)
	})
}

func collectCandidates(rows pgx.Rows) ([]dedup.Candidate, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (dedup.Candidate, error) {
		var (
			c   dedup.Candidate
			rec dedup.HashRecord
		)
		if err := row.Scan(&c.AssetID, &c.CreatorID, &rec.SHA256, &rec.PerceptualHash, &c.ImagePath); err != nil {
			return c, err
		}
		c.Hash = &rec
		return c, nil
	})
}

func scanAsset(row pgx.Row) (*biz.Asset, error) {
	var (
		a         biz.Asset
		check     biz.DuplicateCheck
		checkedAt *time.Time
		methods   []string
	)
	err := row.Scan(
		&a.ID, &a.CreatorID, &a.Title, &a.Description, &a.ContentType, &a.ImagePath,
		&a.Hash.SHA256, &a.Hash.PerceptualHash,
		&checkedAt, &check.IsDuplicate, &check.Confidence, &methods, &check.MatchedAssetIDs, &check.SoftFailures,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if checkedAt != nil {
		check.CheckedAt = *checkedAt
		check.MethodsUsed = make([]dedup.Method, len(methods))
		for i, m := range methods {
			check.MethodsUsed[i] = dedup.Method(m)
		}
		a.DuplicateCheck = &check
	}
	return &a, nil
}

func methodStrings(methods []dedup.Method) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = string(m)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
