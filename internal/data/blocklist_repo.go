package data

import (
	"context"

	"assetguard/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
)

type blocklistRepo struct {
	data *Data
	log  *log.Helper
}

// NewBlocklistRepo creates a new BlocklistRepo.
func NewBlocklistRepo(data *Data, logger log.Logger) biz.BlocklistRepo {
	return &blocklistRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Upsert implements biz.BlocklistRepo.
func (r *blocklistRepo) Upsert(ctx context.Context, t *biz.BlockedTerm) (*biz.BlockedTerm, error) {
	var out biz.BlockedTerm
	err := r.data.Pool.QueryRow(ctx, `
		INSERT INTO blocklist_terms (term, reason, added_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (term) DO UPDATE SET reason = EXCLUDED.reason, added_by = EXCLUDED.added_by
		RETURNING term, reason, added_by, created_at`,
		t.Term, t.Reason, t.AddedBy,
	).Scan(&out.Term, &out.Reason, &out.AddedBy, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete implements biz.BlocklistRepo.
func (r *blocklistRepo) Delete(ctx context.Context, term string) error {
	_, err := r.data.Pool.Exec(ctx, `DELETE FROM blocklist_terms WHERE term = $1`, term)
	return err
}

// ListAll implements biz.BlocklistRepo.
func (r *blocklistRepo) ListAll(ctx context.Context) ([]*biz.BlockedTerm, error) {
	rows, err := r.data.Pool.Query(ctx, `SELECT term, reason, added_by, created_at FROM blocklist_terms ORDER BY term`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*biz.BlockedTerm, error) {
		var t biz.BlockedTerm
		err := row.Scan(&t.Term, &t.Reason, &t.AddedBy, &t.CreatedAt)
		return &t, err
	})
}
