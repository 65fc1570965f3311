package biz

import (
	"context"
	"strings"
	"time"

	"assetguard/internal/conf"
	"assetguard/internal/pkg/filter"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// ErrEmptyTerm is returned when adding a blank blocklist term.
var ErrEmptyTerm = errors.BadRequest("EMPTY_TERM", "term is required")

// BlockedTerm is a listing-text blocklist entry.
type BlockedTerm struct {
	Term      string
	Reason    string
	AddedBy   string
	CreatedAt time.Time
}

// BlocklistRepo is a BlockedTerm repository interface.
type BlocklistRepo interface {
	Upsert(ctx context.Context, t *BlockedTerm) (*BlockedTerm, error)
	Delete(ctx context.Context, term string) error
	ListAll(ctx context.Context) ([]*BlockedTerm, error)
}

// ScreenUsecase screens listing titles and descriptions against the blocklist.
type ScreenUsecase struct {
	repo      BlocklistRepo
	blocklist *filter.Blocklist
	seed      []string
	enabled   bool
	log       *log.Helper
}

// NewScreenUsecase creates a ScreenUsecase. Call Rebuild to load stored terms.
func NewScreenUsecase(c *conf.Screen, repo BlocklistRepo, logger log.Logger) *ScreenUsecase {
	uc := &ScreenUsecase{
		repo:      repo,
		blocklist: filter.NewBlocklist(),
		log:       log.NewHelper(log.With(logger, "module", "biz/screen")),
	}
	if c != nil {
		uc.enabled = c.Enabled
		uc.seed = c.Terms
	}
	uc.blocklist.Build(seedTerms(uc.seed))
	return uc
}

// Check returns a BadRequest error naming the blocked terms found in the listing.
func (uc *ScreenUsecase) Check(title, description string) error {
	if !uc.enabled {
		return nil
	}
	matches := uc.blocklist.Screen(title + "\n" + description)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	terms := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m.Term] {
			seen[m.Term] = true
			terms = append(terms, m.Term)
		}
	}
	uc.log.Infof("Blocked listing %q: %v", title, terms)
	return errors.BadRequest("BLOCKED_LISTING", "listing text contains blocked terms").WithMetadata(map[string]string{
		"terms": strings.Join(terms, ","),
	})
}

// Rebuild reloads the automaton from the seed terms and the repository.
func (uc *ScreenUsecase) Rebuild(ctx context.Context) (int, error) {
	stored, err := uc.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	terms := seedTerms(uc.seed)
	for _, t := range stored {
		terms = append(terms, filter.Term{Term: t.Term, Reason: t.Reason})
	}
	uc.blocklist.Build(terms)
	uc.log.Infof("Rebuilt listing blocklist with %d terms", uc.blocklist.Len())
	return uc.blocklist.Len(), nil
}

// AddTerm stores a term and rebuilds the automaton.
func (uc *ScreenUsecase) AddTerm(ctx context.Context, term, reason, addedBy string) (*BlockedTerm, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	t, err := uc.repo.Upsert(ctx, &BlockedTerm{Term: term, Reason: reason, AddedBy: addedBy})
	if err != nil {
		return nil, err
	}
	if _, err := uc.Rebuild(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// RemoveTerm deletes a term and rebuilds the automaton.
func (uc *ScreenUsecase) RemoveTerm(ctx context.Context, term string) error {
	if err := uc.repo.Delete(ctx, term); err != nil {
		return err
	}
	_, err := uc.Rebuild(ctx)
	return err
}

func seedTerms(seed []string) []filter.Term {
	terms := make([]filter.Term, 0, len(seed))
	for _, s := range seed {
		terms = append(terms, filter.Term{Term: s, Reason: "configured"})
	}
	return terms
}
