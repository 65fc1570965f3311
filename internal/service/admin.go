package service

import (
	"context"

	"assetguard/internal/biz"
)

// AdminService manages the listing blocklist and the digest bloom filter.
type AdminService struct {
	screenUc *biz.ScreenUsecase
	assetUc  *biz.AssetUsecase
}

// NewAdminService creates a new AdminService.
func NewAdminService(screenUc *biz.ScreenUsecase, assetUc *biz.AssetUsecase) *AdminService {
	return &AdminService{
		screenUc: screenUc,
		assetUc:  assetUc,
	}
}

// AddBlockedTerm adds a term to the listing blocklist.
func (s *AdminService) AddBlockedTerm(ctx context.Context, in *AddTermRequest) (*AddTermReply, error) {
	t, err := s.screenUc.AddTerm(ctx, in.Term, in.Reason, in.AddedBy)
	if err != nil {
		return nil, err
	}
	return &AddTermReply{Term: t.Term, Reason: t.Reason, AddedBy: t.AddedBy, CreatedAt: t.CreatedAt}, nil
}

// RemoveBlockedTerm removes a term from the listing blocklist.
func (s *AdminService) RemoveBlockedTerm(ctx context.Context, in *RemoveTermRequest) (*EmptyReply, error) {
	if err := s.screenUc.RemoveTerm(ctx, in.Term); err != nil {
		return nil, err
	}
	return &EmptyReply{}, nil
}

// RebuildBloom refills the digest bloom filter from the asset store.
func (s *AdminService) RebuildBloom(ctx context.Context, _ *RebuildRequest) (*RebuildReply, error) {
	n, err := s.assetUc.RebuildDigestFilter(ctx)
	if err != nil {
		return nil, err
	}
	return &RebuildReply{Count: n}, nil
}

// RebuildBlocklist reloads the listing blocklist from the database.
func (s *AdminService) RebuildBlocklist(ctx context.Context, _ *RebuildRequest) (*RebuildReply, error) {
	n, err := s.screenUc.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	return &RebuildReply{Count: n}, nil
}
