package service

import (
	"context"

	"assetguard/internal/biz"
	"assetguard/internal/conf"
	"assetguard/internal/pkg/dedup"

	"github.com/go-kratos/kratos/v2/errors"
)

const defaultMaxUploadBytes = 20 << 20

// AssetService serves the duplicate-checked upload API.
type AssetService struct {
	uc       *biz.AssetUsecase
	maxBytes int64
}

// NewAssetService creates a new AssetService.
func NewAssetService(c *conf.Server, uc *biz.AssetUsecase) *AssetService {
	maxBytes := int64(defaultMaxUploadBytes)
	if c != nil && c.Http != nil && c.Http.MaxUploadBytes > 0 {
		maxBytes = c.Http.MaxUploadBytes
	}
	return &AssetService{uc: uc, maxBytes: maxBytes}
}

// Check runs the duplicate pipeline for an image without storing it.
func (s *AssetService) Check(ctx context.Context, in *CheckRequest) (*dedup.Decision, error) {
	if err := s.checkSize(in.Image); err != nil {
		return nil, err
	}
	return s.uc.CheckUpload(ctx, in.CreatorID, in.Image)
}

// Upload screens, checks and stores a new asset.
func (s *AssetService) Upload(ctx context.Context, in *UploadRequest) (*UploadReply, error) {
	if err := s.checkSize(in.Image); err != nil {
		return nil, err
	}
	asset, decision, err := s.uc.Upload(ctx, &biz.UploadRequest{
		CreatorID:   in.CreatorID,
		Title:       in.Title,
		Description: in.Description,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Image:       in.Image,
	})
	if err != nil {
		return nil, err
	}
	return &UploadReply{Asset: toAssetReply(asset), Decision: decision}, nil
}

// GetAsset returns an asset with its hash record and duplicate-check audit.
func (s *AssetService) GetAsset(ctx context.Context, in *GetAssetRequest) (*AssetReply, error) {
	asset, err := s.uc.GetAsset(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return toAssetReply(asset), nil
}

// ListCreatorAssets pages through a creator's assets, newest first.
func (s *AssetService) ListCreatorAssets(ctx context.Context, in *ListCreatorAssetsRequest) (*ListCreatorAssetsReply, error) {
	page, err := s.uc.ListCreatorAssets(ctx, in.CreatorID, in.Cursor, in.Limit)
	if err != nil {
		return nil, err
	}
	reply := &ListCreatorAssetsReply{
		Assets:     make([]*AssetReply, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for i, a := range page.Items {
		reply.Assets[i] = toAssetReply(a)
	}
	return reply, nil
}

// CompareBatch judges every pair in a small image set.
func (s *AssetService) CompareBatch(ctx context.Context, in *CompareBatchRequest) (*CompareBatchReply, error) {
	images := make([]dedup.BatchImage, len(in.Images))
	for i, img := range in.Images {
		if err := s.checkSize(img.Image); err != nil {
			return nil, err
		}
		images[i] = dedup.BatchImage{ID: img.ID, Data: img.Image}
	}
	pairs, err := s.uc.CompareBatch(ctx, images)
	if err != nil {
		return nil, err
	}
	return &CompareBatchReply{Pairs: pairs}, nil
}

func (s *AssetService) checkSize(image []byte) error {
	if int64(len(image)) > s.maxBytes {
		return errors.BadRequest("IMAGE_TOO_LARGE", "image exceeds upload limit")
	}
	return nil
}
