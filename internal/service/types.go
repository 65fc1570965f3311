package service

import (
	"time"

	"assetguard/internal/biz"
	"assetguard/internal/pkg/dedup"
)

// CheckRequest runs the duplicate check without persisting.
type CheckRequest struct {
	CreatorID string `json:"creatorId"`
	Image     []byte `json:"image"` // base64 in JSON
}

// UploadRequest creates an asset listing.
type UploadRequest struct {
	CreatorID   string `json:"creatorId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Image       []byte `json:"image"`
}

type UploadReply struct {
	Asset    *AssetReply     `json:"asset"`
	Decision *dedup.Decision `json:"decision"`
}

type GetAssetRequest struct {
	ID string `json:"id"`
}

type DuplicateCheckReply struct {
	CheckedAt       time.Time      `json:"checkedAt"`
	IsDuplicate     bool           `json:"isDuplicate"`
	Confidence      float64        `json:"confidence"`
	MethodsUsed     []dedup.Method `json:"methodsUsed"`
	MatchedAssetIDs []string       `json:"matchedAssetIds"`
	SoftFailures    []string       `json:"softFailures,omitempty"`
}

type AssetReply struct {
	ID             string               `json:"id"`
	CreatorID      string               `json:"creatorId"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	ContentType    string               `json:"contentType"`
	ImagePath      string               `json:"imagePath"`
	Hash           dedup.HashRecord     `json:"hash"`
	DuplicateCheck *DuplicateCheckReply `json:"duplicateCheck,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

type ListCreatorAssetsRequest struct {
	CreatorID string `json:"creatorId"`
	Cursor    string `json:"cursor"`
	Limit     int    `json:"limit"`
}

type ListCreatorAssetsReply struct {
	Assets     []*AssetReply `json:"assets"`
	NextCursor string        `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}

type BatchImage struct {
	ID    string `json:"id"`
	Image []byte `json:"image"`
}

type CompareBatchRequest struct {
	Images []BatchImage `json:"images"`
}

type CompareBatchReply struct {
	Pairs []dedup.PairResult `json:"pairs"`
}

type AddTermRequest struct {
	Term    string `json:"term"`
	Reason  string `json:"reason"`
	AddedBy string `json:"addedBy"`
}

type AddTermReply struct {
	Term      string    `json:"term"`
	Reason    string    `json:"reason"`
	AddedBy   string    `json:"addedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type RemoveTermRequest struct {
	Term string `json:"term"`
}

type RebuildRequest struct{}

type RebuildReply struct {
	Count int `json:"count"`
}

type EmptyReply struct{}

func toAssetReply(a *biz.Asset) *AssetReply {
	reply := &AssetReply{
		ID:          a.ID,
		CreatorID:   a.CreatorID,
		Title:       a.Title,
		Description: a.Description,
		ContentType: a.ContentType,
		ImagePath:   a.ImagePath,
		Hash:        a.Hash,
		CreatedAt:   a.CreatedAt,
	}
	if c := a.DuplicateCheck; c != nil {
		reply.DuplicateCheck = &DuplicateCheckReply{
			CheckedAt:       c.CheckedAt,
			IsDuplicate:     c.IsDuplicate,
			Confidence:      c.Confidence,
			MethodsUsed:     c.MethodsUsed,
			MatchedAssetIDs: c.MatchedAssetIDs,
			SoftFailures:    c.SoftFailures,
		}
	}
	return reply
}
