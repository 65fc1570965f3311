package service

import (
	"context"
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const (
	OperationAssetServiceCheck        = "/assetguard.v1.AssetService/Check"
	OperationAssetServiceUpload       = "/assetguard.v1.AssetService/Upload"
	OperationAssetServiceGetAsset     = "/assetguard.v1.AssetService/GetAsset"
	OperationAssetServiceCompareBatch = "/assetguard.v1.AssetService/CompareBatch"
	OperationAssetServiceListCreator  = "/assetguard.v1.AssetService/ListCreatorAssets"

	OperationAdminServiceAddBlockedTerm    = "/assetguard.v1.AdminService/AddBlockedTerm"
	OperationAdminServiceRemoveBlockedTerm = "/assetguard.v1.AdminService/RemoveBlockedTerm"
	OperationAdminServiceRebuildBloom      = "/assetguard.v1.AdminService/RebuildBloom"
	OperationAdminServiceRebuildBlocklist  = "/assetguard.v1.AdminService/RebuildBlocklist"
)

// RegisterAssetHTTPServer binds the asset routes.
func RegisterAssetHTTPServer(s *khttp.Server, srv *AssetService) {
	r := s.Route("/")
	r.POST("/v1/assets/check", _AssetService_Check0_HTTP_Handler(srv))
	r.POST("/v1/assets", _AssetService_Upload0_HTTP_Handler(srv))
	r.GET("/v1/assets/{id}", _AssetService_GetAsset0_HTTP_Handler(srv))
	r.GET("/v1/creators/{creator_id}/assets", _AssetService_ListCreatorAssets0_HTTP_Handler(srv))
	r.POST("/v1/compare/batch", _AssetService_CompareBatch0_HTTP_Handler(srv))
}

// RegisterAdminHTTPServer binds the admin routes.
func RegisterAdminHTTPServer(s *khttp.Server, srv *AdminService) {
	r := s.Route("/")
	r.POST("/v1/admin/blocklist", _AdminService_AddBlockedTerm0_HTTP_Handler(srv))
	r.DELETE("/v1/admin/blocklist/{term}", _AdminService_RemoveBlockedTerm0_HTTP_Handler(srv))
	r.POST("/v1/admin/bloom/rebuild", _AdminService_RebuildBloom0_HTTP_Handler(srv))
	r.POST("/v1/admin/blocklist/rebuild", _AdminService_RebuildBlocklist0_HTTP_Handler(srv))
}

func _AssetService_Check0_HTTP_Handler(srv *AssetService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in CheckRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, OperationAssetServiceCheck)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Check(ctx, req.(*CheckRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func _AssetService_Upload0_HTTP_Handler(srv *AssetService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in UploadRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, OperationAssetServiceUpload)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Upload(ctx, req.(*UploadRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(201, out)
	}
}

func _AssetService_GetAsset0_HTTP_Handler(srv *AssetService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		in := GetAssetRequest{ID: ctx.Vars().Get("id")}
		khttp.SetOperation(ctx, OperationAssetServiceGetAsset)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetAsset(ctx, req.(*GetAssetRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func _AssetService_ListCreatorAssets0_HTTP_Handler(srv *AssetService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		query := ctx.Query()
		in := ListCreatorAssetsRequest{
			CreatorID: ctx.Vars().Get("creator_id"),
			Cursor:    query.Get("cursor"),
		}
		if l := query.Get("limit"); l != "" {
			limit, err := strconv.Atoi(l)
			if err != nil {
				return errors.BadRequest("INVALID_LIMIT", "limit must be an integer")
			}
			in.Limit = limit
		}
		khttp.SetOperation(ctx, OperationAssetServiceListCreator)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListCreatorAssets(ctx, req.(*ListCreatorAssetsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func _AssetService_CompareBatch0_HTTP_Handler(srv *AssetService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in CompareBatchRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, OperationAssetServiceCompareBatch)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CompareBatch(ctx, req.(*CompareBatchRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func _AdminService_AddBlockedTerm0_HTTP_Handler(srv *AdminService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in AddTermRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, OperationAdminServiceAddBlockedTerm)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.AddBlockedTerm(ctx, req.(*AddTermRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func _AdminService_RemoveBlockedTerm0_HTTP_Handler(srv *AdminService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		in := RemoveTermRequest{Term: ctx.Vars().Get("term")}
		khttp.SetOperation(ctx, OperationAdminServiceRemoveBlockedTerm)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.RemoveBlockedTerm(ctx, req.(*RemoveTermRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func _AdminService_RebuildBloom0_HTTP_Handler(srv *AdminService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in RebuildRequest
		khttp.SetOperation(ctx, OperationAdminServiceRebuildBloom)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.RebuildBloom(ctx, req.(*RebuildRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func _AdminService_RebuildBlocklist0_HTTP_Handler(srv *AdminService) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in RebuildRequest
		khttp.SetOperation(ctx, OperationAdminServiceRebuildBlocklist)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.RebuildBlocklist(ctx, req.(*RebuildRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}
