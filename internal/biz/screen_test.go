package biz

import (
	"context"
	"testing"

	"assetguard/internal/conf"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

func TestScreenUsecase_Terms(t *testing.T) {
	ctx := context.Background()
	repo := newMemBlocklistRepo()
	uc := NewScreenUsecase(&conf.Screen{Enabled: true, Terms: []string{"replica"}}, repo, log.DefaultLogger)

	if err := uc.Check("Sunset", "an original painting"); err != nil {
		t.Errorf("clean listing blocked: %v", err)
	}
	if err := uc.Check("Sunset REPLICA", ""); kerrors.Reason(err) != "BLOCKED_LISTING" {
		t.Errorf("Expected seed term to block, got %v", err)
	}

	if _, err := uc.AddTerm(ctx, "  stolen ", "provenance", "admin"); err != nil {
		t.Fatalf("AddTerm failed: %v", err)
	}
	err := uc.Check("Sunset", "st0len from a gallery")
	if kerrors.FromError(err).Metadata["terms"] != "stolen" {
		t.Errorf("Expected stolen to block, got %v", err)
	}

	if err := uc.RemoveTerm(ctx, "stolen"); err != nil {
		t.Fatalf("RemoveTerm failed: %v", err)
	}
	if err := uc.Check("Sunset", "stolen from a gallery"); err != nil {
		t.Errorf("removed term still blocks: %v", err)
	}
	if err := uc.Check("replica", ""); err == nil {
		t.Error("seed term must survive rebuilds")
	}

	if _, err := uc.AddTerm(ctx, "   ", "", "admin"); !kerrors.IsBadRequest(err) {
		t.Errorf("Expected BadRequest for blank term, got %v", err)
	}
}

func TestScreenUsecase_Disabled(t *testing.T) {
	uc := NewScreenUsecase(&conf.Screen{Enabled: false, Terms: []string{"replica"}}, newMemBlocklistRepo(), log.DefaultLogger)
	if err := uc.Check("replica", ""); err != nil {
		t.Errorf("disabled screen must not block: %v", err)
	}
}
