package service

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditService reads the audit trail.
type AuditService struct {
	Store store.Store
}

// AuditPage is one page of a listing.
type AuditPage struct {
	Entries []domain.AuditEntry
	Total   int
	Limit   int
	Offset  int
}

// List returns entries newest first. The filter's Limit is clamped to
// 1..500 and defaults to 50.
func (s *AuditService) List(ctx context.Context, f domain.AuditFilter) (AuditPage, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = defaultAuditLimit
	case f.Limit > maxAuditLimit:
		f.Limit = maxAuditLimit
	}
	f.Offset = max(f.Offset, 0)

	entries, total, err := s.Store.AuditEntries().ListAuditEntries(ctx, f)
	if err != nil {
		return AuditPage{}, fmt.Errorf("list audit entries: %w", err)
	}
	return AuditPage{Entries: entries, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}
