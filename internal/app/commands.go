package app

import (
	"context"
	"errors"
	"strings"

	"sailhaven/internal/domain"
)

// ImportService pulls yachts from a partner catalog into the listing store.
type ImportService struct {
	catalog domain.CatalogClient
	repo    domain.YachtRepository
	cache   domain.Cache
	ownerID string
}

// NewImportService builds an importer. ownerID is assigned to catalog yachts
// whose payload carries no owner.
func NewImportService(c domain.CatalogClient, r domain.YachtRepository, cache domain.Cache, ownerID string) *ImportService {
	return &ImportService{catalog: c, repo: r, cache: cache, ownerID: ownerID}
}

// ListIDs returns the partner ids to import.
func (s *ImportService) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := s.catalog.ListYachtIDs(ctx)
	if err != nil {
		return nil, domain.Unavailable("list catalog yachts", err)
	}
	return ids, nil
}

// ImportYacht fetches one partner yacht and upserts it. Missing, inactive
// and malformed entries are logged as misses and do not fail the run.
func (s *ImportService) ImportYacht(ctx context.Context, sourceID string) error {
	p, err := s.catalog.GetYacht(ctx, sourceID)
	if err != nil {
		low := strings.ToLower(err.Error())

		// 404: gone from the feed -> record miss, drop any cached copy.
		if errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found") {
			_ = s.repo.LogMiss(ctx, sourceID, 404, "not found")
			invalidateYacht(ctx, s.cache, catalogYachtID(sourceID))
			return nil
		}

		// 401/403: unauthorized/forbidden/inactive -> record miss, stop.
		if strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized") {
			_ = s.repo.LogMiss(ctx, sourceID, 403, "inactive")
			invalidateYacht(ctx, s.cache, catalogYachtID(sourceID))
			return nil
		}

		// network/5xx/JSON -> bubble up
		return err
	}

	y, err := mapYacht(p, s.ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			_ = s.repo.LogMiss(ctx, sourceID, 422, err.Error())
			return nil
		}
		return err
	}

	if err := s.repo.UpsertYacht(ctx, y); err != nil {
		return domain.Unavailable("upsert yacht", err)
	}
	invalidateYacht(ctx, s.cache, y.ID)
	return nil
}
