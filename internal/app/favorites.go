package app

import (
	"context"
	"time"

	"sailhaven/internal/domain"
)

type FavoritesService struct {
	gate   *SessionGate
	store  domain.FavoritesStore
	yachts *ListingService
}

func NewFavoritesService(g *SessionGate, st domain.FavoritesStore, ls *ListingService) *FavoritesService {
	return &FavoritesService{gate: g, store: st, yachts: ls}
}

func (s *FavoritesService) List(ctx context.Context) ([]domain.Favorite, error) {
	p, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	fs, err := s.store.List(ctx, p.ID)
	if err != nil {
		return nil, domain.Unavailable("list favorites", err)
	}
	return nonNil(fs), nil
}

func (s *FavoritesService) Add(ctx context.Context, yachtID string) (domain.Favorite, error) {
	p, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return domain.Favorite{}, err
	}
	y, err := s.yachts.Get(ctx, yachtID)
	if err != nil {
		return domain.Favorite{}, err
	}
	f := domain.Favorite{
		PartyID:   p.ID,
		YachtID:   y.ID,
		Name:      y.Name,
		Location:  y.Location.String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Add(ctx, f); err != nil {
		return domain.Favorite{}, domain.Unavailable("add favorite", err)
	}
	return f, nil
}

func (s *FavoritesService) Remove(ctx context.Context, yachtID string) error {
	p, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, p.ID, yachtID); err != nil {
		return domain.Unavailable("remove favorite", err)
	}
	return nil
}

// Toggle flips membership and reports whether the yacht is now a favorite.
func (s *FavoritesService) Toggle(ctx context.Context, yachtID string) (bool, error) {
	p, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return false, err
	}
	has, err := s.store.Contains(ctx, p.ID, yachtID)
	if err != nil {
		return false, domain.Unavailable("check favorite", err)
	}
	if has {
		return false, s.Remove(ctx, yachtID)
	}
	if _, err := s.Add(ctx, yachtID); err != nil {
		return false, err
	}
	return true, nil
}
