package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sailhaven/internal/domain"
)

const catalogKey = "yachts:catalog"

// catalogPage is how many listings are read per repository call.
const catalogPage = 500

func yachtKey(id string) string { return "yacht:" + id }

type ListingService struct {
	gate     *SessionGate
	repo     domain.YachtRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewListingService(g *SessionGate, r domain.YachtRepository, c domain.Cache, ttl time.Duration) *ListingService {
	return &ListingService{gate: g, repo: r, cache: c, cacheTTL: ttl, now: time.Now}
}

// Search evaluates criteria against the cached catalog.
func (s *ListingService) Search(ctx context.Context, c domain.Criteria) ([]domain.Yacht, error) {
	var all []domain.Yacht
	if ok, _ := s.cache.Get(ctx, catalogKey, &all); !ok {
		ys, err := s.loadAll(ctx, "")
		if err != nil {
			return nil, domain.Unavailable("list yachts", err)
		}
		all = ys
		_ = s.cache.Set(ctx, catalogKey, all, int(s.cacheTTL.Seconds()))
	}
	return domain.FilterYachts(all, c), nil
}

func (s *ListingService) Get(ctx context.Context, id string) (domain.Yacht, error) {
	key := yachtKey(id)
	var y domain.Yacht
	if ok, _ := s.cache.Get(ctx, key, &y); ok {
		return y, nil
	}
	y, err := s.repo.GetYacht(ctx, id)
	if err != nil {
		return domain.Yacht{}, backend("get yacht", err)
	}
	_ = s.cache.Set(ctx, key, y, int(s.cacheTTL.Seconds()))
	return y, nil
}

// Quote previews the price a booking would freeze. No session needed.
func (s *ListingService) Quote(ctx context.Context, id string, start, end time.Time, crew bool) (domain.Quote, error) {
	if start.IsZero() || end.IsZero() {
		return domain.Quote{}, domain.Invalid("start and end dates are required")
	}
	y, err := s.Get(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}
	q, _, err := domain.QuoteFor(y, domain.DayCount(start, end), crew)
	return q, err
}

// Create lists a new yacht owned by the caller.
func (s *ListingService) Create(ctx context.Context, y domain.Yacht) (domain.Yacht, error) {
	owner, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return domain.Yacht{}, err
	}
	y.Normalize()
	if err := y.Validate(); err != nil {
		return domain.Yacht{}, err
	}

	now := s.now().UTC()
	y.ID = uuid.NewString()
	y.OwnerID = owner.ID
	y.Rating, y.ReviewCount = 0, 0
	y.CreatedAt, y.UpdatedAt = now, now

	if err := s.repo.CreateYacht(ctx, y); err != nil {
		return domain.Yacht{}, domain.Unavailable("create yacht", err)
	}
	_ = s.cache.Del(ctx, catalogKey)
	log.Info().Str("yacht_id", y.ID).Str("party_id", owner.ID).Msg("yacht listed")
	return y, nil
}

// OwnerYachts lists the caller's yachts with an exact total.
func (s *ListingService) OwnerYachts(ctx context.Context) ([]domain.Yacht, int, error) {
	owner, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, 0, err
	}
	ys, err := s.loadAll(ctx, owner.ID)
	if err != nil {
		return nil, 0, domain.Unavailable("list owner yachts", err)
	}
	n, err := s.repo.CountYachts(ctx, domain.YachtsQuery{OwnerID: owner.ID})
	if err != nil {
		return nil, 0, domain.Unavailable("count owner yachts", err)
	}
	return nonNil(ys), n, nil
}

// SubmitRequest stores a listing interest form. Anonymous callers are allowed.
func (s *ListingService) SubmitRequest(ctx context.Context, r domain.ListingRequest) (domain.ListingRequest, error) {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	if err := r.Validate(); err != nil {
		return domain.ListingRequest{}, err
	}
	if p, err := s.gate.RequireAuthenticated(ctx); err == nil {
		r.OwnerID = &p.ID
	}
	r.ID = uuid.NewString()
	r.Status = "pending"
	r.CreatedAt = s.now().UTC()
	if err := s.repo.CreateListingRequest(ctx, r); err != nil {
		return domain.ListingRequest{}, domain.Unavailable("create listing request", err)
	}
	return r, nil
}

// loadAll pages through the repository until a short page comes back.
// Rows that shift between pages are reported once.
func (s *ListingService) loadAll(ctx context.Context, ownerID string) ([]domain.Yacht, error) {
	out := []domain.Yacht{}
	seen := map[string]struct{}{}
	for offset := 0; ; offset += catalogPage {
		ys, err := s.repo.ListYachts(ctx, domain.YachtsQuery{OwnerID: ownerID, Limit: catalogPage, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, y := range ys {
			if _, dup := seen[y.ID]; dup {
				continue
			}
			seen[y.ID] = struct{}{}
			out = append(out, y)
		}
		if len(ys) < catalogPage {
			return out, nil
		}
	}
}

func invalidateYacht(ctx context.Context, c domain.Cache, id string) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, yachtKey(id))
	_ = c.Del(ctx, catalogKey)
}
