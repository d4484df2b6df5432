package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sailhaven/internal/domain"
)

// FavoritesStore keeps per-party favorites in SQLite and fans committed
// changes out to in-process subscribers.
type FavoritesStore struct {
	db *sql.DB

	mu     sync.Mutex
	nextID int
	subs   map[int]func(domain.FavoritesChange)
}

func NewFavoritesStore(db *sql.DB) *FavoritesStore {
	return &FavoritesStore{db: db, subs: map[int]func(domain.FavoritesChange){}}
}

func (s *FavoritesStore) List(ctx context.Context, partyID string) ([]domain.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT party_id, yacht_id, name, location, created_at
FROM favorites
WHERE party_id = ?
ORDER BY created_at DESC, yacht_id`, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Favorite
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.PartyID, &f.YachtID, &f.Name, &f.Location, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.CreatedAt = f.CreatedAt.UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

// Add is idempotent; re-adding refreshes the denormalized name and location.
func (s *FavoritesStore) Add(ctx context.Context, f domain.Favorite) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO favorites (party_id, yacht_id, name, location, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (party_id, yacht_id) DO UPDATE SET
  name     = excluded.name,
  location = excluded.location`,
		f.PartyID, f.YachtID, f.Name, f.Location, f.CreatedAt.UTC())
	if err != nil {
		return err
	}
	s.publish(ctx, f.PartyID, f.YachtID, true)
	return nil
}

func (s *FavoritesStore) Remove(ctx context.Context, partyID, yachtID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE party_id = ? AND yacht_id = ?`, partyID, yachtID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(ctx, partyID, yachtID, false)
	}
	return nil
}

func (s *FavoritesStore) Contains(ctx context.Context, partyID, yachtID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE party_id = ? AND yacht_id = ?`, partyID, yachtID).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *FavoritesStore) Subscribe(fn func(domain.FavoritesChange)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *FavoritesStore) count(ctx context.Context, partyID string) int {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE party_id = ?`, partyID).Scan(&n); err != nil {
		log.Warn().Err(err).Str("party_id", partyID).Msg("favorites count failed")
	}
	return n
}

// publish runs after the write committed; subscribers are called outside the lock.
func (s *FavoritesStore) publish(ctx context.Context, partyID, yachtID string, added bool) {
	s.mu.Lock()
	fns := make([]func(domain.FavoritesChange), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	ch := domain.FavoritesChange{PartyID: partyID, YachtID: yachtID, Added: added, Count: s.count(ctx, partyID)}
	for _, fn := range fns {
		fn(ch)
	}
}
