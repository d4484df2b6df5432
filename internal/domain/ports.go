package domain

import (
	"context"
	"time"
)

type YachtRepository interface {
	// Write paths
	CreateYacht(ctx context.Context, y Yacht) error
	UpsertYacht(ctx context.Context, y Yacht) error
	CreateListingRequest(ctx context.Context, r ListingRequest) error
	LogMiss(ctx context.Context, sourceID string, status int, reason string) error

	// Read paths
	GetYacht(ctx context.Context, id string) (Yacht, error)
	ListYachts(ctx context.Context, q YachtsQuery) ([]Yacht, error)
	CountYachts(ctx context.Context, q YachtsQuery) (int, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) error
	// GetBooking returns the booking joined with its yacht's name and owner.
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookingsByRenter(ctx context.Context, renterID string) ([]Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID string) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, to Status, at time.Time) error
}

type PartyRepository interface {
	CreateParty(ctx context.Context, p Party, passwordHash string) error
	GetParty(ctx context.Context, id string) (Party, error)
	GetCredentials(ctx context.Context, email string) (Party, string, error)
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// IdentityProvider resolves the caller of ctx. It returns
// ErrAuthenticationRequired when there is no valid session.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (Party, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type FavoritesStore interface {
	List(ctx context.Context, partyID string) ([]Favorite, error)
	Add(ctx context.Context, f Favorite) error
	Remove(ctx context.Context, partyID, yachtID string) error
	Contains(ctx context.Context, partyID, yachtID string) (bool, error)
	// Subscribe registers fn for every committed change; the returned func unsubscribes.
	Subscribe(fn func(FavoritesChange)) (cancel func())
}

type Notifier interface {
	BookingChanged(ctx context.Context, ev BookingEvent) error
}

// CatalogClient reads a partner yacht feed.
type CatalogClient interface {
	ListYachtIDs(ctx context.Context) ([]string, error)
	GetYacht(ctx context.Context, id string) (map[string]any, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Read models & queries
type YachtsQuery struct {
	OwnerID string
	Limit   int
	Offset  int
}
