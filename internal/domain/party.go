package domain

import "time"

// Party is an authenticated principal acting as renter or owner.
type Party struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Favorite struct {
	PartyID   string    `json:"-"`
	YachtID   string    `json:"yacht_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type FavoritesChange struct {
	PartyID string
	YachtID string
	Added   bool
	Count   int // favorites the party holds after the change
}
