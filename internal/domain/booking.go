package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	default:
		return "", Invalid("unknown booking status %q", s)
	}
}

type Booking struct {
	ID              string    `json:"id"`
	YachtID         string    `json:"yacht_id"`
	RenterID        string    `json:"renter_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TotalPrice      Money     `json:"total_price_cents"`
	CrewIncluded    bool      `json:"crew_included"`
	GuestCount      int       `json:"guest_count"`
	SpecialRequests *string   `json:"special_requests,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined from the yacht (not always populated).
	YachtName    string `json:"yacht_name,omitempty"`
	YachtOwnerID string `json:"yacht_owner_id,omitempty"`
}

// BookingRequest is what a renter submits.
type BookingRequest struct {
	YachtID         string
	StartDate       time.Time
	EndDate         time.Time
	CrewIncluded    bool
	GuestCount      int
	SpecialRequests string
}

// Validate checks everything that does not need the yacht record.
func (r BookingRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.YachtID) == "":
		return Invalid("yacht_id is required")
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return Invalid("start and end dates are required")
	case !DateOnly(r.EndDate).After(DateOnly(r.StartDate)):
		return Invalid("end date must be after start date")
	case r.GuestCount < 1:
		return Invalid("guest count must be at least 1")
	}
	return nil
}

func (r BookingRequest) Days() int { return DayCount(r.StartDate, r.EndDate) }

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayCount is the number of whole calendar days from start to end.
func DayCount(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
}

// BookingEvent is handed to the notification collaborator after a committed change.
type BookingEvent struct {
	BookingID string    `json:"booking_id"`
	YachtID   string    `json:"yacht_id"`
	RenterID  string    `json:"renter_id"`
	OwnerID   string    `json:"owner_id"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	From      Status    `json:"from,omitempty"`
	To        Status    `json:"to"`
	At        time.Time `json:"at"`
}
