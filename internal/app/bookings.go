package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sailhaven/internal/adapters/observability"
	"sailhaven/internal/domain"
)

type BookingService struct {
	gate     *SessionGate
	bookings domain.BookingRepository
	yachts   domain.YachtRepository
	notifier domain.Notifier
	now      func() time.Time
}

func NewBookingService(g *SessionGate, b domain.BookingRepository, y domain.YachtRepository, n domain.Notifier) *BookingService {
	return &BookingService{gate: g, bookings: b, yachts: y, notifier: n, now: time.Now}
}

// WithClock replaces the time source (tests).
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Create validates the request, prices it once and stores it as pending.
func (s *BookingService) Create(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	renter, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := req.Validate(); err != nil {
		return domain.Booking{}, err
	}

	y, err := s.yachts.GetYacht(ctx, req.YachtID)
	if err != nil {
		return domain.Booking{}, backend("get yacht", err)
	}
	if req.GuestCount > y.Capacity {
		return domain.Booking{}, domain.Invalid("guest count %d exceeds capacity %d", req.GuestCount, y.Capacity)
	}

	quote, crew, err := domain.QuoteFor(y, req.Days(), req.CrewIncluded)
	if err != nil {
		return domain.Booking{}, err
	}

	now := s.now().UTC()
	b := domain.Booking{
		ID:           uuid.NewString(),
		YachtID:      y.ID,
		RenterID:     renter.ID,
		StartDate:    domain.DateOnly(req.StartDate),
		EndDate:      domain.DateOnly(req.EndDate),
		TotalPrice:   quote.Total,
		CrewIncluded: crew,
		GuestCount:   req.GuestCount,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		YachtName:    y.Name,
		YachtOwnerID: y.OwnerID,
	}
	if sr := strings.TrimSpace(req.SpecialRequests); sr != "" {
		b.SpecialRequests = &sr
	}

	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		observability.ObserveTransition(domain.ActionCreate, "error")
		return domain.Booking{}, domain.Unavailable("create booking", err)
	}
	observability.ObserveTransition(domain.ActionCreate, "ok")
	log.Info().Str("booking_id", b.ID).Str("yacht_id", y.ID).Str("party_id", renter.ID).
		Int64("total_cents", int64(b.TotalPrice)).Msg("booking created")

	s.notify(ctx, domain.BookingEvent{
		BookingID: b.ID, YachtID: b.YachtID, RenterID: b.RenterID, OwnerID: y.OwnerID,
		ActorID: renter.ID, Action: domain.ActionCreate, To: b.Status, At: now,
	})
	return b, nil
}

func (s *BookingService) Cancel(ctx context.Context, id string) (domain.Booking, error) {
	return s.apply(ctx, id, domain.ActionCancel)
}

func (s *BookingService) Confirm(ctx context.Context, id string) (domain.Booking, error) {
	return s.apply(ctx, id, domain.ActionConfirm)
}

func (s *BookingService) Decline(ctx context.Context, id string) (domain.Booking, error) {
	return s.apply(ctx, id, domain.ActionDecline)
}

func (s *BookingService) Complete(ctx context.Context, id string) (domain.Booking, error) {
	return s.apply(ctx, id, domain.ActionComplete)
}

// apply runs one lifecycle edge. Authorization is decided before the state
// machine is consulted, and a missing booking looks the same as a foreign one.
func (s *BookingService) apply(ctx context.Context, id string, action domain.Action) (domain.Booking, error) {
	caller, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return domain.Booking{}, err
	}

	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			observability.ObserveTransition(action, "denied")
			return domain.Booking{}, domain.Authorize(domain.Booking{}, caller.ID, action)
		}
		return domain.Booking{}, domain.Unavailable("get booking", err)
	}
	if err := domain.Authorize(b, caller.ID, action); err != nil {
		observability.ObserveTransition(action, "denied")
		return domain.Booking{}, err
	}

	to, err := domain.Transition(b.Status, action)
	if err != nil {
		observability.ObserveTransition(action, "rejected")
		return domain.Booking{}, err
	}

	now := s.now().UTC()
	if err := s.bookings.UpdateBookingStatus(ctx, b.ID, to, now); err != nil {
		observability.ObserveTransition(action, "error")
		return domain.Booking{}, backend("update booking status", err)
	}
	observability.ObserveTransition(action, "ok")

	from := b.Status
	b.Status = to
	b.UpdatedAt = now
	log.Info().Str("booking_id", b.ID).Str("party_id", caller.ID).
		Str("from", string(from)).Str("to", string(to)).Msg("booking " + string(action))

	s.notify(ctx, domain.BookingEvent{
		BookingID: b.ID, YachtID: b.YachtID, RenterID: b.RenterID, OwnerID: b.YachtOwnerID,
		ActorID: caller.ID, Action: action, From: from, To: to, At: now,
	})
	return b, nil
}

// Get returns a booking to its renter or to the yacht owner.
func (s *BookingService) Get(ctx context.Context, id string) (domain.Booking, error) {
	caller, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, domain.ErrPermissionDenied
		}
		return domain.Booking{}, domain.Unavailable("get booking", err)
	}
	if b.RenterID != caller.ID && b.YachtOwnerID != caller.ID {
		return domain.Booking{}, domain.ErrPermissionDenied
	}
	return b, nil
}

// RenterBookings lists the bookings the caller made.
func (s *BookingService) RenterBookings(ctx context.Context) ([]domain.Booking, error) {
	caller, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	bs, err := s.bookings.ListBookingsByRenter(ctx, caller.ID)
	if err != nil {
		return nil, domain.Unavailable("list renter bookings", err)
	}
	return nonNil(bs), nil
}

// OwnerBookings lists bookings on yachts the caller owns.
func (s *BookingService) OwnerBookings(ctx context.Context) ([]domain.Booking, error) {
	caller, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	bs, err := s.bookings.ListBookingsByOwner(ctx, caller.ID)
	if err != nil {
		return nil, domain.Unavailable("list owner bookings", err)
	}
	return nonNil(bs), nil
}

func (s *BookingService) notify(ctx context.Context, ev domain.BookingEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BookingChanged(ctx, ev); err != nil {
		log.Warn().Err(err).Str("booking_id", ev.BookingID).Str("action", string(ev.Action)).
			Msg("booking notification failed")
	}
}

// backend keeps domain errors (not found, validation) as they are and marks
// everything else as a collaborator failure.
func backend(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return domain.Unavailable(op, err)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
