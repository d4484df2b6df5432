package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sailhaven/internal/domain"
)

type bookingRequest struct {
	YachtID         string `json:"yacht_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	CrewIncluded    bool   `json:"crew_included"`
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `json:"special_requests"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	// session first: an anonymous caller learns nothing about the payload
	if _, err := h.Gate.RequireAuthenticated(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	var in bookingRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.Bookings.Create(r.Context(), domain.BookingRequest{
		YachtID:         in.YachtID,
		StartDate:       start,
		EndDate:         end,
		CrewIncluded:    in.CrewIncluded,
		GuestCount:      in.GuestCount,
		SpecialRequests: in.SpecialRequests,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/bookings/"+b.ID)
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) transitionBooking(w http.ResponseWriter, r *http.Request) {
	var apply func(context.Context, string) (domain.Booking, error)
	switch domain.Action(chi.URLParam(r, "action")) {
	case domain.ActionCancel:
		apply = h.Bookings.Cancel
	case domain.ActionConfirm:
		apply = h.Bookings.Confirm
	case domain.ActionDecline:
		apply = h.Bookings.Decline
	case domain.ActionComplete:
		apply = h.Bookings.Complete
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown booking action")
		return
	}
	b, err := apply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) renterBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Bookings.RenterBookings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(bs))
}

func (h *Handlers) ownerBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Bookings.OwnerBookings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(bs))
}
