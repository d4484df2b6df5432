package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy lets X-Forwarded-For and X-Real-IP replace the peer address.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
}

type Server struct{ mux *chi.Mux }

func New(o Options) *Server {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	m := chi.NewRouter()

	// all middlewares go before any routes
	if o.TrustProxy {
		m.Use(chimw.RealIP)
	}
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(o.Timeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	if o.RateLimitRPS > 0 {
		m.Use(NewRateLimiter(o.RateLimitRPS, o.RateLimitBurst).Handler)
	}
	m.Use(BearerToken)

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

func (s *Server) MountHandlers(h *Handlers) {
	m := s.mux
	m.Get("/healthz", h.health)

	m.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Get("/me", h.me)
		})

		r.Get("/yachts", h.searchYachts)
		r.Post("/yachts", h.createYacht)
		r.Get("/yachts/{id}", h.getYacht)
		r.Get("/yachts/{id}/quote", h.quote)
		r.Post("/listing-requests", h.submitListingRequest)

		r.Get("/owner/yachts", h.ownerYachts)
		r.Get("/owner/bookings", h.ownerBookings)

		r.Post("/bookings", h.createBooking)
		r.Get("/bookings", h.renterBookings)
		r.Get("/bookings/{id}", h.getBooking)
		r.Post("/bookings/{id}/{action:cancel|confirm|decline|complete}", h.transitionBooking)

		r.Get("/favorites", h.listFavorites)
		r.Put("/favorites/{yachtID}", h.addFavorite)
		r.Delete("/favorites/{yachtID}", h.removeFavorite)
		r.Post("/favorites/{yachtID}/toggle", h.toggleFavorite)
	})
}
