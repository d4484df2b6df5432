package httpserver

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sailhaven/internal/domain"
)

// parseCriteria reads search filters. Prices are in currency units
// (e.g. dollars) and may carry cents.
func parseCriteria(q url.Values) (domain.Criteria, error) {
	c := domain.Criteria{LocationText: strings.TrimSpace(q.Get("location"))}

	if s := q.Get("guests"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return c, domain.Invalid("guests must be a non-negative integer")
		}
		c.MinGuests = n
	}

	minS, maxS := q.Get("min_price"), q.Get("max_price")
	if minS != "" || maxS != "" {
		pr := domain.PriceRange{Min: 0, Max: math.MaxInt64}
		if minS != "" {
			m, err := parseMoney(minS)
			if err != nil {
				return c, domain.Invalid("min_price: %v", err)
			}
			pr.Min = m
		}
		if maxS != "" {
			m, err := parseMoney(maxS)
			if err != nil {
				return c, domain.Invalid("max_price: %v", err)
			}
			pr.Max = m
		}
		if pr.Min > pr.Max {
			return c, domain.Invalid("min_price must not exceed max_price")
		}
		c.Price = &pr
	}

	for _, s := range splitList(q["types"]) {
		cat, ok := domain.ParseCategory(s)
		if !ok {
			return c, domain.Invalid("unknown yacht type %q", s)
		}
		c.Categories = append(c.Categories, cat)
	}
	c.Features = splitList(q["features"])

	if s := q.Get("instant"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return c, domain.Invalid("instant must be a boolean")
		}
		c.InstantBookOnly = b
	}
	return c, nil
}

// maxAmount keeps the cents conversion inside int64.
const maxAmount = math.MaxInt64 / 100

func parseMoney(s string) (domain.Money, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, domain.Invalid("%q is not a valid amount", s)
	}
	if f >= maxAmount {
		return 0, domain.Invalid("%q exceeds the largest supported amount", s)
	}
	return domain.Money(math.Round(f * 100)), nil
}

// splitList accepts repeated params and comma separated values.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func parseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, domain.Invalid("%s is required", name)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, domain.Invalid("%s must be YYYY-MM-DD", name)
	}
	return t, nil
}

func (h *Handlers) searchYachts(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ys, err := h.Listings.Search(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, list(ys))
}

func (h *Handlers) getYacht(w http.ResponseWriter, r *http.Request) {
	y, err := h.Listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, y)
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDate("start", q.Get("start"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate("end", q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var crew bool
	if s := q.Get("crew"); s != "" {
		if crew, err = strconv.ParseBool(s); err != nil {
			writeError(w, r, domain.Invalid("crew must be a boolean"))
			return
		}
	}

	out, err := h.Listings.Quote(r.Context(), chi.URLParam(r, "id"), start, end, crew)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createYacht(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Gate.RequireAuthenticated(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.Yacht
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	y, err := h.Listings.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/yachts/"+y.ID)
	writeJSON(w, http.StatusCreated, y)
}

func (h *Handlers) ownerYachts(w http.ResponseWriter, r *http.Request) {
	ys, n, err := h.Listings.OwnerYachts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := list(ys)
	resp.Count = n
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) submitListingRequest(w http.ResponseWriter, r *http.Request) {
	var in domain.ListingRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Listings.SubmitRequest(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
