package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "sailhaven/internal/adapters/http_server"
	"sailhaven/internal/adapters/identity"
	"sailhaven/internal/app"
	"sailhaven/internal/domain"
)

// ---- fakes ----

// tokenIdP treats the bearer token as the party id.
type tokenIdP struct{}

func (tokenIdP) CurrentUser(ctx context.Context) (domain.Party, error) {
	tok := identity.TokenFrom(ctx)
	if tok == "" {
		return domain.Party{}, domain.ErrAuthenticationRequired
	}
	return domain.Party{ID: tok}, nil
}

type stubAuth struct{}

func (stubAuth) Signup(ctx context.Context, in identity.Signup) (identity.Session, error) {
	if in.Email == "taken@example.com" {
		return identity.Session{}, domain.ErrConflict
	}
	return identity.Session{Token: "t", Party: domain.Party{ID: "new", Email: in.Email}}, nil
}

func (stubAuth) Login(ctx context.Context, email, password string) (identity.Session, error) {
	return identity.Session{}, domain.ErrAuthenticationRequired
}

func (stubAuth) Logout(ctx context.Context) error {
	if identity.TokenFrom(ctx) == "" {
		return domain.ErrAuthenticationRequired
	}
	return nil
}

type memStore struct {
	yachts   map[string]domain.Yacht
	order    []string
	bookings map[string]domain.Booking
	down     bool
}

func (m *memStore) CreateYacht(ctx context.Context, y domain.Yacht) error {
	m.yachts[y.ID] = y
	m.order = append(m.order, y.ID)
	return nil
}
func (m *memStore) UpsertYacht(ctx context.Context, y domain.Yacht) error { return m.CreateYacht(ctx, y) }
func (m *memStore) CreateListingRequest(ctx context.Context, r domain.ListingRequest) error {
	return nil
}
func (m *memStore) LogMiss(ctx context.Context, id string, status int, reason string) error {
	return nil
}
func (m *memStore) GetYacht(ctx context.Context, id string) (domain.Yacht, error) {
	if m.down {
		return domain.Yacht{}, errors.New("dial tcp: refused")
	}
	y, ok := m.yachts[id]
	if !ok {
		return domain.Yacht{}, domain.ErrNotFound
	}
	return y, nil
}
func (m *memStore) ListYachts(ctx context.Context, q domain.YachtsQuery) ([]domain.Yacht, error) {
	if m.down {
		return nil, errors.New("dial tcp: refused")
	}
	var out []domain.Yacht
	for _, id := range m.order {
		if y := m.yachts[id]; q.OwnerID == "" || y.OwnerID == q.OwnerID {
			out = append(out, y)
		}
	}
	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}
func (m *memStore) CountYachts(ctx context.Context, q domain.YachtsQuery) (int, error) {
	ys, err := m.ListYachts(ctx, domain.YachtsQuery{OwnerID: q.OwnerID})
	return len(ys), err
}

func (m *memStore) CreateBooking(ctx context.Context, b domain.Booking) error {
	m.bookings[b.ID] = b
	return nil
}
func (m *memStore) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	b.YachtOwnerID = m.yachts[b.YachtID].OwnerID
	return b, nil
}
func (m *memStore) ListBookingsByRenter(ctx context.Context, id string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.RenterID == id {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m *memStore) ListBookingsByOwner(ctx context.Context, id string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if m.yachts[b.YachtID].OwnerID == id {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m *memStore) UpdateBookingStatus(ctx context.Context, id string, to domain.Status, at time.Time) error {
	b := m.bookings[id]
	b.Status, b.UpdatedAt = to, at
	m.bookings[id] = b
	return nil
}

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttl int) error   { return nil }
func (nopCache) Del(ctx context.Context, key string) error                   { return nil }

type memFavs struct{ set map[string]domain.Favorite }

func (m *memFavs) List(ctx context.Context, pid string) ([]domain.Favorite, error) {
	var out []domain.Favorite
	for _, f := range m.set {
		if f.PartyID == pid {
			out = append(out, f)
		}
	}
	return out, nil
}
func (m *memFavs) Add(ctx context.Context, f domain.Favorite) error {
	m.set[f.PartyID+"/"+f.YachtID] = f
	return nil
}
func (m *memFavs) Remove(ctx context.Context, pid, yid string) error {
	delete(m.set, pid+"/"+yid)
	return nil
}
func (m *memFavs) Contains(ctx context.Context, pid, yid string) (bool, error) {
	_, ok := m.set[pid+"/"+yid]
	return ok, nil
}
func (m *memFavs) Subscribe(fn func(domain.FavoritesChange)) func() { return func() {} }

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

// ---- harness ----

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	st := &memStore{yachts: map[string]domain.Yacht{}, bookings: map[string]domain.Booking{}}
	for _, y := range []domain.Yacht{
		{ID: "y-1", Name: "Sea Breeze", Category: domain.CategoryMotorYacht, Capacity: 8, LengthFt: 50, PricePerDay: 100_00,
			Location: domain.Location{City: "Miami", Country: "USA"}, InstantBook: true,
			Crew: domain.CrewPolicy{Mode: domain.CrewOptional, FeePerDay: 50_00}, OwnerID: "owner"},
		{ID: "y-2", Name: "Wind Dancer", Category: domain.CategorySailingYacht, Capacity: 4, LengthFt: 38, PricePerDay: 300_00,
			Location: domain.Location{City: "Split", Country: "Croatia"}, Crew: domain.CrewPolicy{Mode: domain.CrewIncluded}, OwnerID: "owner"},
	} {
		require.NoError(t, st.CreateYacht(context.Background(), y))
	}

	gate := app.NewSessionGate(tokenIdP{})
	listings := app.NewListingService(gate, st, nopCache{}, time.Minute)
	h := &httpserver.Handlers{
		Gate:      gate,
		Auth:      stubAuth{},
		Listings:  listings,
		Bookings:  app.NewBookingService(gate, st, st, nil),
		Favorites: app.NewFavoritesService(gate, &memFavs{set: map[string]domain.Favorite{}}, listings),
		Health:    app.NewHealthCheck(time.Minute, map[string]domain.Pinger{"mysql": okPinger{}}),
	}
	srv := httpserver.New(httpserver.Options{})
	srv.MountHandlers(h)
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, st
}

func do(t *testing.T, ts *httptest.Server, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// ---- tests ----

func TestSearchYachts(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := do(t, ts, "GET", "/v1/yachts?features=Instant%20Book", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("ETag"))
	assert.EqualValues(t, 1, body["count"])

	resp, body = do(t, ts, "GET", "/v1/yachts?types=sailing%20yacht&min_price=250&max_price=300", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Wind Dancer", items[0].(map[string]any)["name"])

	resp, _ = do(t, ts, "GET", "/v1/yachts?location=nowhere", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, ts, "GET", "/v1/yachts?types=submarine", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.EqualValues(t, 400, body["status"])
}

func TestGetYacht_ETagAndNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := do(t, ts, "GET", "/v1/yachts/y-1", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")

	req, _ := http.NewRequest("GET", ts.URL+"/v1/yachts/y-1", nil)
	req.Header.Set("If-None-Match", etag)
	r2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	r2.Body.Close()
	assert.Equal(t, http.StatusNotModified, r2.StatusCode)

	resp, _ = do(t, ts, "GET", "/v1/yachts/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuote(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := do(t, ts, "GET", "/v1/yachts/y-1/quote?start=2026-06-01&end=2026-06-04&crew=true", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 480_00, body["total_cents"])

	resp, _ = do(t, ts, "GET", "/v1/yachts/y-1/quote?start=2026-06-01&end=2026-06-01", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// an unreadable crew flag is rejected, not treated as false
	resp, body = do(t, ts, "GET", "/v1/yachts/y-1/quote?start=2026-06-01&end=2026-06-04&crew=yes", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["detail"], "crew must be a boolean")
}

func TestSearchYachts_AmountOutOfRange(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, q := range []string{"min_price=1e20", "max_price=92233720368547758"} {
		resp, body := do(t, ts, "GET", "/v1/yachts?"+q, "", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, body["detail"], "largest supported amount", q)
	}

	resp, _ := do(t, ts, "GET", "/v1/yachts?max_price=1000000", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateYacht_AuthBeforeBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := do(t, ts, "POST", "/v1/yachts", "", `{"name":`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))

	resp, _ = do(t, ts, "POST", "/v1/yachts", "owner", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingFlow(t *testing.T) {
	ts, st := newTestServer(t)
	payload := `{"yacht_id":"y-1","start_date":"2026-06-01","end_date":"2026-06-03","guest_count":2}`

	resp, _ := do(t, ts, "POST", "/v1/bookings", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))

	resp, body := do(t, ts, "POST", "/v1/bookings", "renter", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, "pending", body["status"])
	assert.EqualValues(t, 220_00, body["total_price_cents"])

	resp, _ = do(t, ts, "POST", "/v1/bookings/"+id+"/confirm", "stranger", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = do(t, ts, "POST", "/v1/bookings/"+id+"/confirm", "owner", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", body["status"])

	resp, _ = do(t, ts, "POST", "/v1/bookings/"+id+"/decline", "owner", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, ts, "GET", "/v1/owner/bookings", "owner", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, _ = do(t, ts, "POST", "/v1/bookings/"+id+"/sink", "owner", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.StatusConfirmed, st.bookings[id].Status)
}

func TestCreateBooking_BadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := do(t, ts, "POST", "/v1/bookings", "renter", `{"yacht_id":"y-1","start_date":"June 1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, ts, "POST", "/v1/bookings", "renter", `{"unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, ts, "POST", "/v1/bookings", "renter",
		`{"yacht_id":"y-2","start_date":"2026-06-01","end_date":"2026-06-02","guest_count":5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBackendDownIs503(t *testing.T) {
	ts, st := newTestServer(t)
	st.down = true
	resp, _ := do(t, ts, "GET", "/v1/yachts/y-1", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFavoritesAndAuth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := do(t, ts, "POST", "/v1/favorites/y-1/toggle", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, ts, "POST", "/v1/favorites/y-1/toggle", "p-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["favorite"])

	resp, body = do(t, ts, "GET", "/v1/favorites", "p-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, _ = do(t, ts, "DELETE", "/v1/favorites/y-1", "p-1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, ts, "GET", "/v1/auth/me", "p-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "p-1", body["id"])

	resp, _ = do(t, ts, "POST", "/v1/auth/signup", "", `{"email":"taken@example.com","password":"xxxxxxxx"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, ts, "POST", "/v1/auth/login", "", `{"email":"a@b.co","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, ts, "POST", "/v1/auth/logout", "p-1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := do(t, ts, "GET", "/healthz?fresh=1", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
}

func TestRateLimiter(t *testing.T) {
	srv := httpserver.New(httpserver.Options{RateLimitRPS: 0.001, RateLimitBurst: 2})
	srv.Mount("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) }))
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/ping")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{204, 204, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_IgnoresForwardedHeadersByDefault(t *testing.T) {
	srv := httpserver.New(httpserver.Options{RateLimitRPS: 0.001, RateLimitBurst: 2})
	srv.Mount("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) }))
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/ping", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{204, 204, http.StatusTooManyRequests}, codes)
}
