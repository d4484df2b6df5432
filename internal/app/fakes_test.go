package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"sailhaven/internal/domain"
)

// ---- fakes ----

type fakeIdP struct {
	party domain.Party
	err   error
	calls int
}

func (f *fakeIdP) CurrentUser(ctx context.Context) (domain.Party, error) {
	f.calls++
	if f.err != nil {
		return domain.Party{}, f.err
	}
	if f.party.ID == "" {
		return domain.Party{}, domain.ErrAuthenticationRequired
	}
	return f.party, nil
}

func (f *fakeIdP) as(id string) { f.party, f.err = domain.Party{ID: id}, nil }

type miss struct {
	id     string
	status int
}

type fakeYachts struct {
	mu        sync.Mutex
	byID      map[string]domain.Yacht
	order     []string
	requests  []domain.ListingRequest
	misses    []miss
	listCalls int
	err       error
}

func newFakeYachts(ys ...domain.Yacht) *fakeYachts {
	f := &fakeYachts{byID: map[string]domain.Yacht{}}
	for _, y := range ys {
		f.put(y)
	}
	return f
}

func (f *fakeYachts) put(y domain.Yacht) {
	if _, ok := f.byID[y.ID]; !ok {
		f.order = append(f.order, y.ID)
	}
	f.byID[y.ID] = y
}

func (f *fakeYachts) CreateYacht(ctx context.Context, y domain.Yacht) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.put(y)
	return nil
}

func (f *fakeYachts) UpsertYacht(ctx context.Context, y domain.Yacht) error {
	return f.CreateYacht(ctx, y)
}

func (f *fakeYachts) CreateListingRequest(ctx context.Context, r domain.ListingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, r)
	return nil
}

func (f *fakeYachts) LogMiss(ctx context.Context, id string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses = append(f.misses, miss{id: id, status: status})
	return nil
}

func (f *fakeYachts) GetYacht(ctx context.Context, id string) (domain.Yacht, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Yacht{}, f.err
	}
	y, ok := f.byID[id]
	if !ok {
		return domain.Yacht{}, domain.ErrNotFound
	}
	return y, nil
}

func (f *fakeYachts) ListYachts(ctx context.Context, q domain.YachtsQuery) ([]domain.Yacht, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Yacht
	for _, id := range f.order {
		y := f.byID[id]
		if q.OwnerID != "" && y.OwnerID != q.OwnerID {
			continue
		}
		out = append(out, y)
	}
	return window(out, q), nil
}

func (f *fakeYachts) CountYachts(ctx context.Context, q domain.YachtsQuery) (int, error) {
	ys, err := f.ListYachts(ctx, domain.YachtsQuery{OwnerID: q.OwnerID})
	return len(ys), err
}

func window(ys []domain.Yacht, q domain.YachtsQuery) []domain.Yacht {
	if q.Offset >= len(ys) {
		return nil
	}
	ys = ys[q.Offset:]
	if q.Limit > 0 && q.Limit < len(ys) {
		ys = ys[:q.Limit]
	}
	return ys
}

type fakeBookings struct {
	yachts    *fakeYachts
	byID      map[string]domain.Booking
	updateErr error
	updates   int
}

func newFakeBookings(ys *fakeYachts) *fakeBookings {
	return &fakeBookings{yachts: ys, byID: map[string]domain.Booking{}}
}

func (f *fakeBookings) CreateBooking(ctx context.Context, b domain.Booking) error {
	f.byID[b.ID] = b
	return nil
}

func (f *fakeBookings) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	if y, ok := f.yachts.byID[b.YachtID]; ok {
		b.YachtName, b.YachtOwnerID = y.Name, y.OwnerID
	}
	return b, nil
}

func (f *fakeBookings) ListBookingsByRenter(ctx context.Context, renterID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.byID {
		if b.RenterID == renterID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListBookingsByOwner(ctx context.Context, ownerID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for id := range f.byID {
		b, _ := f.GetBooking(ctx, id)
		if b.YachtOwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) UpdateBookingStatus(ctx context.Context, id string, to domain.Status, at time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.updates++
	b.Status, b.UpdatedAt = to, at
	f.byID[id] = b
	return nil
}

// jsonCache round-trips values through JSON like the redis adapter does.
type jsonCache struct {
	store map[string][]byte
	dels  []string
}

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) BookingChanged(ctx context.Context, ev domain.BookingEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type memFavorites struct {
	items map[string][]domain.Favorite
	err   error
}

func (m *memFavorites) List(ctx context.Context, partyID string) ([]domain.Favorite, error) {
	return m.items[partyID], m.err
}

func (m *memFavorites) Add(ctx context.Context, f domain.Favorite) error {
	if m.err != nil {
		return m.err
	}
	if m.items == nil {
		m.items = map[string][]domain.Favorite{}
	}
	for _, x := range m.items[f.PartyID] {
		if x.YachtID == f.YachtID {
			return nil
		}
	}
	m.items[f.PartyID] = append(m.items[f.PartyID], f)
	return nil
}

func (m *memFavorites) Remove(ctx context.Context, partyID, yachtID string) error {
	if m.err != nil {
		return m.err
	}
	kept := m.items[partyID][:0]
	for _, x := range m.items[partyID] {
		if x.YachtID != yachtID {
			kept = append(kept, x)
		}
	}
	m.items[partyID] = kept
	return nil
}

func (m *memFavorites) Contains(ctx context.Context, partyID, yachtID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, x := range m.items[partyID] {
		if x.YachtID == yachtID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFavorites) Subscribe(fn func(domain.FavoritesChange)) func() { return func() {} }

type fakeCatalog struct {
	ids      []string
	payloads map[string]map[string]any
	errs     map[string]error
}

func (c *fakeCatalog) ListYachtIDs(ctx context.Context) ([]string, error) { return c.ids, nil }

func (c *fakeCatalog) GetYacht(ctx context.Context, id string) (map[string]any, error) {
	if err := c.errs[id]; err != nil {
		return nil, err
	}
	p, ok := c.payloads[id]
	if !ok {
		return nil, errors.New("catalog: not found")
	}
	return p, nil
}

type pinger struct {
	err   error
	calls int
}

func (p *pinger) Ping(ctx context.Context) error {
	p.calls++
	return p.err
}

// ---- fixtures ----

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seaBreeze() domain.Yacht {
	return domain.Yacht{
		ID:          "y-1",
		Name:        "Sea Breeze",
		Category:    domain.CategoryMotorYacht,
		Capacity:    8,
		LengthFt:    52,
		PricePerDay: 100_00,
		Location:    domain.Location{City: "Miami", Region: "Florida", Country: "USA"},
		Amenities:   []string{},
		Images:      []string{},
		Crew:        domain.CrewPolicy{Mode: domain.CrewOptional, FeePerDay: 50_00},
		OwnerID:     "owner",
	}
}
