package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sailhaven/internal/domain"
)

func valStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
func valPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(v []string) any {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// stamp fills unset timestamps (e.g. catalog imports) with now.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func yachtArgs(y domain.Yacht) []any {
	return []any{
		y.ID,
		y.Name,
		valStr(y.Description),
		string(y.Category),
		y.Capacity,
		y.LengthFt,
		y.Cabins,
		int64(y.PricePerDay),
		valStr(y.Location.City),
		valStr(y.Location.Region),
		valStr(y.Location.Country),
		valF64(y.Location.Lat),
		valF64(y.Location.Lng),
		valJSON(y.Amenities),
		valJSON(y.Images),
		y.Rating,
		y.ReviewCount,
		y.InstantBook,
		string(y.Crew.Mode),
		int64(y.Crew.FeePerDay),
		valInt(y.Year),
		y.OwnerID,
		stamp(y.CreatedAt),
		stamp(y.UpdatedAt),
	}
}

func (r *Repo) CreateYacht(ctx context.Context, y domain.Yacht) error {
	_, err := r.db.ExecContext(ctx, insertYachtSQL, yachtArgs(y)...)
	return duplicate(err)
}

func (r *Repo) UpsertYacht(ctx context.Context, y domain.Yacht) error {
	_, err := r.db.ExecContext(ctx, insertYachtSQL+upsertYachtOnDup, yachtArgs(y)...)
	return err
}

func (r *Repo) CreateListingRequest(ctx context.Context, lr domain.ListingRequest) error {
	_, err := r.db.ExecContext(ctx, insertListingRequestSQL,
		lr.ID,
		valPtr(lr.OwnerID),
		lr.FirstName,
		lr.LastName,
		lr.Email,
		lr.Phone,
		valStr(lr.YachtType),
		valStr(lr.LengthFt),
		valStr(lr.Location),
		valStr(lr.Comments),
		lr.Status,
		lr.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, sourceID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, sourceID, status, truncate(reason, 512))
	return err
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

type rowScanner interface{ Scan(dest ...any) error }

// decodeList reads a JSON array column. NULL leaves dst untouched.
func decodeList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func scanYacht(s rowScanner) (domain.Yacht, error) {
	var (
		y                        domain.Yacht
		desc, city, region, ctry sql.NullString
		lat, lng                 sql.NullFloat64
		amenities, images        []byte
		category, crewMode       string
		price, crewFee           int64
		year                     sql.NullInt64
	)
	if err := s.Scan(
		&y.ID, &y.Name, &desc, &category, &y.Capacity, &y.LengthFt, &y.Cabins, &price,
		&city, &region, &ctry, &lat, &lng, &amenities, &images, &y.Rating, &y.ReviewCount,
		&y.InstantBook, &crewMode, &crewFee, &year, &y.OwnerID, &y.CreatedAt, &y.UpdatedAt,
	); err != nil {
		return domain.Yacht{}, err
	}
	y.Description = desc.String
	y.Category = domain.Category(category)
	y.PricePerDay = domain.Money(price)
	y.Location = domain.Location{City: city.String, Region: region.String, Country: ctry.String}
	if lat.Valid && lng.Valid {
		la, ln := lat.Float64, lng.Float64
		y.Location.Lat, y.Location.Lng = &la, &ln
	}
	y.Crew = domain.CrewPolicy{Mode: domain.CrewMode(crewMode), FeePerDay: domain.Money(crewFee)}
	if year.Valid {
		y.Year = int(year.Int64)
	}
	if err := decodeList(amenities, &y.Amenities); err != nil {
		return domain.Yacht{}, fmt.Errorf("decoding amenities of yacht %s: %w", y.ID, err)
	}
	if err := decodeList(images, &y.Images); err != nil {
		return domain.Yacht{}, fmt.Errorf("decoding images of yacht %s: %w", y.ID, err)
	}
	if y.Amenities == nil {
		y.Amenities = []string{}
	}
	if y.Images == nil {
		y.Images = []string{}
	}
	y.CreatedAt, y.UpdatedAt = y.CreatedAt.UTC(), y.UpdatedAt.UTC()
	return y, nil
}

func (r *Repo) GetYacht(ctx context.Context, id string) (domain.Yacht, error) {
	y, err := scanYacht(r.db.QueryRowContext(ctx, getYachtSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Yacht{}, domain.ErrNotFound
	}
	return y, err
}

func yachtsWhere(q domain.YachtsQuery) (string, []any) {
	if q.OwnerID == "" {
		return "", nil
	}
	return " WHERE y.owner_id = ?", []any{q.OwnerID}
}

// ListYachts returns one page of yachts, newest first.
func (r *Repo) ListYachts(ctx context.Context, q domain.YachtsQuery) ([]domain.Yacht, error) {
	where, args := yachtsWhere(q)
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+yachtColumns+` FROM yachts y`+where+` ORDER BY y.created_at DESC, y.id LIMIT ? OFFSET ?`,
		append(args, limit, max(q.Offset, 0))...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Yacht
	for rows.Next() {
		y, err := scanYacht(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (r *Repo) CountYachts(ctx context.Context, q domain.YachtsQuery) (int, error) {
	where, args := yachtsWhere(q)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM yachts y`+where, args...).Scan(&n)
	return n, err
}
