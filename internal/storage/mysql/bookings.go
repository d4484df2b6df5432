package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sailhaven/internal/domain"
)

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) error {
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.YachtID,
		b.RenterID,
		domain.DateOnly(b.StartDate),
		domain.DateOnly(b.EndDate),
		int64(b.TotalPrice),
		b.CrewIncluded,
		b.GuestCount,
		valPtr(b.SpecialRequests),
		string(b.Status),
		stamp(b.CreatedAt),
		stamp(b.UpdatedAt),
	)
	return duplicate(err)
}

func scanBooking(s rowScanner) (domain.Booking, error) {
	var (
		b       domain.Booking
		total   int64
		special sql.NullString
		status  string
	)
	if err := s.Scan(
		&b.ID, &b.YachtID, &b.RenterID, &b.StartDate, &b.EndDate, &total, &b.CrewIncluded,
		&b.GuestCount, &special, &status, &b.CreatedAt, &b.UpdatedAt,
		&b.YachtName, &b.YachtOwnerID,
	); err != nil {
		return domain.Booking{}, err
	}
	b.TotalPrice = domain.Money(total)
	b.Status = domain.Status(status)
	if special.Valid {
		sr := special.String
		b.SpecialRequests = &sr
	}
	b.StartDate, b.EndDate = domain.DateOnly(b.StartDate), domain.DateOnly(b.EndDate)
	b.CreatedAt, b.UpdatedAt = b.CreatedAt.UTC(), b.UpdatedAt.UTC()
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+`WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) listBookings(ctx context.Context, where string, arg any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, bookingSelect+where+` ORDER BY b.created_at DESC, b.id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListBookingsByRenter(ctx context.Context, renterID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, `WHERE b.renter_id = ?`, renterID)
}

func (r *Repo) ListBookingsByOwner(ctx context.Context, ownerID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, `WHERE y.owner_id = ?`, ownerID)
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id string, to domain.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(to), at.UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
