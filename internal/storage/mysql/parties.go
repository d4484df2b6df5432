package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"sailhaven/internal/domain"
)

const errDupEntry = 1062

// duplicate turns a unique key violation into domain.ErrConflict.
func duplicate(err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("%w: %s", domain.ErrConflict, me.Message)
	}
	return err
}

func (r *Repo) CreateParty(ctx context.Context, p domain.Party, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, insertPartySQL,
		p.ID, p.Email, passwordHash, p.DisplayName, valStr(p.Phone), stamp(p.CreatedAt))
	return duplicate(err)
}

func scanParty(s rowScanner, extra ...any) (domain.Party, error) {
	var p domain.Party
	var phone sql.NullString
	dest := append([]any{&p.ID, &p.Email, &p.DisplayName, &phone, &p.CreatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Party{}, domain.ErrNotFound
		}
		return domain.Party{}, err
	}
	p.Phone = phone.String
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *Repo) GetParty(ctx context.Context, id string) (domain.Party, error) {
	return scanParty(r.db.QueryRowContext(ctx, `SELECT `+partyColumns+` FROM parties WHERE id = ?`, id))
}

// GetCredentials looks a party up by its normalized email.
func (r *Repo) GetCredentials(ctx context.Context, email string) (domain.Party, string, error) {
	var hash string
	p, err := scanParty(r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+`, password_hash FROM parties WHERE email = ?`, email), &hash)
	if err != nil {
		return domain.Party{}, "", err
	}
	return p, hash, nil
}

func (r *Repo) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, revokeTokenSQL, jti, expiresAt.UTC())
	return err
}

func (r *Repo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM revoked_tokens WHERE jti = ?`, jti).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// PurgeRevoked drops revocations whose tokens have expired anyway.
func (r *Repo) PurgeRevoked(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
