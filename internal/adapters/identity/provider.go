// Package identity issues and checks session tokens for parties.
package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"sailhaven/internal/domain"
)

type ctxKey struct{}

// WithToken stores the raw bearer token on ctx. Nothing is validated here.
func WithToken(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, ctxKey{}, raw)
}

func TokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

const minPasswordLen = 8

// Provider is the identity service: it resolves the caller of a request
// from its token on every call and owns signup, login and logout.
type Provider struct {
	parties domain.PartyRepository
	secret  string
	ttl     time.Duration
	now     func() time.Time
}

// NewProvider fails with ErrEmptySecret when secret is empty, since an
// empty HMAC key lets anyone mint valid tokens.
func NewProvider(parties domain.PartyRepository, secret string, ttl time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Provider{parties: parties, secret: secret, ttl: ttl, now: time.Now}, nil
}

type Signup struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Party     domain.Party `json:"party"`
}

// CurrentUser implements domain.IdentityProvider.
func (p *Provider) CurrentUser(ctx context.Context) (domain.Party, error) {
	claims, err := p.claims(ctx)
	if err != nil {
		return domain.Party{}, err
	}
	revoked, err := p.parties.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Party{}, err
	}
	if revoked {
		return domain.Party{}, domain.ErrAuthenticationRequired
	}
	party, err := p.parties.GetParty(ctx, claims.PartyID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Party{}, domain.ErrAuthenticationRequired
	}
	return party, err
}

func (p *Provider) Signup(ctx context.Context, in Signup) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, domain.Invalid("email is invalid")
	}
	if len(in.Password) < minPasswordLen {
		return Session{}, domain.Invalid("password must be at least %d characters", minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}
	party := domain.Party{
		ID:          uuid.NewString(),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Email:       email,
		Phone:       strings.TrimSpace(in.Phone),
		CreatedAt:   p.now().UTC(),
	}
	if party.DisplayName == "" {
		party.DisplayName = strings.SplitN(email, "@", 2)[0]
	}
	if err := p.parties.CreateParty(ctx, party, string(hash)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return Session{}, err
		}
		return Session{}, domain.Unavailable("create party", err)
	}
	log.Info().Str("party_id", party.ID).Msg("party signed up")
	return p.issue(party)
}

func (p *Provider) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, domain.Invalid("email and password are required")
	}
	party, hash, err := p.parties.GetCredentials(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.ErrAuthenticationRequired
	}
	if err != nil {
		return Session{}, domain.Unavailable("get credentials", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("login failed")
		return Session{}, domain.ErrAuthenticationRequired
	}
	return p.issue(party)
}

// Logout revokes the token carried by ctx until it would have expired anyway.
func (p *Provider) Logout(ctx context.Context) error {
	claims, err := p.claims(ctx)
	if err != nil {
		return err
	}
	if err := p.parties.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return domain.Unavailable("revoke token", err)
	}
	log.Info().Str("party_id", claims.PartyID).Msg("party logged out")
	return nil
}

func (p *Provider) claims(ctx context.Context) (*Claims, error) {
	raw := TokenFrom(ctx)
	if raw == "" {
		return nil, domain.ErrAuthenticationRequired
	}
	claims, err := ValidateToken(p.secret, raw)
	if err != nil {
		return nil, domain.ErrAuthenticationRequired
	}
	return claims, nil
}

func (p *Provider) issue(party domain.Party) (Session, error) {
	now := p.now()
	tok, err := GenerateToken(p.secret, party.ID, party.Email, now, p.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, ExpiresAt: now.Add(p.ttl).UTC(), Party: party}, nil
}
