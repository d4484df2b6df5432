package app

import (
	"context"
	"errors"

	"sailhaven/internal/domain"
)

// SessionGate guards privileged actions. Every call asks the identity
// provider again; nothing about the session is remembered here.
type SessionGate struct {
	idp domain.IdentityProvider
}

func NewSessionGate(idp domain.IdentityProvider) *SessionGate {
	return &SessionGate{idp: idp}
}

func (g *SessionGate) RequireAuthenticated(ctx context.Context) (domain.Party, error) {
	p, err := g.idp.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationRequired) {
			return domain.Party{}, err
		}
		return domain.Party{}, domain.Unavailable("identity lookup", err)
	}
	if p.ID == "" {
		return domain.Party{}, domain.ErrAuthenticationRequired
	}
	return p, nil
}

// IsAuthenticated is for display purposes only; it swallows backend errors.
func (g *SessionGate) IsAuthenticated(ctx context.Context) bool {
	_, err := g.RequireAuthenticated(ctx)
	return err == nil
}
