package ports

import (
	"context"

	"github.com/salonbook/salon-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// TokenVerifier validates a session token and returns the identity it carries.
type TokenVerifier interface {
	VerifyToken(token string) (domain.Identity, error)
}
