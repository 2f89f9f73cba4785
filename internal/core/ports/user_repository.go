package ports

import (
	"context"

	"github.com/salonbook/salon-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Emails are looked up
// in their normalised (lower-cased) form.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
