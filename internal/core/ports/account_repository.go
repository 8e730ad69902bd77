package ports

import (
	"context"

	"github.com/medicare/hospital-system/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// FindByEmail returns domain.ErrAccountNotFound when no account matches.
	// The returned account carries PasswordHash.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create returns domain.ErrEmailTaken when the email unique index rejects the insert.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	ListByRole(ctx context.Context, role string) ([]*domain.Account, error)
	// FindDoctors returns doctors matching the name and department exactly.
	FindDoctors(ctx context.Context, firstName, lastName, department string) ([]*domain.Account, error)
}
