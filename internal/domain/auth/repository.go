package auth

import "context"

// Repository looks up editor accounts.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
}
