package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

type UserFilter struct {
	ID          string
	IsStaff     *bool
	IsSuperuser *bool
	Search      string
	Limit       int
	Offset      int
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// EmailExists matches the address exactly (case-sensitive).
	EmailExists(ctx context.Context, email string) (bool, error)
	// UsernameExists matches case-insensitively.
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
