package repository

import (
	"context"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	// GetByUsername nil, nil si no existe.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
}
