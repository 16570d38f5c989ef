package repository

import (
	"context"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// ClientRepository puerto de lectura de clientes con su grupo y tipo.
type ClientRepository interface {
	// GetByID nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.ClienteDetalle, error)
	List(ctx context.Context, search string, limit, offset int) ([]*entity.ClienteDetalle, error)
}
