package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo lectura de clientes con grupo y tipo (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientSelect = `
	SELECT c.id_cliente, c.nombre_cliente, COALESCE(c.telefono, ''), COALESCE(c.correo, ''),
	       c.id_grupo, c.id_tipo_cliente, g.clave_grupo, t.nombre_tipo, t.descuento
	FROM cliente c
	JOIN grupo g        ON g.id_grupo = c.id_grupo
	JOIN tipo_cliente t ON t.id_tipo_cliente = c.id_tipo_cliente`

func scanCliente(row pgx.Row) (*entity.ClienteDetalle, error) {
	var c entity.ClienteDetalle
	if err := row.Scan(&c.ID, &c.Nombre, &c.Telefono, &c.Correo, &c.GrupoID, &c.TipoClienteID,
		&c.GrupoClave, &c.TipoNombre, &c.Descuento); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*entity.ClienteDetalle, error) {
	c, err := scanCliente(r.q.QueryRow(ctx, clientSelect+` WHERE c.id_cliente = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get cliente", err)
	}
	return c, nil
}

// List lista clientes por nombre con paginación.
func (r *ClientRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.ClienteDetalle, error) {
	rows, err := r.q.Query(ctx, clientSelect+`
		WHERE ($1::text = '' OR c.nombre_cliente ILIKE '%' || $1 || '%')
		ORDER BY c.nombre_cliente LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, mapError("list clientes", err)
	}
	defer rows.Close()
	var list []*entity.ClienteDetalle
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, c)
	}
	return list, mapError("list clientes", rows.Err())
}
