package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

var _ repository.FolioRepository = (*FolioRepo)(nil)

// FolioRepo secuencia de folios sobre folio_sequence. Pensado para usarse dentro de una tx.
type FolioRepo struct {
	q Querier
}

// NewFolioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFolioRepository(q Querier) *FolioRepo {
	return &FolioRepo{q: q}
}

// LockSequence lee next_val con FOR UPDATE; si la fila no existe la inicializa en 1.
func (r *FolioRepo) LockSequence(ctx context.Context) (int64, error) {
	const query = `SELECT next_val FROM folio_sequence WHERE id = 1 FOR UPDATE`
	var next int64
	err := r.q.QueryRow(ctx, query).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO folio_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`); err != nil {
			return 0, mapError("init folio sequence", err)
		}
		err = r.q.QueryRow(ctx, query).Scan(&next)
	}
	if err != nil {
		return 0, mapError("lock folio sequence", err)
	}
	return next, nil
}

// LowestFreeFolio busca el menor folio en [1, below) sin orden activa (guardada o registrada) ni factura.
func (r *FolioRepo) LowestFreeFolio(ctx context.Context, below int64) (int64, bool, error) {
	if below <= 1 {
		return 0, false, nil
	}
	const query = `
		SELECT s.f
		FROM generate_series(1, $1::int - 1) AS s(f)
		WHERE NOT EXISTS (SELECT 1 FROM ordenes_guardadas o WHERE o.folio_numero = s.f AND o.activo)
		  AND NOT EXISTS (SELECT 1 FROM factura fa WHERE fa.folio_numero = s.f)
		ORDER BY s.f
		LIMIT 1`
	var folio int64
	err := r.q.QueryRow(ctx, query, below).Scan(&folio)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapError("lowest free folio", err)
	}
	return folio, true, nil
}

// SetNext fija el siguiente folio de la secuencia.
func (r *FolioRepo) SetNext(ctx context.Context, next int64) error {
	if _, err := r.q.Exec(ctx, `UPDATE folio_sequence SET next_val = $1 WHERE id = 1`, next); err != nil {
		return mapError("advance folio sequence", err)
	}
	return nil
}

// Invoiced indica si alguna factura ya usa el folio.
func (r *FolioRepo) Invoiced(ctx context.Context, folio int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM factura WHERE folio_numero = $1)`, folio).Scan(&exists)
	if err != nil {
		return false, mapError("folio invoiced", err)
	}
	return exists, nil
}

// InUse indica si el folio tiene una orden activa (guardada o registrada) o una factura.
func (r *FolioRepo) InUse(ctx context.Context, folio int64) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM ordenes_guardadas WHERE folio_numero = $1 AND activo)
		    OR EXISTS (SELECT 1 FROM factura WHERE folio_numero = $1)`
	var used bool
	if err := r.q.QueryRow(ctx, query, folio).Scan(&used); err != nil {
		return false, mapError("folio in use", err)
	}
	return used, nil
}
