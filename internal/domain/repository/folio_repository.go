package repository

import "context"

// FolioRepository puerto de la secuencia de folios. Las operaciones se llaman dentro de una
// transacción: LockSequence bloquea la fila que serializa a los asignadores.
type FolioRepository interface {
	// LockSequence devuelve next_val bloqueando la fila (SELECT ... FOR UPDATE). Si no existe la crea en 1.
	LockSequence(ctx context.Context) (int64, error)
	// LowestFreeFolio menor folio en [1, below) sin orden activa ni factura; ok=false si no hay hueco.
	LowestFreeFolio(ctx context.Context, below int64) (folio int64, ok bool, err error)
	// SetNext fija next_val.
	SetNext(ctx context.Context, next int64) error
	// Invoiced indica si alguna factura usa el folio.
	Invoiced(ctx context.Context, folio int64) (bool, error)
	// InUse indica si el folio tiene orden activa o factura.
	InUse(ctx context.Context, folio int64) (bool, error)
}
