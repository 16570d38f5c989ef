package repository

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// SavedOrderRepository puerto de ordenes_guardadas. Todas las lecturas por folio
// se refieren a la fila activa (a lo sumo una).
type SavedOrderRepository interface {
	// Create inserta la orden; folio ya activo → domain.ErrIntegrityViolation.
	Create(ctx context.Context, o *entity.SavedOrder) error
	// GetByFolio fila activa del folio; nil, nil si no existe.
	GetByFolio(ctx context.Context, folio int64) (*entity.SavedOrder, error)
	// GetView fila activa con cliente y tipo; nil, nil si no existe.
	GetView(ctx context.Context, folio int64) (*entity.SavedOrderView, error)
	// UpdateCart reemplaza carrito y total si la orden es (guardada, activa); false si no coincide.
	UpdateCart(ctx context.Context, folio int64, doc json.RawMessage, total decimal.Decimal) (bool, error)
	// Deactivate pone activo=false en la fila (guardada, activa); false si no coincide.
	Deactivate(ctx context.Context, folio int64) (bool, error)
	// ListByEstado filas activas en ese estado; creator vacío no filtra. limit ≤ 0 sin límite.
	ListByEstado(ctx context.Context, estado, creator string, limit int) ([]*entity.SavedOrderView, error)
	// MarkRegistered guardada → registrada con la factura; false si la fila no está guardada.
	MarkRegistered(ctx context.Context, folio, invoiceID int64) (bool, error)
}
