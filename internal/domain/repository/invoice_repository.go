package repository

import (
	"context"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// InvoiceRepository puerto de factura y sus tablas hijas. Las escrituras solo ocurren en la
// transacción de confirmación; una factura confirmada no se modifica.
type InvoiceRepository interface {
	// Create inserta la cabecera y asigna f.ID.
	Create(ctx context.Context, f *entity.Factura) error
	// CreateSection inserta la sección y asigna s.ID.
	CreateSection(ctx context.Context, s *entity.SeccionFactura) error
	// CreateDetail inserta la línea y asigna d.ID.
	CreateDetail(ctx context.Context, d *entity.DetalleFactura) error
	SetMetadata(ctx context.Context, m entity.FacturaMetadata) error
	// GetCompleta factura con cliente, secciones, líneas y deuda; nil, nil si no existe.
	GetCompleta(ctx context.Context, id int64) (*entity.FacturaCompleta, error)
}
