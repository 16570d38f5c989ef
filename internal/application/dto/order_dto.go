package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReserveOrderRequest reserva un folio para un cliente. DatosCarrito vacío guarda un carrito vacío;
// Total cero se calcula desde el carrito.
type ReserveOrderRequest struct {
	ClienteID    int64           `json:"id_cliente" validate:"required,gt=0"`
	DatosCarrito json.RawMessage `json:"datos_carrito"`
	Total        decimal.Decimal `json:"total_estimado"`
}

// UpdateOrderRequest reemplaza el carrito de una orden guardada.
type UpdateOrderRequest struct {
	DatosCarrito json.RawMessage `json:"datos_carrito" validate:"required"`
	Total        decimal.Decimal `json:"total_estimado"`
}

// AddItemRequest agrega un producto a la orden. PrecioUnitario nil usa el precio del cliente.
type AddItemRequest struct {
	ProductoID     int64            `json:"id_producto" validate:"required,gt=0"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	SeccionID      string           `json:"seccion_id" validate:"omitempty,max=50"`
}

// AddItemResponse estado de la orden tras agregar.
type AddItemResponse struct {
	Key            string          `json:"key"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total_estimado"`
	Items          int             `json:"items"`
}

// FolioResponse folio asignado.
type FolioResponse struct {
	Folio int64 `json:"folio"`
}

// SavedOrderResponse orden guardada con su carrito.
type SavedOrderResponse struct {
	Folio             int64           `json:"folio"`
	ClienteID         int64           `json:"id_cliente"`
	NombreCliente     string          `json:"nombre_cliente"`
	TipoNombre        string          `json:"tipo_cliente"`
	UsuarioCreador    string          `json:"usuario_creador"`
	Estado            string          `json:"estado"`
	Activo            bool            `json:"activo"`
	Total             decimal.Decimal `json:"total_estimado"`
	FacturaID         *int64          `json:"id_factura,omitempty"`
	FechaCreacion     time.Time       `json:"fecha_creacion"`
	FechaModificacion time.Time       `json:"fecha_modificacion"`
	DatosCarrito      json.RawMessage `json:"datos_carrito,omitempty"`
}

// CommitResponse factura generada al confirmar una orden.
type CommitResponse struct {
	FacturaID int64           `json:"id_factura"`
	Folio     int64           `json:"folio"`
	DeudaID   int64           `json:"id_deuda"`
	Total     decimal.Decimal `json:"total"`
}
