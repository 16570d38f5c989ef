package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden guardada.
const (
	EstadoGuardada   = "guardada"   // editable
	EstadoRegistrada = "registrada" // convertida en factura, terminal
)

// SavedOrder carrito en curso persistido contra un folio reservado.
// Como máximo una fila activa por folio; solo (activo && guardada) admite cambios.
type SavedOrder struct {
	Folio             int64
	ClienteID         int64
	UsuarioCreador    string
	DatosCarrito      json.RawMessage
	TotalEstimado     decimal.Decimal
	Estado            string
	Activo            bool
	FacturaID         *int64
	FechaCreacion     time.Time
	FechaModificacion time.Time
}

// Editable indica si la orden acepta update.
func (o *SavedOrder) Editable() bool {
	return o != nil && o.Activo && o.Estado == EstadoGuardada
}

// OwnedBy indica si username creó la orden.
func (o *SavedOrder) OwnedBy(username string) bool {
	return o != nil && o.UsuarioCreador == username
}

// SavedOrderView orden con los datos de cliente y tipo para mostrar.
type SavedOrderView struct {
	SavedOrder
	NombreCliente string
	GrupoID       int64
	TipoClienteID int64
	TipoNombre    string
	Descuento     decimal.Decimal
}
