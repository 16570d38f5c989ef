package entity

import "github.com/shopspring/decimal"

// Cliente pertenece a exactamente un grupo de precios y un tipo de cliente.
type Cliente struct {
	ID            int64
	Nombre        string
	Telefono      string
	Correo        string
	GrupoID       int64
	TipoClienteID int64
}

// Grupo cohorte de precios (precio_por_grupo).
type Grupo struct {
	ID            int64
	Clave         string
	TipoClienteID int64
}

// TipoCliente nivel de descuento; Descuento es un porcentaje en [0,100].
type TipoCliente struct {
	ID        int64
	Nombre    string
	Descuento decimal.Decimal
}

// ClienteDetalle cliente con grupo y tipo resueltos (consulta de precios y pantallas).
type ClienteDetalle struct {
	Cliente
	GrupoClave string
	TipoNombre string
	Descuento  decimal.Decimal
}
