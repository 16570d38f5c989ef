package entity

import "github.com/shopspring/decimal"

// Producto del catálogo. EsEspecial exige re-autenticación de administrador para
// darlo de alta, editarlo, eliminarlo o venderlo por parte de un no administrador.
type Producto struct {
	ID         int64
	Nombre     string
	Unidad     string
	Stock      decimal.Decimal
	EsEspecial bool
}

// PrecioGrupo precio base de un producto para un grupo. La ausencia de fila
// significa que el producto no se vende a ese grupo.
type PrecioGrupo struct {
	GrupoID    int64
	ProductoID int64
	PrecioBase decimal.Decimal
}
