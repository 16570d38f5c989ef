package dto

import "github.com/shopspring/decimal"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Nombre     string          `json:"nombre" validate:"required,min=1,max=200"`
	Unidad     string          `json:"unidad" validate:"required,max=20"`
	Stock      decimal.Decimal `json:"stock"`
	EsEspecial bool            `json:"es_especial"`
}

// UpdateProductRequest entrada para actualizar un producto; campos nil no cambian.
type UpdateProductRequest struct {
	Nombre     *string          `json:"nombre" validate:"omitempty,min=1,max=200"`
	Unidad     *string          `json:"unidad" validate:"omitempty,max=20"`
	Stock      *decimal.Decimal `json:"stock"`
	EsEspecial *bool            `json:"es_especial"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         int64           `json:"id"`
	Nombre     string          `json:"nombre"`
	Unidad     string          `json:"unidad"`
	Stock      decimal.Decimal `json:"stock"`
	EsEspecial bool            `json:"es_especial"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// SetPriceRequest precio base de un producto para un grupo.
type SetPriceRequest struct {
	GrupoID    int64           `json:"id_grupo" validate:"required,gt=0"`
	PrecioBase decimal.Decimal `json:"precio_base"`
}

// PriceQuoteResponse precio de un producto para un cliente.
type PriceQuoteResponse struct {
	ProductoID  int64           `json:"id_producto"`
	ClienteID   int64           `json:"id_cliente,omitempty"`
	Base        decimal.Decimal `json:"precio_base"`
	DiscountPct decimal.Decimal `json:"descuento"`
	DiscountAmt decimal.Decimal `json:"monto_descuento"`
	Final       decimal.Decimal `json:"precio_final"`
	Vendible    bool            `json:"vendible"`
}

// ClientResponse cliente con grupo y tipo.
type ClientResponse struct {
	ID         int64           `json:"id"`
	Nombre     string          `json:"nombre"`
	Telefono   string          `json:"telefono"`
	Correo     string          `json:"correo"`
	GrupoID    int64           `json:"id_grupo"`
	GrupoClave string          `json:"grupo"`
	TipoID     int64           `json:"id_tipo_cliente"`
	TipoNombre string          `json:"tipo"`
	Descuento  decimal.Decimal `json:"descuento"`
}
