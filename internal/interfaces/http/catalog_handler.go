package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/disfruleg/disfruleg-api/internal/application/dto"
	"github.com/disfruleg/disfruleg-api/internal/application/pricing"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	dpricing "github.com/disfruleg/disfruleg-api/internal/domain/pricing"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// Catalog productos y clientes.
type Catalog interface {
	Product(ctx context.Context, id int64) (*entity.Producto, error)
	Products(ctx context.Context, search string, page dto.PageRequest) ([]*entity.Producto, error)
	CreateProduct(ctx context.Context, p authz.Principal, in dto.CreateProductRequest, elevated bool) (*entity.Producto, error)
	UpdateProduct(ctx context.Context, p authz.Principal, id int64, in dto.UpdateProductRequest, elevated bool) (*entity.Producto, error)
	SetPrice(ctx context.Context, p authz.Principal, productID int64, in dto.SetPriceRequest) error
	Client(ctx context.Context, id int64) (*entity.ClienteDetalle, error)
	Clients(ctx context.Context, search string, page dto.PageRequest) ([]*entity.ClienteDetalle, error)
}

// PriceLookup precios por cliente.
type PriceLookup interface {
	QuoteForClient(ctx context.Context, productID, clientID int64) (dpricing.Quote, error)
	PriceListForClient(ctx context.Context, clientID int64) ([]pricing.PriceLine, error)
}

// CatalogHandler endpoints de productos, precios y clientes.
type CatalogHandler struct {
	catalog   Catalog
	prices    PriceLookup
	elevation ElevationVerifier
	log       *logger.Logger
}

// NewCatalogHandler construye el handler de catálogo.
func NewCatalogHandler(catalog Catalog, prices PriceLookup, elevation ElevationVerifier, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, prices: prices, elevation: elevation, log: log}
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        q       query  string  false  "búsqueda por nombre"
// @Param        limit   query  int     false  "límite"
// @Param        offset  query  int     false  "offset"
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.catalog.Products(c.UserContext(), c.Query("q"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProductResponse(p))
	}
	return c.JSON(dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetProduct godoc
// @Summary      Obtener producto
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	p, err := h.catalog.Product(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toProductResponse(p))
}

// CreateProduct godoc
// @Summary      Crear producto
// @Description  Un producto especial creado por un no-admin requiere X-Admin-Elevation para add_product.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Admin-Elevation  header  string                    false  "token de elevación"
// @Param        body               body    dto.CreateProductRequest  true   "producto"
// @Success      201                {object}  dto.ProductResponse
// @Failure      403                {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	p, err := h.catalog.CreateProduct(c.UserContext(), GetPrincipal(c), in, elevated(c, h.elevation, authz.OpAddProduct))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
}

// UpdateProduct godoc
// @Summary      Actualizar producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id                 path    int                       true   "id de producto"
// @Param        X-Admin-Elevation  header  string                    false  "token de elevación"
// @Param        body               body    dto.UpdateProductRequest  true   "campos a cambiar"
// @Success      200                {object}  dto.ProductResponse
// @Failure      403                {object}  dto.ErrorResponse
// @Failure      404                {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	var in dto.UpdateProductRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	p, err := h.catalog.UpdateProduct(c.UserContext(), GetPrincipal(c), id, in, elevated(c, h.elevation, authz.OpEditProduct))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toProductResponse(p))
}

// SetPrice godoc
// @Summary      Precio base de un producto para un grupo
// @Tags         products
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int                  true  "id de producto"
// @Param        body  body  dto.SetPriceRequest  true  "grupo y precio"
// @Success      204
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/prices [put]
func (h *CatalogHandler) SetPrice(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	var in dto.SetPriceRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	if err := h.catalog.SetPrice(c.UserContext(), GetPrincipal(c), id, in); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Quote godoc
// @Summary      Precio de un producto para un cliente
// @Tags         prices
// @Produce      json
// @Security     BearerAuth
// @Param        product  query  int  true  "id de producto"
// @Param        client   query  int  true  "id de cliente"
// @Success      200      {object}  dto.PriceQuoteResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/prices [get]
func (h *CatalogHandler) Quote(c *fiber.Ctx) error {
	productID := int64(c.QueryInt("product", 0))
	clientID := int64(c.QueryInt("client", 0))
	if productID <= 0 || clientID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product y client son requeridos"})
	}
	q, err := h.prices.QuoteForClient(c.UserContext(), productID, clientID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toQuoteResponse(productID, clientID, q))
}

// ClientPrices godoc
// @Summary      Lista de precios de un cliente
// @Tags         prices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de cliente"
// @Success      200  {array}  dto.PriceQuoteResponse
// @Router       /api/clients/{id}/prices [get]
func (h *CatalogHandler) ClientPrices(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	lines, err := h.prices.PriceListForClient(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.PriceQuoteResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, toQuoteResponse(l.ProductoID, id, l.Quote))
	}
	return c.JSON(out)
}

// ListClients godoc
// @Summary      Listar clientes
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        q       query  string  false  "búsqueda por nombre"
// @Param        limit   query  int     false  "límite"
// @Param        offset  query  int     false  "offset"
// @Success      200     {array}  dto.ClientResponse
// @Router       /api/clients [get]
func (h *CatalogHandler) ListClients(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.catalog.Clients(c.UserContext(), c.Query("q"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ClientResponse, 0, len(list))
	for _, cl := range list {
		out = append(out, toClientResponse(cl))
	}
	return c.JSON(out)
}

// GetClient godoc
// @Summary      Obtener cliente
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de cliente"
// @Success      200  {object}  dto.ClientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *CatalogHandler) GetClient(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	cl, err := h.catalog.Client(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toClientResponse(cl))
}

func toProductResponse(p *entity.Producto) dto.ProductResponse {
	return dto.ProductResponse{
		ID:         p.ID,
		Nombre:     p.Nombre,
		Unidad:     p.Unidad,
		Stock:      p.Stock,
		EsEspecial: p.EsEspecial,
	}
}

func toQuoteResponse(productID, clientID int64, q dpricing.Quote) dto.PriceQuoteResponse {
	return dto.PriceQuoteResponse{
		ProductoID:  productID,
		ClienteID:   clientID,
		Base:        q.Base,
		DiscountPct: q.DiscountPct,
		DiscountAmt: q.DiscountAmt,
		Final:       q.Final,
		Vendible:    q.Sellable(),
	}
}

func toClientResponse(c *entity.ClienteDetalle) dto.ClientResponse {
	return dto.ClientResponse{
		ID:         c.ID,
		Nombre:     c.Nombre,
		Telefono:   c.Telefono,
		Correo:     c.Correo,
		GrupoID:    c.GrupoID,
		GrupoClave: c.GrupoClave,
		TipoID:     c.TipoClienteID,
		TipoNombre: c.TipoNombre,
		Descuento:  c.Descuento,
	}
}
