package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/application/dto"
	"github.com/disfruleg/disfruleg-api/internal/application/orders"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// FolioService asignación de folios.
type FolioService interface {
	NextFolio(ctx context.Context) (int64, error)
}

// SavedOrders operaciones sobre órdenes guardadas.
type SavedOrders interface {
	Load(ctx context.Context, folio int64) (*entity.SavedOrderView, error)
	Reserve(ctx context.Context, p authz.Principal, in orders.ReserveInput, elevated bool) (bool, error)
	ReserveNext(ctx context.Context, p authz.Principal, in orders.ReserveInput, elevated bool) (int64, error)
	Update(ctx context.Context, p authz.Principal, folio int64, doc json.RawMessage, total decimal.Decimal, elevated bool) error
	AddItem(ctx context.Context, p authz.Principal, folio int64, in orders.AddItemInput, elevated bool) (*orders.AddItemResult, error)
	SoftDelete(ctx context.Context, p authz.Principal, folio int64) (bool, error)
	ListActive(ctx context.Context, p authz.Principal) ([]*entity.SavedOrderView, error)
	ListHistory(ctx context.Context, p authz.Principal, limit int) ([]*entity.SavedOrderView, error)
	Duplicate(ctx context.Context, p authz.Principal, folio int64, elevated bool) (int64, error)
}

// OrderCommitter confirma una orden en factura.
type OrderCommitter interface {
	Commit(ctx context.Context, p authz.Principal, folio int64, elevated bool) (*orders.CommitResult, error)
}

// OrderHandler endpoints de folios y órdenes guardadas.
type OrderHandler struct {
	folios    FolioService
	orders    SavedOrders
	committer OrderCommitter
	elevation ElevationVerifier
	log       *logger.Logger
}

// NewOrderHandler construye el handler de órdenes.
func NewOrderHandler(folios FolioService, saved SavedOrders, committer OrderCommitter, elevation ElevationVerifier, log *logger.Logger) *OrderHandler {
	return &OrderHandler{folios: folios, orders: saved, committer: committer, elevation: elevation, log: log}
}

// NextFolio godoc
// @Summary      Siguiente folio libre
// @Description  Reutiliza el menor hueco liberado; si no hay, avanza la secuencia.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.FolioResponse
// @Router       /api/folios/next [post]
func (h *OrderHandler) NextFolio(c *fiber.Ctx) error {
	folio, err := h.folios.NextFolio(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FolioResponse{Folio: folio})
}

// ReserveNext godoc
// @Summary      Guardar orden con el siguiente folio
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ReserveOrderRequest  true  "cliente y carrito"
// @Success      201   {object}  dto.FolioResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Param        X-Admin-Elevation  header  string  false  "token de elevación para productos especiales"
// @Router       /api/orders [post]
func (h *OrderHandler) ReserveNext(c *fiber.Ctx) error {
	var in dto.ReserveOrderRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	folio, err := h.orders.ReserveNext(c.UserContext(), GetPrincipal(c), reserveInput(0, in), h.sellElevated(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FolioResponse{Folio: folio})
}

// Reserve godoc
// @Summary      Guardar orden con un folio concreto
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        folio  path  int  true  "Folio"
// @Param        body   body  dto.ReserveOrderRequest  true  "cliente y carrito"
// @Success      201    {object}  dto.FolioResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Param        X-Admin-Elevation  header  string  false  "token de elevación para productos especiales"
// @Router       /api/orders/{folio} [post]
func (h *OrderHandler) Reserve(c *fiber.Ctx) error {
	folio, ok, err := paramID(c, "folio")
	if !ok {
		return err
	}
	var in dto.ReserveOrderRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	reserved, err := h.orders.Reserve(c.UserContext(), GetPrincipal(c), reserveInput(folio, in), h.sellElevated(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !reserved {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "FOLIO_TAKEN", Message: "el folio ya está en uso"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FolioResponse{Folio: folio})
}

// List godoc
// @Summary      Órdenes guardadas activas
// @Description  Los vendedores solo ven las propias.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.SavedOrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	list, err := h.orders.ListActive(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toOrderResponses(list))
}

// History godoc
// @Summary      Historial de órdenes (incluye registradas)
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "máximo de filas"
// @Success      200    {array}  dto.SavedOrderResponse
// @Router       /api/orders/history [get]
func (h *OrderHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit inválido"})
	}
	list, err := h.orders.ListHistory(c.UserContext(), GetPrincipal(c), limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toOrderResponses(list))
}

// Get godoc
// @Summary      Cargar orden guardada
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        folio  path  int  true  "Folio"
// @Success      200    {object}  dto.SavedOrderResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/orders/{folio} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	folio, ok, err := paramID(c, "folio")
	if !ok {
		return err
	}
	o, err := h.orders.Load(c.UserContext(), folio)
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := toOrderResponse(o)
	resp.DatosCarrito = o.DatosCarrito
	return c.JSON(resp)
}

// Update godoc
// @Summary      Reemplazar el carrito de una orden
// @Tags         orders
// @Accept       json
// @Security     BearerAuth
// @Param        folio  path  int  true  "Folio"
// @Param        body   body  dto.UpdateOrderRequest  true  "carrito"
// @Success      204
// @Failure      403    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Param        X-Admin-Elevation  header  string  false  "token de elevación para productos especiales"
// @Router       /api/orders/{folio} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	folio, ok, err := paramID(c, "folio")
	if !ok {
		return err
	}
	var in dto.UpdateOrderRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	if err := h.orders.Update(c.UserContext(), GetPrincipal(c), folio, in.DatosCarrito, in.Total, h.sellElevated(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddItem godoc
// @Summary      Agregar producto a la orden
// @Description  Un producto especial vendido por un no-admin requiere X-Admin-Elevation para sell_product.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        folio              path    int                  true   "Folio"
// @Param        X-Admin-Elevation  header  string               false  "token de elevación"
// @Param        body               body    dto.AddItemRequest   true   "línea"
// @Success      200                {object}  dto.AddItemResponse
// @Failure      403                {object}  dto.ErrorResponse
// @Router       /api/orders/{folio}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	folio, ok, err := paramID(c, "folio")
	if !ok {
		return err
	}
	var in dto.AddItemRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.orders.AddItem(c.UserContext(), GetPrincipal(c), folio, orders.AddItemInput{
		ProductoID:     in.ProductoID,
		Cantidad:       in.Cantidad,
		PrecioUnitario: in.PrecioUnitario,
		SeccionID:      in.SeccionID,
	}, h.sellElevated(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.AddItemResponse{
		Key:            res.Key,
		PrecioUnitario: res.PrecioUnitario,
		Total:          res.Total,
		Items:          res.Count,
	})
}

// Delete godoc
// @Summary      Eliminar orden guardada
// @Description  Baja lógica; el folio queda libre para reutilizarse.
// @Tags         orders
// @Security     BearerAuth
// @Param        folio  path  int  true  "Folio"
// @Success      204
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/orders/{folio} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	folio, ok, err := paramID(c, "folio")
	if !ok {
		return err
	}
	deleted, err := h.orders.SoftDelete(c.UserContext(), GetPrincipal(c), folio)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Commit godoc
// @Summary      Registrar orden como factura
// @Description  Crea factura, detalle, deuda y descuenta stock en una sola transacción.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        folio  path  int  true  "Folio"
// @Success      201    {object}  dto.CommitResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Param        X-Admin-Elevation  header  string  false  "token de elevación para productos especiales"
// @Router       /api/orders/{folio}/commit [post]
func (h *OrderHandler) Commit(c *fiber.Ctx) error {
	folio, ok, err := paramID(c, "folio")
	if !ok {
		return err
	}
	res, err := h.committer.Commit(c.UserContext(), GetPrincipal(c), folio, h.sellElevated(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CommitResponse{
		FacturaID: res.InvoiceID,
		Folio:     res.Folio,
		DeudaID:   res.DebtID,
		Total:     res.Total,
	})
}

// Duplicate godoc
// @Summary      Duplicar orden en un folio nuevo
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        folio  path  int  true  "Folio"
// @Success      201    {object}  dto.FolioResponse
// @Param        X-Admin-Elevation  header  string  false  "token de elevación para productos especiales"
// @Router       /api/orders/{folio}/duplicate [post]
func (h *OrderHandler) Duplicate(c *fiber.Ctx) error {
	folio, ok, err := paramID(c, "folio")
	if !ok {
		return err
	}
	nuevo, err := h.orders.Duplicate(c.UserContext(), GetPrincipal(c), folio, h.sellElevated(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FolioResponse{Folio: nuevo})
}

// sellElevated valida X-Admin-Elevation para sell_product; el token se consume al validarse.
func (h *OrderHandler) sellElevated(c *fiber.Ctx) bool {
	return elevated(c, h.elevation, authz.OpSellProduct)
}

func reserveInput(folio int64, in dto.ReserveOrderRequest) orders.ReserveInput {
	return orders.ReserveInput{
		Folio:     folio,
		ClienteID: in.ClienteID,
		Doc:       in.DatosCarrito,
		Total:     in.Total,
	}
}

func toOrderResponse(o *entity.SavedOrderView) dto.SavedOrderResponse {
	return dto.SavedOrderResponse{
		Folio:             o.Folio,
		ClienteID:         o.ClienteID,
		NombreCliente:     o.NombreCliente,
		TipoNombre:        o.TipoNombre,
		UsuarioCreador:    o.UsuarioCreador,
		Estado:            o.Estado,
		Activo:            o.Activo,
		Total:             o.TotalEstimado,
		FacturaID:         o.FacturaID,
		FechaCreacion:     o.FechaCreacion,
		FechaModificacion: o.FechaModificacion,
	}
}

func toOrderResponses(list []*entity.SavedOrderView) []dto.SavedOrderResponse {
	out := make([]dto.SavedOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return out
}
