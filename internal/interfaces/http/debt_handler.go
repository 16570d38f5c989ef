package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/disfruleg/disfruleg-api/internal/application/debts"
	"github.com/disfruleg/disfruleg-api/internal/application/dto"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// DebtLedger abonos y consultas de cobranza.
type DebtLedger interface {
	RecordPayment(ctx context.Context, in debts.PaymentInput) (*debts.PaymentResult, error)
	PayClientDebts(ctx context.Context, in debts.ClientPaymentInput) ([]debts.PaymentResult, error)
	ClientsWithDebt(ctx context.Context) ([]*entity.EstadoCuentaCliente, error)
	ClientDebts(ctx context.Context, clientID int64) ([]*entity.DeudaDetallada, error)
	Debt(ctx context.Context, id int64) (*entity.DeudaDetallada, error)
	Stats(ctx context.Context) (*entity.EstadisticasDeuda, error)
	PaymentEvents(d *entity.Deuda) []entity.PaymentEvent
	PaymentHistory(ctx context.Context, f entity.FiltroHistorialPagos) ([]*entity.PagoHistorial, error)
}

// DebtHandler endpoints de deudas y abonos.
type DebtHandler struct {
	ledger DebtLedger
	log    *logger.Logger
}

// NewDebtHandler construye el handler de deudas.
func NewDebtHandler(ledger DebtLedger, log *logger.Logger) *DebtHandler {
	return &DebtHandler{ledger: ledger, log: log}
}

// ClientsWithDebt godoc
// @Summary      Clientes con saldo pendiente
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.ClientBalanceResponse
// @Router       /api/debts/clients [get]
func (h *DebtHandler) ClientsWithDebt(c *fiber.Ctx) error {
	list, err := h.ledger.ClientsWithDebt(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ClientBalanceResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.ClientBalanceResponse{
			ClienteID:       e.ClienteID,
			NombreCliente:   e.NombreCliente,
			Telefono:        e.Telefono,
			DeudasAbiertas:  e.DeudasAbiertas,
			TotalDeuda:      e.TotalDeuda,
			TotalPagado:     e.TotalPagado,
			SaldoPendiente:  e.SaldoPendiente,
			DeudaMasAntigua: e.DeudaMasAntigua,
		})
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de cobranza
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DebtStatsResponse
// @Router       /api/debts/stats [get]
func (h *DebtHandler) Stats(c *fiber.Ctx) error {
	s, err := h.ledger.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.DebtStatsResponse{
		TotalPendiente:   s.TotalPendiente,
		TotalCobrado:     s.TotalCobrado,
		ClientesConDeuda: s.ClientesConDeuda,
		DeudasAbiertas:   s.DeudasAbiertas,
		DeudasPagadas:    s.DeudasPagadas,
		DeudaPromedio:    s.DeudaPromedio,
	})
}

// History godoc
// @Summary      Historial de abonos
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        client  query  int     false  "id de cliente"
// @Param        from    query  string  false  "desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "hasta, inclusive (YYYY-MM-DD)"
// @Param        limit   query  int     false  "máximo de deudas"
// @Success      200     {array}  dto.PaymentHistoryResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/debts/history [get]
func (h *DebtHandler) History(c *fiber.Ctx) error {
	var q dto.PaymentHistoryQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	f := entity.FiltroHistorialPagos{ClienteID: q.ClienteID, Limit: q.Limit}
	f.Desde = parseDay(q.Desde)
	f.Hasta = parseDay(q.Hasta)
	rows, err := h.ledger.PaymentHistory(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.PaymentHistoryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PaymentHistoryResponse{
			DeudaID:       r.DeudaID,
			ClienteID:     r.ClienteID,
			NombreCliente: r.NombreCliente,
			Folio:         r.Folio,
			Monto:         r.Monto,
			MontoPagado:   r.MontoPagado,
			Pagado:        r.Pagado,
			FechaPago:     r.FechaPago,
			Pagos:         toPaymentEvents(r.Eventos),
		})
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Deuda con su bitácora de abonos
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de deuda"
// @Success      200  {object}  dto.DebtResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/debts/{id} [get]
func (h *DebtHandler) Get(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	d, err := h.ledger.Debt(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := toDebtResponse(d)
	resp.Pagos = toPaymentEvents(h.ledger.PaymentEvents(&d.Deuda))
	return c.JSON(resp)
}

// ClientDebts godoc
// @Summary      Deudas de un cliente
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de cliente"
// @Success      200  {array}  dto.DebtResponse
// @Router       /api/clients/{id}/debts [get]
func (h *DebtHandler) ClientDebts(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	list, err := h.ledger.ClientDebts(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.DebtResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDebtResponse(d))
	}
	return c.JSON(out)
}

// RecordPayment godoc
// @Summary      Abonar a una deuda
// @Description  Un abono mayor al saldo se rechaza con 422 sin modificar la deuda.
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                 true  "id de deuda"
// @Param        body  body  dto.PaymentRequest  true  "monto y método"
// @Success      200   {object}  dto.PaymentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/debts/{id}/payments [post]
func (h *DebtHandler) RecordPayment(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	var in dto.PaymentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.ledger.RecordPayment(c.UserContext(), debts.PaymentInput{
		DebtID:    id,
		Amount:    in.Monto,
		Method:    in.Metodo,
		Reference: in.Referencia,
		Operator:  GetUsername(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toPaymentResponse(*res))
}

// PayClient godoc
// @Summary      Abonar a las deudas de un cliente
// @Description  Se aplica de la deuda más antigua a la más reciente.
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                 true  "id de cliente"
// @Param        body  body  dto.PaymentRequest  true  "monto y método"
// @Success      200   {array}   dto.PaymentResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/clients/{id}/payments [post]
func (h *DebtHandler) PayClient(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	var in dto.PaymentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	results, err := h.ledger.PayClientDebts(c.UserContext(), debts.ClientPaymentInput{
		ClientID:  id,
		Amount:    in.Monto,
		Method:    in.Metodo,
		Reference: in.Referencia,
		Operator:  GetUsername(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.PaymentResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toPaymentResponse(r))
	}
	return c.JSON(out)
}

// parseDay nil si s está vacío; el formato ya lo validó el query.
func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func toPaymentResponse(r debts.PaymentResult) dto.PaymentResponse {
	return dto.PaymentResponse{
		DeudaID:     r.DebtID,
		Abonado:     r.Applied,
		MontoPagado: r.MontoPagado,
		Saldo:       r.Saldo,
		Pagado:      r.Pagado,
	}
}

func toDebtResponse(d *entity.DeudaDetallada) dto.DebtResponse {
	return dto.DebtResponse{
		ID:             d.ID,
		ClienteID:      d.ClienteID,
		NombreCliente:  d.NombreCliente,
		FacturaID:      d.FacturaID,
		Folio:          d.Folio,
		Monto:          d.Monto,
		MontoPagado:    d.MontoPagado,
		Saldo:          d.Saldo,
		Pagado:         d.Pagado,
		FechaGenerada:  d.FechaGenerada,
		FechaPago:      d.FechaPago,
		MetodoPago:     d.MetodoPago,
		ReferenciaPago: d.ReferenciaPago,
	}
}

func toPaymentEvents(events []entity.PaymentEvent) []dto.PaymentEvent {
	out := make([]dto.PaymentEvent, 0, len(events))
	for _, e := range events {
		out = append(out, dto.PaymentEvent{
			Monto:      e.Monto,
			Metodo:     e.Metodo,
			Referencia: e.Referencia,
			Operador:   e.Operador,
			Fecha:      e.Fecha,
		})
	}
	return out
}
