package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Reports documentos descargables.
type Reports interface {
	Receipt(ctx context.Context, invoiceID int64) ([]byte, string, error)
	Statement(ctx context.Context, clientID int64) ([]byte, string, error)
}

// ReportHandler descargas de recibos y estados de cuenta.
type ReportHandler struct {
	uc  Reports
	log *logger.Logger
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(uc Reports, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// Receipt godoc
// @Summary      Recibo PDF de una factura
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  int  true  "id de factura"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/receipt.pdf [get]
func (h *ReportHandler) Receipt(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	body, name, err := h.uc.Receipt(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendFile(c, mimePDF, name, body)
}

// Statement godoc
// @Summary      Estado de cuenta del cliente en Excel
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        id   path  int  true  "id de cliente"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id}/statement.xlsx [get]
func (h *ReportHandler) Statement(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}
	body, name, err := h.uc.Statement(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendFile(c, mimeXLSX, name, body)
}

func sendFile(c *fiber.Ctx, mime, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, mime)
	c.Attachment(name)
	return c.Send(body)
}
