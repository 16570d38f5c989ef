// Package reports arma los documentos que se entregan al cliente: el recibo de una factura
// confirmada (PDF) y su estado de cuenta (Excel).
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// Empresa datos del negocio impresos en los documentos.
type Empresa struct {
	Nombre   string
	Telefono string
}

// ReceiptData todo lo que necesita el recibo.
type ReceiptData struct {
	Empresa Empresa
	Factura *entity.FacturaCompleta
}

// StatementData deudas y abonos de un cliente a la fecha Generado.
type StatementData struct {
	Empresa  Empresa
	Cliente  *entity.ClienteDetalle
	Deudas   []*entity.DeudaDetallada
	Pagos    []*entity.PagoHistorial
	Generado time.Time
}

// ReceiptRenderer genera el PDF del recibo.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

// StatementRenderer genera la hoja de cálculo del estado de cuenta.
type StatementRenderer interface {
	RenderStatement(ctx context.Context, data StatementData) ([]byte, error)
}

// DebtReader lecturas del libro de deudas (debts.Ledger).
type DebtReader interface {
	ClientDebts(ctx context.Context, clientID int64) ([]*entity.DeudaDetallada, error)
	PaymentHistory(ctx context.Context, f entity.FiltroHistorialPagos) ([]*entity.PagoHistorial, error)
}

// statementHistoryLimit abonos incluidos en el estado de cuenta.
const statementHistoryLimit = 1000

// ReportUseCase recibos y estados de cuenta.
type ReportUseCase struct {
	invoices  repository.InvoiceRepository
	clients   repository.ClientRepository
	debts     DebtReader
	receipt   ReceiptRenderer
	statement StatementRenderer
	empresa   Empresa
	log       *logger.Logger
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReportUseCase(
	invoices repository.InvoiceRepository,
	clients repository.ClientRepository,
	debts DebtReader,
	receipt ReceiptRenderer,
	statement StatementRenderer,
	empresa Empresa,
	log *logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		invoices:  invoices,
		clients:   clients,
		debts:     debts,
		receipt:   receipt,
		statement: statement,
		empresa:   empresa,
		log:       log,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// Receipt PDF de la factura y nombre sugerido del archivo.
//
// Retorna:
//   - domain.ErrNotFound si la factura no existe.
func (uc *ReportUseCase) Receipt(ctx context.Context, invoiceID int64) ([]byte, string, error) {
	f, err := uc.invoices.GetCompleta(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener factura: %w", err)
	}
	if f == nil {
		return nil, "", fmt.Errorf("factura %d: %w", invoiceID, domain.ErrNotFound)
	}
	pdf, err := uc.receipt.RenderReceipt(ctx, ReceiptData{Empresa: uc.empresa, Factura: f})
	if err != nil {
		uc.log.Error().Err(err).Int64("id_factura", invoiceID).Msg("no se pudo generar el recibo")
		return nil, "", err
	}
	return pdf, fmt.Sprintf("recibo_folio_%d.pdf", f.Folio), nil
}

// Statement estado de cuenta del cliente en Excel y nombre sugerido del archivo.
func (uc *ReportUseCase) Statement(ctx context.Context, clientID int64) ([]byte, string, error) {
	c, err := uc.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, "", err
	}
	if c == nil {
		return nil, "", fmt.Errorf("cliente %d: %w", clientID, domain.ErrNotFound)
	}
	deudas, err := uc.debts.ClientDebts(ctx, clientID)
	if err != nil {
		return nil, "", err
	}
	pagos, err := uc.debts.PaymentHistory(ctx, entity.FiltroHistorialPagos{ClienteID: clientID, Limit: statementHistoryLimit})
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	xlsx, err := uc.statement.RenderStatement(ctx, StatementData{
		Empresa:  uc.empresa,
		Cliente:  c,
		Deudas:   deudas,
		Pagos:    pagos,
		Generado: now,
	})
	if err != nil {
		uc.log.Error().Err(err).Int64("id_cliente", clientID).Msg("no se pudo generar el estado de cuenta")
		return nil, "", err
	}
	return xlsx, fmt.Sprintf("estado_cuenta_%d_%s.xlsx", clientID, now.Format("20060102")), nil
}
