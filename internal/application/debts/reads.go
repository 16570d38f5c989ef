package debts

import (
	"context"
	"fmt"
	"time"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// ClientsWithDebt estado de cuenta de los clientes con saldo pendiente.
func (l *Ledger) ClientsWithDebt(ctx context.Context) ([]*entity.EstadoCuentaCliente, error) {
	return l.debts.ClientsWithDebt(ctx)
}

// ClientDebts deudas del cliente, pagadas o no.
func (l *Ledger) ClientDebts(ctx context.Context, clientID int64) ([]*entity.DeudaDetallada, error) {
	return l.debts.ClientDebts(ctx, clientID)
}

// Debt una deuda con folio y cliente.
func (l *Ledger) Debt(ctx context.Context, id int64) (*entity.DeudaDetallada, error) {
	d, err := l.debts.Detailed(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("deuda %d: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

// Stats agregados de cobranza.
func (l *Ledger) Stats(ctx context.Context) (*entity.EstadisticasDeuda, error) {
	return l.debts.Stats(ctx)
}

// PaymentEvents abonos registrados en la bitácora de la deuda, en orden.
func (l *Ledger) PaymentEvents(d *entity.Deuda) []entity.PaymentEvent {
	return entity.ParsePaymentLog(d.Descripcion, l.now().Location())
}

// PaymentHistory deudas con abonos. Con Desde/Hasta solo cuentan los abonos dentro del rango
// (Hasta incluye todo ese día) y se omiten las deudas sin abonos en él.
func (l *Ledger) PaymentHistory(ctx context.Context, f entity.FiltroHistorialPagos) ([]*entity.PagoHistorial, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Desde != nil && f.Hasta != nil && f.Hasta.Before(*f.Desde) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	rows, err := l.debts.PaymentHistory(ctx, f)
	if err != nil {
		return nil, err
	}
	ranged := f.Desde != nil || f.Hasta != nil
	var end time.Time
	if f.Hasta != nil {
		end = dateOnly(*f.Hasta).AddDate(0, 0, 1)
	}
	out := make([]*entity.PagoHistorial, 0, len(rows))
	for _, row := range rows {
		var events []entity.PaymentEvent
		for _, e := range entity.ParsePaymentLog(row.Descripcion, l.now().Location()) {
			if f.Desde != nil && e.Fecha.Before(dateOnly(*f.Desde)) {
				continue
			}
			if f.Hasta != nil && !e.Fecha.Before(end) {
				continue
			}
			events = append(events, e)
		}
		if ranged && len(events) == 0 {
			continue
		}
		row.Eventos = events
		out = append(out, row)
		if len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
