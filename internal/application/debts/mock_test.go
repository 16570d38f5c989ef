package debts_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

var errNotUsed = errors.New("no usado en estas pruebas")

// mockDebts libro en memoria; Run restaura las deudas si fn falla.
type mockDebts struct {
	deudas  map[int64]entity.Deuda
	history []*entity.PagoHistorial
	failAt  int // n-ésima llamada a ApplyPayment que falla; 0 nunca
	calls   int
	applied int
}

func newMockDebts() *mockDebts {
	return &mockDebts{deudas: make(map[int64]entity.Deuda)}
}

func (m *mockDebts) add(d entity.Deuda) {
	m.deudas[d.ID] = d
}

func (m *mockDebts) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	snap := make(map[int64]entity.Deuda, len(m.deudas))
	for k, v := range m.deudas {
		snap[k] = v
	}
	if err := fn(mockTx{m}); err != nil {
		m.deudas = snap
		return err
	}
	return nil
}

type mockTx struct{ m *mockDebts }

func (t mockTx) Folios() repository.FolioRepository           { return nil }
func (t mockTx) SavedOrders() repository.SavedOrderRepository { return nil }
func (t mockTx) Invoices() repository.InvoiceRepository       { return nil }
func (t mockTx) Debts() repository.DebtRepository             { return t.m }
func (t mockTx) Products() repository.ProductRepository       { return nil }

func (m *mockDebts) Create(ctx context.Context, d *entity.Deuda) error { return errNotUsed }

func (m *mockDebts) GetByID(ctx context.Context, id int64) (*entity.Deuda, error) {
	d, ok := m.deudas[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *mockDebts) GetForUpdate(ctx context.Context, id int64) (*entity.Deuda, error) {
	return m.GetByID(ctx, id)
}

func (m *mockDebts) OpenByClientForUpdate(ctx context.Context, clientID int64) ([]*entity.Deuda, error) {
	var out []*entity.Deuda
	for _, d := range m.deudas {
		if d.ClienteID == clientID && !d.Pagado {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaGenerada.Equal(out[j].FechaGenerada) {
			return out[i].FechaGenerada.Before(out[j].FechaGenerada)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockDebts) ApplyPayment(ctx context.Context, d *entity.Deuda) error {
	m.calls++
	if m.failAt > 0 && m.calls == m.failAt {
		return errors.New("conexión perdida")
	}
	m.deudas[d.ID] = *d
	m.applied++
	return nil
}

func (m *mockDebts) ClientsWithDebt(ctx context.Context) ([]*entity.EstadoCuentaCliente, error) {
	return nil, errNotUsed
}

func (m *mockDebts) ClientDebts(ctx context.Context, clientID int64) ([]*entity.DeudaDetallada, error) {
	return nil, errNotUsed
}

func (m *mockDebts) Detailed(ctx context.Context, id int64) (*entity.DeudaDetallada, error) {
	d, ok := m.deudas[id]
	if !ok {
		return nil, nil
	}
	return &entity.DeudaDetallada{Deuda: d, Saldo: d.Saldo()}, nil
}

func (m *mockDebts) PaymentHistory(ctx context.Context, f entity.FiltroHistorialPagos) ([]*entity.PagoHistorial, error) {
	return m.history, nil
}

func (m *mockDebts) Stats(ctx context.Context) (*entity.EstadisticasDeuda, error) {
	return nil, errNotUsed
}

func deuda(id, client int64, monto, pagado string, generated time.Time) entity.Deuda {
	return entity.Deuda{
		ID:            id,
		ClienteID:     client,
		FacturaID:     id + 1000,
		Monto:         decimal.RequireFromString(monto),
		MontoPagado:   decimal.RequireFromString(pagado),
		FechaGenerada: generated,
		Descripcion:   "Deuda generada por folio 1",
	}
}
