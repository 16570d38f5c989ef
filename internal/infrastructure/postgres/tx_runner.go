package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// Ensure TxRunner implements repository.TxRunner.
var _ repository.TxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos ante fallos de serialización (40001/40P01) bajo REPEATABLE READ.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, log *logger.Logger) *TxRunner {
	return &TxRunner{pool: pool, log: log}
}

// Run inicia una transacción REPEATABLE READ, ejecuta fn con repos atados a la tx y hace Commit
// o Rollback. Si la base aborta por conflicto de serialización, repite fn completa.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		r.log.Warn().Err(err).Int("intento", attempt).Msg("conflicto de serialización, reintentando transacción")
	}
	return mapError("transaction", err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newTxRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// txRepos agrupa los repositorios que comparten la misma tx.
type txRepos struct {
	folios   *FolioRepo
	orders   *SavedOrderRepo
	invoices *InvoiceRepo
	debts    *DebtRepo
	products *ProductRepo
}

func newTxRepos(q Querier) *txRepos {
	return &txRepos{
		folios:   NewFolioRepository(q),
		orders:   NewSavedOrderRepository(q),
		invoices: NewInvoiceRepository(q),
		debts:    NewDebtRepository(q),
		products: NewProductRepository(q),
	}
}

func (t *txRepos) Folios() repository.FolioRepository           { return t.folios }
func (t *txRepos) SavedOrders() repository.SavedOrderRepository { return t.orders }
func (t *txRepos) Invoices() repository.InvoiceRepository       { return t.invoices }
func (t *txRepos) Debts() repository.DebtRepository             { return t.debts }
func (t *txRepos) Products() repository.ProductRepository       { return t.products }
