package repository

import "context"

// Tx repositorios atados a una misma transacción.
type Tx interface {
	Folios() FolioRepository
	SavedOrders() SavedOrderRepository
	Invoices() InvoiceRepository
	Debts() DebtRepository
	Products() ProductRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en cualquier
// otro caso (incluido panic).
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}
