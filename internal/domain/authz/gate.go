// Package authz decide si un usuario puede ejecutar una operación del núcleo.
//
// Reglas:
//   - Vender, agregar, editar o eliminar un producto especial siendo no-admin requiere
//     que un administrador se haya re-autenticado para esa operación.
//   - Las operaciones administrativas (precios, usuarios, clientes, grupos, tipos) exigen rol admin.
//   - Las operaciones sobre una orden ajena exigen ser su creador o admin.
//   - Todo lo demás se permite.
package authz

import (
	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// Operation identifica una acción sujeta a autorización.
type Operation string

const (
	OpSellProduct   Operation = "sell_product"
	OpAddProduct    Operation = "add_product"
	OpEditProduct   Operation = "edit_product"
	OpDeleteProduct Operation = "delete_product"
	OpChangePrice   Operation = "change_price"
	OpAdminUsers    Operation = "admin_users"
	OpAdminClients  Operation = "admin_clients"
	OpAdminGroups   Operation = "admin_groups"
	OpAdminTypes    Operation = "admin_types"
	OpEditOrder     Operation = "edit_order"
	OpCommitOrder   Operation = "commit_order"
	OpRecordPayment Operation = "record_payment"
)

var productOps = map[Operation]bool{
	OpSellProduct:   true,
	OpAddProduct:    true,
	OpEditProduct:   true,
	OpDeleteProduct: true,
}

var adminOps = map[Operation]bool{
	OpChangePrice:  true,
	OpAdminUsers:   true,
	OpAdminClients: true,
	OpAdminGroups:  true,
	OpAdminTypes:   true,
}

// Valid indica si op es una operación conocida.
func (op Operation) Valid() bool {
	switch op {
	case OpEditOrder, OpCommitOrder, OpRecordPayment:
		return true
	}
	return productOps[op] || adminOps[op]
}

// Principal usuario autenticado.
type Principal struct {
	UserID   int64
	Username string
	Role     string
}

// IsAdmin true si el rol es administrador.
func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

// Context datos de la operación concreta.
type Context struct {
	// ProductSpecial el producto involucrado tiene es_especial=true.
	ProductSpecial bool
	// AdminChallengePassed un administrador se re-autenticó para esta operación.
	AdminChallengePassed bool
	// Owner creador de la orden involucrada; vacío si no aplica.
	Owner string
}

// Decision resultado del gate.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err nil si se permite; *domain.PermissionError con el motivo si no.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &domain.PermissionError{Reason: d.Reason}
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Gate no tiene estado; el valor cero es utilizable.
type Gate struct{}

// May decide si p puede ejecutar op en ctx.
func (Gate) May(p Principal, op Operation, ctx Context) Decision {
	if p.IsAdmin() {
		return allow()
	}
	if adminOps[op] {
		return deny(domain.ReasonAdminOnly)
	}
	if productOps[op] && ctx.ProductSpecial && !ctx.AdminChallengePassed {
		return deny(domain.ReasonSpecialRequiresAdmin)
	}
	if ctx.Owner != "" && ctx.Owner != p.Username {
		return deny(domain.ReasonNotOwner)
	}
	return allow()
}
