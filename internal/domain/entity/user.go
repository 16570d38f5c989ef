package entity

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// User usuario del sistema. Username es la identidad que queda en usuario_creador
// y en la bitácora de pagos.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt
	Nombre       string
	Role         string
	Activo       bool
}

// IsAdmin indica si el usuario tiene rol administrador.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
