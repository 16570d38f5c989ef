package dto

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en el caso de uso).
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Nombre   string `json:"nombre" validate:"omitempty,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin vendedor"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nombre   string `json:"nombre"`
	Role     string `json:"role"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT de sesión.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ElevateRequest credenciales de un administrador que autoriza una operación del usuario en sesión.
type ElevateRequest struct {
	AdminUsername string `json:"admin_username" validate:"required"`
	AdminPassword string `json:"admin_password" validate:"required"`
	Operation     string `json:"operation" validate:"required"`
}

// ElevateResponse token para la cabecera X-Admin-Elevation.
type ElevateResponse struct {
	Token     string `json:"token"`
	Operation string `json:"operation"`
	ExpiresIn int    `json:"expires_in"` // segundos
}
