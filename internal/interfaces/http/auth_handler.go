package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/disfruleg/disfruleg-api/internal/application/dto"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// AuthService casos de uso de sesión y desafío de administrador.
type AuthService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
	ElevateWithAdmin(ctx context.Context, requester authz.Principal, in dto.ElevateRequest) (*dto.ElevateResponse, error)
	CreateUser(ctx context.Context, p authz.Principal, in dto.CreateUserRequest) (*dto.UserResponse, error)
}

// ElevationVerifier valida el token de X-Admin-Elevation para una operación.
type ElevationVerifier interface {
	VerifyElevation(ctx context.Context, token string, p authz.Principal, op authz.Operation) bool
}

// elevated true si la petición trae una elevación vigente del usuario para op.
func elevated(c *fiber.Ctx, v ElevationVerifier, op authz.Operation) bool {
	if v == nil {
		return false
	}
	return v.VerifyElevation(c.UserContext(), c.Get(ElevationHeader), GetPrincipal(c), op)
}

// AuthHandler maneja login, elevación y alta de usuarios.
type AuthHandler struct {
	uc  AuthService
	log *logger.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	resp, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(resp)
}

// Elevate godoc
// @Summary      Autorización de administrador para una operación
// @Description  Un administrador captura sus credenciales; el token devuelto se envía en X-Admin-Elevation.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ElevateRequest  true  "admin, password, operación"
// @Success      200   {object}  dto.ElevateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/elevate [post]
func (h *AuthHandler) Elevate(c *fiber.Ctx) error {
	var in dto.ElevateRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	resp, err := h.uc.ElevateWithAdmin(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(resp)
}

// CreateUser godoc
// @Summary      Crear usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateUserRequest  true  "usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	user, err := h.uc.CreateUser(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
