package http

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/disfruleg/disfruleg-api/internal/application/dto"
	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

var validate = validator.New()

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable el primer match gana; ErrPermissionDenied va antes que ErrForbidden.
var errorTable = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrPermissionDenied, fiber.StatusForbidden, "PERMISSION_DENIED", "permiso denegado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"},
	{domain.ErrIllegalState, fiber.StatusConflict, "ILLEGAL_STATE", ""},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto, intente de nuevo"},
	{domain.ErrIntegrityViolation, fiber.StatusConflict, "INTEGRITY", "la operación viola una restricción de datos"},
	{domain.ErrOverpayment, fiber.StatusUnprocessableEntity, "OVERPAYMENT", ""},
	{domain.ErrStorageUnavailable, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "base de datos no disponible, intente más tarde"},
}

// respondError traduce un error del núcleo a status + dto.ErrorResponse. Message vacío en la
// tabla usa el texto del error (validaciones y estados, pensados para el usuario).
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		resp := dto.ErrorResponse{Code: m.code, Message: msg}
		if m.target == domain.ErrPermissionDenied {
			resp.Reason = domain.PermissionReason(err)
		}
		if m.status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("error de almacenamiento")
		}
		return c.Status(m.status).JSON(resp)
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// bindBody decodifica el cuerpo JSON en out y aplica las etiquetas validate.
// Devuelve la respuesta 400 ya escrita (ok=false) si falla.
func bindBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return validateStruct(c, out)
}

// bindQuery igual que bindBody para los parámetros de la URL.
func bindQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	return validateStruct(c, out)
}

func validateStruct(c *fiber.Ctx, out any) (bool, error) {
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		msg := "datos inválidos"
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = verrs[0].Field() + ": " + verrs[0].Tag()
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	return true, nil
}

// paramID lee un id entero positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, bool, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: name + " inválido"})
	}
	return id, true, nil
}
