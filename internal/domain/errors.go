package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
	ErrIntegrityViolation = errors.New("violación de integridad")
	ErrPermissionDenied   = errors.New("permiso denegado")
	ErrOverpayment        = errors.New("el pago excede el saldo de la deuda")
	ErrIllegalState       = errors.New("operación no permitida en el estado actual")
)

// Motivos legibles por máquina que acompañan a ErrPermissionDenied.
const (
	ReasonSpecialRequiresAdmin = "special-requires-admin"
	ReasonAdminOnly            = "admin-only"
	ReasonNotOwner             = "not-owner"
)

// PermissionError es un ErrPermissionDenied con su motivo.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return ErrPermissionDenied.Error() + ": " + e.Reason
}

// Is permite errors.Is(err, ErrPermissionDenied).
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// PermissionReason extrae el motivo de un error de permisos; "" si no lo es.
func PermissionReason(err error) string {
	var pe *PermissionError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}
