package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrStoreUnavailable envuelve fallos de red/almacenamiento del store persistente
	// (incluye timeouts). Nunca se reintenta internamente.
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
)
