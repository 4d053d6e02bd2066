package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("movimiento duplicado")
	ErrConflict     = errors.New("conflicto de concurrencia, reintentar")
)
