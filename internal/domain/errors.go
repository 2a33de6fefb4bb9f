package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidDateRange  = errors.New("rango de fechas inválido")
	ErrSourceUnavailable = errors.New("origen de registros no disponible")
)
