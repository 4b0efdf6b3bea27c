package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrInsufficientData = errors.New("datos insuficientes para el cálculo")
	ErrUnavailable      = errors.New("fuente de datos no disponible")
)
