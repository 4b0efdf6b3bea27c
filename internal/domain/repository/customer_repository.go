package repository

import (
	"context"

	"github.com/tirs/quota/internal/domain/entity"
)

// CustomerRepository define el puerto de lectura para Customer.
// Las implementaciones son read-only: el ciclo de vida de los clientes lo controla
// la capa de persistencia de la aplicación de cotizaciones.
type CustomerRepository interface {
	// List devuelve todos los clientes ordenados por ID.
	List(ctx context.Context) ([]*entity.Customer, error)
	// GetByID devuelve el cliente o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
