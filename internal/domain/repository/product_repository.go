package repository

import (
	"context"

	"github.com/tirs/quota/internal/domain/entity"
)

// ProductRepository define el puerto de lectura para Product (DIP).
type ProductRepository interface {
	// List devuelve el catálogo completo ordenado por ID.
	List(ctx context.Context) ([]*entity.Product, error)
	// GetByID devuelve el producto o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
