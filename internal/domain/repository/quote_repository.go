package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tirs/quota/internal/domain/entity"
)

// QuoteFilter filtros opcionales para listar cotizaciones. Los campos en cero no filtran.
type QuoteFilter struct {
	Status     entity.QuoteStatus
	CustomerID string
	MinTotal   *decimal.Decimal
	MaxTotal   *decimal.Decimal
	Since      time.Time // solo cotizaciones creadas en o después de este instante
}

// Matches indica si la cotización cumple el filtro. Los adaptadores que no pueden
// filtrar en la consulta (o los fakes de prueba) lo usan para filtrar en memoria.
func (f QuoteFilter) Matches(q *entity.Quote) bool {
	if f.Status != "" && q.Status != f.Status {
		return false
	}
	if f.CustomerID != "" && q.CustomerID != f.CustomerID {
		return false
	}
	if f.MinTotal != nil && q.Total.LessThan(*f.MinTotal) {
		return false
	}
	if f.MaxTotal != nil && q.Total.GreaterThan(*f.MaxTotal) {
		return false
	}
	if !f.Since.IsZero() && q.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// QuoteRepository define el puerto de lectura para cotizaciones y sus líneas.
type QuoteRepository interface {
	// List devuelve las cotizaciones que cumplen el filtro, ordenadas por ID.
	List(ctx context.Context, filter QuoteFilter) ([]*entity.Quote, error)
	// GetItems devuelve las líneas de una cotización.
	GetItems(ctx context.Context, quoteID string) ([]*entity.QuoteItem, error)
	// ListItems devuelve todas las líneas de todas las cotizaciones (lectura en bloque
	// para el recomendador, evita N+1 consultas).
	ListItems(ctx context.Context) ([]*entity.QuoteItem, error)
}
