package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus estado del ciclo de vida de una cotización.
type QuoteStatus string

// Estados de una cotización.
const (
	QuoteStatusDraft    QuoteStatus = "draft"    // en edición, no enviada
	QuoteStatusSent     QuoteStatus = "sent"     // enviada al cliente, sin respuesta
	QuoteStatusAccepted QuoteStatus = "accepted" // aceptada (ganada)
	QuoteStatusRejected QuoteStatus = "rejected" // rechazada (perdida)
)

// Valid indica si el estado es uno de los cuatro reconocidos.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// Quote representa la cabecera de una cotización.
type Quote struct {
	ID         string
	Number     string // consecutivo visible, ej: "Q-2024-0001"
	CustomerID string
	Status     QuoteStatus
	Subtotal   decimal.Decimal
	TaxRate    decimal.Decimal // tasa de impuesto (0.10 = 10%)
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsRevenueEligible indica si la cotización cuenta para ingresos, promedios y tendencias.
// Solo las cotizaciones aceptadas o enviadas generan ingreso; borradores y rechazadas
// cuentan únicamente en métricas de conteo.
func (q *Quote) IsRevenueEligible() bool {
	return q.Status == QuoteStatusAccepted || q.Status == QuoteStatusSent
}
