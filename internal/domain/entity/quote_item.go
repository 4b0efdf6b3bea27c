package entity

import "github.com/shopspring/decimal"

// QuoteItem representa una línea de detalle de una cotización.
type QuoteItem struct {
	ID        string
	QuoteID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal // Quantity * UnitPrice
}
