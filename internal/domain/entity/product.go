package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo cotizable.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal // precio unitario de lista
	Category    string
	CreatedAt   time.Time
}
