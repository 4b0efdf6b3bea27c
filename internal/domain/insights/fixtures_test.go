package insights_test

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testAsOf = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func customer(id, name string, created time.Time) *entity.Customer {
	return &entity.Customer{ID: id, Name: name, CreatedAt: created}
}

func product(id, name, category string, price float64) *entity.Product {
	return &entity.Product{ID: id, Name: name, Category: category, Price: decimal.NewFromFloat(price)}
}

func quote(id, customerID string, status entity.QuoteStatus, total float64, at time.Time) *entity.Quote {
	amount := decimal.NewFromFloat(total)
	return &entity.Quote{
		ID:         id,
		Number:     "Q-" + id,
		CustomerID: customerID,
		Status:     status,
		Subtotal:   amount,
		Total:      amount,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

func item(quoteID, productID string, lineTotal float64) *entity.QuoteItem {
	return &entity.QuoteItem{
		ID:        quoteID + "-" + productID,
		QuoteID:   quoteID,
		ProductID: productID,
		Quantity:  1,
		UnitPrice: decimal.NewFromFloat(lineTotal),
		LineTotal: decimal.NewFromFloat(lineTotal),
	}
}

func analyze(s *insights.Snapshot) *insights.Analysis {
	return insights.NewEngine(insights.DefaultPolicy()).Analyze(s)
}

// scenarioSnapshot arma el escenario de tres clientes:
//   - A: 12 cotizaciones aceptadas en 6 meses con montos crecientes (1000..3200).
//   - B: dos cotizaciones rechazadas, la última hace más de 100 días.
//   - C: una sola cotización pequeña (150).
func scenarioSnapshot() *insights.Snapshot {
	s := &insights.Snapshot{
		AsOf: testAsOf,
		Customers: []*entity.Customer{
			customer("A", "Acme", day(2023, time.December, 1)),
			customer("B", "Beta", day(2023, time.June, 1)),
			customer("C", "Cobalto", day(2024, time.June, 1)),
		},
	}
	amount := 1000.0
	n := 0
	for m := time.January; m <= time.June; m++ {
		for _, d := range []int{5, 20} {
			n++
			s.Quotes = append(s.Quotes, quote(fmt.Sprintf("A%02d", n), "A", entity.QuoteStatusAccepted, amount, day(2024, m, d)))
			amount += 200
		}
	}
	s.Quotes = append(s.Quotes,
		quote("B01", "B", entity.QuoteStatusRejected, 5000, day(2024, time.February, 1)),
		quote("B02", "B", entity.QuoteStatusRejected, 4000, day(2024, time.March, 1)),
		quote("C01", "C", entity.QuoteStatusAccepted, 150, day(2024, time.June, 15)),
	)
	return s
}

// constantSeries cotizaciones aceptadas de amount por día durante days días.
func constantSeries(customerID string, days int, amount float64) []*entity.Quote {
	start := testAsOf.AddDate(0, 0, -days)
	out := make([]*entity.Quote, 0, days)
	for i := 0; i < days; i++ {
		at := time.Date(start.Year(), start.Month(), start.Day(), 10, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		out = append(out, quote(fmt.Sprintf("%s-%03d", customerID, i), customerID, entity.QuoteStatusAccepted, amount, at))
	}
	return out
}
