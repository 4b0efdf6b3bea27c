package insights

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// LifetimeValue valor de vida del cliente: ingreso elegible histórico más la
// proyección de ProjectionYears años al ritmo trimestral observado.
type LifetimeValue struct {
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	QuoteCount      int             `json:"quote_count"`
	HistoricalValue decimal.Decimal `json:"historical_value"`
	QuarterlyValue  decimal.Decimal `json:"quarterly_value"`
	ProjectedValue  decimal.Decimal `json:"projected_value"`
	LifetimeValue   decimal.Decimal `json:"lifetime_value"`
	ProjectionYears int             `json:"projection_years"`
}

// CustomerLifetimeValue calcula el CLV. Cada QuotesPerQuarter cotizaciones (de
// cualquier estado) cuentan como un trimestre, con un mínimo de uno. Sin
// cotizaciones el valor es cero.
func (a *Analysis) CustomerLifetimeValue(customerID string) LifetimeValue {
	f := a.Features(customerID)
	p := a.policy.Lifetime
	res := LifetimeValue{
		CustomerID:      customerID,
		CustomerName:    a.customerName(customerID),
		QuoteCount:      f.QuoteCount,
		ProjectionYears: p.ProjectionYears,
	}
	if !f.HasQuotes() {
		return res
	}

	quarters := math.Max(float64(f.QuoteCount)/p.QuotesPerQuarter, 1)
	quarterly := f.Revenue / quarters
	projected := quarterly * 4 * float64(p.ProjectionYears)

	res.HistoricalValue = money(f.Revenue)
	res.QuarterlyValue = money(quarterly)
	res.ProjectedValue = money(projected)
	res.LifetimeValue = money(f.Revenue + projected)
	return res
}

// LifetimeValues CLV de los clientes registrados, de mayor a menor (desempate por ID).
func (a *Analysis) LifetimeValues() []LifetimeValue {
	out := make([]LifetimeValue, 0, len(a.customers))
	for _, id := range a.customerIDs() {
		out = append(out, a.CustomerLifetimeValue(id))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].LifetimeValue.Cmp(out[j].LifetimeValue); c != 0 {
			return c > 0
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
