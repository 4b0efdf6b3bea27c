package insights

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopCustomer cliente con su ingreso elegible.
type TopCustomer struct {
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Revenue       decimal.Decimal `json:"revenue"`
	LifetimeValue decimal.Decimal `json:"lifetime_value"`
	QuoteCount    int             `json:"quote_count"`
}

// SalesIntelligence resumen comercial del portafolio.
type SalesIntelligence struct {
	TotalCustomers   int             `json:"total_customers"`
	TotalQuotes      int             `json:"total_quotes"`
	TotalValue       decimal.Decimal `json:"total_value"`
	WinRate          float64         `json:"win_rate"`
	AvgDealSize      decimal.Decimal `json:"avg_deal_size"`
	RecentValue      decimal.Decimal `json:"recent_value"` // últimos RecentWindowDays días
	RecentWindowDays int             `json:"recent_window_days"`
	TopCustomers     []TopCustomer   `json:"top_customers"`
	Forecast         ForecastResult  `json:"forecast"`
}

const (
	intelligenceRecentDays = 30
	intelligenceTopN       = 5
)

// SalesIntelligence calcula el resumen comercial. AvgDealSize divide el valor
// elegible entre max(aceptadas, 1).
func (a *Analysis) SalesIntelligence() SalesIntelligence {
	win := a.WinMetrics()
	res := SalesIntelligence{
		TotalCustomers:   len(a.customers),
		TotalQuotes:      win.Total,
		WinRate:          win.WinRate,
		RecentWindowDays: intelligenceRecentDays,
		TopCustomers:     make([]TopCustomer, 0, intelligenceTopN),
		Forecast:         a.Forecast(a.policy.Forecast.DefaultHorizonDays, StrategyLinear),
	}

	since := a.snap.AsOf.AddDate(0, 0, -intelligenceRecentDays)
	total, recent := decimal.Zero, decimal.Zero
	for _, q := range eligibleQuotes(a.snap.Quotes) {
		total = total.Add(q.Total)
		if !q.CreatedAt.Before(since) {
			recent = recent.Add(q.Total)
		}
	}
	res.TotalValue = total.Round(2)
	res.RecentValue = recent.Round(2)
	accepted := win.Accepted
	if accepted < 1 {
		accepted = 1
	}
	res.AvgDealSize = total.Div(decimal.NewFromInt(int64(accepted))).Round(2)

	ranked := make([]TopCustomer, 0, len(a.features))
	for _, id := range a.customerIDs() {
		f := a.Features(id)
		if f.Revenue <= 0 {
			continue
		}
		ranked = append(ranked, TopCustomer{
			CustomerID:    id,
			CustomerName:  a.customerName(id),
			Revenue:       money(f.Revenue),
			LifetimeValue: a.CustomerLifetimeValue(id).LifetimeValue,
			QuoteCount:    f.QuoteCount,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if len(ranked) > intelligenceTopN {
		ranked = ranked[:intelligenceTopN]
	}
	res.TopCustomers = append(res.TopCustomers, ranked...)
	return res
}
