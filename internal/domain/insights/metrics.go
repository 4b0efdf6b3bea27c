package insights

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tirs/quota/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// DealMetrics estadísticas de tamaño de negocio sobre cotizaciones elegibles.
type DealMetrics struct {
	Count             int             `json:"count"`
	Average           decimal.Decimal `json:"average"`
	Median            decimal.Decimal `json:"median"`
	Min               decimal.Decimal `json:"min"`
	Max               decimal.Decimal `json:"max"`
	StdDev            float64         `json:"std_dev"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AboveAverageCount int             `json:"above_average_count"`
	BelowAverageCount int             `json:"below_average_count"`
}

// WinMetrics conteos por estado y tasa de conversión. Cuenta todas las cotizaciones.
type WinMetrics struct {
	Total            int             `json:"total"`
	Accepted         int             `json:"accepted"`
	Sent             int             `json:"sent"`
	Rejected         int             `json:"rejected"`
	Draft            int             `json:"draft"`
	WinRate          float64         `json:"win_rate"` // accepted / total * 100
	AcceptedRevenue  decimal.Decimal `json:"accepted_revenue"`
	SentRevenue      decimal.Decimal `json:"sent_revenue"`
	AvgAcceptedValue decimal.Decimal `json:"avg_accepted_value"`
}

// TrendDirection dirección de la tendencia de ingresos.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// TrendResult tendencia de ingresos del portafolio.
type TrendResult struct {
	Direction             TrendDirection  `json:"trend_direction"`
	TrendPercent          float64         `json:"trend_percent"`            // promedio 2ª mitad vs 1ª mitad
	MonthOverMonthPercent float64         `json:"month_over_month_percent"` // último mes con datos vs el anterior
	LatestMonthRevenue    decimal.Decimal `json:"latest_month_revenue"`
	PreviousMonthRevenue  decimal.Decimal `json:"previous_month_revenue"`
	MonthsAnalyzed        int             `json:"months_analyzed"`
}

// eligibleQuotes filtra las cotizaciones aceptadas o enviadas.
func eligibleQuotes(quotes []*entity.Quote) []*entity.Quote {
	out := make([]*entity.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q != nil && q.IsRevenueEligible() {
			out = append(out, q)
		}
	}
	return out
}

// ComputeDealMetrics calcula promedio, mediana, extremos y total de las cotizaciones
// elegibles. Sin datos devuelve ceros.
func ComputeDealMetrics(quotes []*entity.Quote) DealMetrics {
	eligible := eligibleQuotes(quotes)
	if len(eligible) == 0 {
		return DealMetrics{}
	}

	amounts := make([]decimal.Decimal, 0, len(eligible))
	floats := make([]float64, 0, len(eligible))
	total := decimal.Zero
	for _, q := range eligible {
		amounts = append(amounts, q.Total)
		floats = append(floats, q.Total.InexactFloat64())
		total = total.Add(q.Total)
	}
	sort.SliceStable(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })

	n := len(amounts)
	avg := total.Div(decimal.NewFromInt(int64(n)))

	var median decimal.Decimal
	if n%2 == 1 {
		median = amounts[n/2]
	} else {
		median = amounts[n/2-1].Add(amounts[n/2]).Div(decimal.NewFromInt(2))
	}

	m := DealMetrics{
		Count:        n,
		Average:      avg.Round(2),
		Median:       median.Round(2),
		Min:          amounts[0].Round(2),
		Max:          amounts[n-1].Round(2),
		StdDev:       round2(stdDev(floats)),
		TotalRevenue: total.Round(2),
	}
	for _, a := range amounts {
		switch {
		case a.GreaterThan(avg):
			m.AboveAverageCount++
		case a.LessThan(avg):
			m.BelowAverageCount++
		}
	}
	return m
}

// ComputeWinMetrics cuenta cotizaciones por estado. WinRate = 0 cuando no hay cotizaciones.
func ComputeWinMetrics(quotes []*entity.Quote) WinMetrics {
	var m WinMetrics
	for _, q := range quotes {
		if q == nil {
			continue
		}
		m.Total++
		switch q.Status {
		case entity.QuoteStatusAccepted:
			m.Accepted++
			m.AcceptedRevenue = m.AcceptedRevenue.Add(q.Total)
		case entity.QuoteStatusSent:
			m.Sent++
			m.SentRevenue = m.SentRevenue.Add(q.Total)
		case entity.QuoteStatusRejected:
			m.Rejected++
		case entity.QuoteStatusDraft:
			m.Draft++
		}
	}
	if m.Total > 0 {
		m.WinRate = round2(clamp(float64(m.Accepted)/float64(m.Total)*100, 0, 100))
	}
	if m.Accepted > 0 {
		m.AvgAcceptedValue = m.AcceptedRevenue.Div(decimal.NewFromInt(int64(m.Accepted))).Round(2)
	}
	m.AcceptedRevenue = m.AcceptedRevenue.Round(2)
	m.SentRevenue = m.SentRevenue.Round(2)
	return m
}

// ComputeTrend agrupa el ingreso elegible por mes calendario y compara:
//   - MonthOverMonthPercent: los dos meses más recientes con cotizaciones.
//   - TrendPercent: ingreso mensual promedio de la segunda mitad de la serie de meses
//     vs la primera (corte en el índice n/2).
//
// Un valor previo en cero produce 0 y dirección flat.
func ComputeTrend(quotes []*entity.Quote) TrendResult {
	eligible := chronological(eligibleQuotes(quotes))
	res := TrendResult{Direction: TrendFlat}
	if len(eligible) == 0 {
		return res
	}

	monthly := make(map[int]decimal.Decimal)
	for _, q := range eligible {
		key := q.CreatedAt.Year()*12 + int(q.CreatedAt.Month()) - 1
		monthly[key] = monthly[key].Add(q.Total)
	}
	months := make([]int, 0, len(monthly))
	for k := range monthly {
		months = append(months, k)
	}
	sort.Ints(months)
	res.MonthsAnalyzed = len(months)

	latest := monthly[months[len(months)-1]]
	res.LatestMonthRevenue = latest.Round(2)
	if len(months) > 1 {
		previous := monthly[months[len(months)-2]]
		res.PreviousMonthRevenue = previous.Round(2)
		if previous.IsPositive() {
			mom, _ := latest.Sub(previous).Div(previous).Mul(hundred).Round(2).Float64()
			res.MonthOverMonthPercent = mom
		}
	}

	series := make([]decimal.Decimal, len(months))
	for i, k := range months {
		series[i] = monthly[k]
	}
	mid := len(series) / 2
	if mid == 0 {
		return res
	}
	firstMean := sumDecimals(series[:mid]).Div(decimal.NewFromInt(int64(mid)))
	secondMean := sumDecimals(series[mid:]).Div(decimal.NewFromInt(int64(len(series) - mid)))
	if !firstMean.IsPositive() {
		return res
	}
	pct, _ := secondMean.Sub(firstMean).Div(firstMean).Mul(hundred).Round(2).Float64()
	res.TrendPercent = pct
	switch {
	case pct > 0:
		res.Direction = TrendUp
	case pct < 0:
		res.Direction = TrendDown
	}
	return res
}

func sumDecimals(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
