package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tirs/quota/internal/domain"
	"github.com/tirs/quota/internal/domain/entity"
)

// ForecastStrategy estrategia de proyección.
type ForecastStrategy string

const (
	StrategyLinear ForecastStrategy = "linear"
	StrategyTrend  ForecastStrategy = "trend"
)

// ParseStrategy interpreta el nombre de la estrategia; vacío equivale a linear.
func ParseStrategy(s string) (ForecastStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StrategyLinear):
		return StrategyLinear, nil
	case string(StrategyTrend):
		return StrategyTrend, nil
	default:
		return "", fmt.Errorf("%w: estrategia de pronóstico desconocida %q", domain.ErrInvalidInput, s)
	}
}

// Etiquetas de tendencia y confianza del pronóstico.
const (
	ForecastPositive = "Positive"
	ForecastNegative = "Negative"
	ForecastFlat     = "Flat"
	ForecastUnknown  = "Unknown"

	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// ForecastResult ingreso proyectado para los próximos HorizonDays días.
type ForecastResult struct {
	Strategy     ForecastStrategy `json:"strategy"`
	HorizonDays  int              `json:"horizon_days"`
	Amount       decimal.Decimal  `json:"forecast_amount"`
	DailyAverage decimal.Decimal  `json:"daily_average"`
	Trend        string           `json:"trend"`
	Confidence   string           `json:"confidence"`
	ObservedDays int              `json:"observed_days"`
	RevenueDays  int              `json:"revenue_days"`
}

// Forecast proyecta el ingreso elegible diario. Con historial insuficiente devuelve
// monto cero, tendencia Unknown y confianza Low.
func (a *Analysis) Forecast(horizonDays int, strategy ForecastStrategy) ForecastResult {
	if strategy == "" {
		strategy = StrategyLinear
	}
	p := a.policy.Forecast
	if horizonDays > p.MaxHorizonDays {
		horizonDays = p.MaxHorizonDays
	}
	res := ForecastResult{
		Strategy:    strategy,
		HorizonDays: horizonDays,
		Trend:       ForecastUnknown,
		Confidence:  ConfidenceLow,
	}

	series, revenueDays := dailyRevenue(a.snap.Quotes)
	res.ObservedDays = len(series)
	res.RevenueDays = revenueDays
	if horizonDays <= 0 || revenueDays < p.MinRevenueDays {
		return res
	}

	var amount float64
	var trend string
	var ok bool
	switch strategy {
	case StrategyTrend:
		amount, trend, ok = projectTrend(series, horizonDays, p)
	default:
		amount, trend, ok = projectLinear(series, horizonDays)
	}
	if !ok {
		return res
	}

	res.Amount = money(amount)
	res.DailyAverage = money(amount / float64(horizonDays))
	res.Trend = trend
	switch {
	case res.ObservedDays < p.LowConfidenceDays:
		res.Confidence = ConfidenceLow
	case res.ObservedDays <= p.HighConfidenceDays:
		res.Confidence = ConfidenceMedium
	default:
		res.Confidence = ConfidenceHigh
	}
	return res
}

// dailyRevenue serie diaria de ingreso elegible entre el primer y el último día con
// cotizaciones elegibles, con ceros en los días sin ingreso.
func dailyRevenue(quotes []*entity.Quote) (series []float64, revenueDays int) {
	eligible := chronological(eligibleQuotes(quotes))
	if len(eligible) == 0 {
		return nil, 0
	}
	first := civilDay(eligible[0].CreatedAt)
	last := civilDay(eligible[len(eligible)-1].CreatedAt)
	series = make([]float64, last-first+1)
	for _, q := range eligible {
		series[civilDay(q.CreatedAt)-first] += q.Total.InexactFloat64()
	}
	for _, v := range series {
		if v > 0 {
			revenueDays++
		}
	}
	return series, revenueDays
}

func projectLinear(series []float64, horizon int) (float64, string, bool) {
	slope, intercept := linearRegression(series)
	n := len(series)
	var amount float64
	for i := n; i < n+horizon; i++ {
		amount += math.Max(0, intercept+slope*float64(i))
	}
	return amount, trendLabel(slope), true
}

// projectTrend compara el promedio diario de la ventana reciente con la anterior y
// compone la razón acotada día a día desde el promedio reciente.
func projectTrend(series []float64, horizon int, p ForecastPolicy) (float64, string, bool) {
	window := p.TrendWindowDays
	if half := len(series) / 2; half < window {
		window = half
	}
	if window < 1 {
		return 0, "", false
	}
	n := len(series)
	recent := mean(series[n-window:])
	prior := mean(series[n-2*window : n-window])
	if prior <= 0 {
		return 0, "", false
	}

	ratio := clamp(recent/prior, p.MinGrowthRatio, p.MaxGrowthRatio)
	growth := math.Pow(ratio, 1/float64(window))
	var amount float64
	daily := recent
	for i := 0; i < horizon; i++ {
		daily *= growth
		amount += daily
	}
	return amount, trendLabel(ratio - 1), true
}

func trendLabel(direction float64) string {
	const eps = 1e-9
	switch {
	case direction > eps:
		return ForecastPositive
	case direction < -eps:
		return ForecastNegative
	default:
		return ForecastFlat
	}
}
