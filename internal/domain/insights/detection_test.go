package insights_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
)

// ──────────────────────────────────────────────────────────────────────────────
// Anomalías
// ──────────────────────────────────────────────────────────────────────────────

func regularQuotes(customerID string, n int, amount float64) []*entity.Quote {
	out := make([]*entity.Quote, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, quote(fmt.Sprintf("%s-%02d", customerID, i), customerID,
			entity.QuoteStatusAccepted, amount, day(2024, 1, 1).AddDate(0, 0, i)))
	}
	return out
}

func TestFindAnomalies_DatosInsuficientes(t *testing.T) {
	quotes := regularQuotes("X", 19, 100)
	quotes[0].Total = decimal.NewFromInt(100000)

	r := analyze(&insights.Snapshot{AsOf: testAsOf}).FindAnomalies(quotes)

	assert.True(t, r.InsufficientData)
	assert.Equal(t, 20, r.MinRequired)
	assert.NotNil(t, r.Anomalies)
	assert.Empty(t, r.Anomalies)
}

func TestFindAnomalies_DiezVecesElPromedio(t *testing.T) {
	quotes := regularQuotes("X", 20, 100)
	big := quote("big", "X", entity.QuoteStatusAccepted, 1000, day(2024, 2, 15))
	quotes = append(quotes, big)

	r := analyze(&insights.Snapshot{AsOf: testAsOf}).FindAnomalies(quotes)

	assert.False(t, r.InsufficientData)
	assert.Equal(t, 21, r.Evaluated)
	require.Len(t, r.Anomalies, 1)
	got := r.Anomalies[0]
	assert.Equal(t, "big", got.QuoteID)
	assert.Equal(t, insights.IssueAboveAverage, got.Issue)
	assert.Equal(t, insights.SeverityWarning, got.Severity)
	assert.Equal(t, 10.0, got.Deviation)
	assert.True(t, decimal.NewFromInt(100).Equal(got.CustomerAverage))
}

func TestFindAnomalies_MontoMuyBajo(t *testing.T) {
	quotes := regularQuotes("X", 20, 1000)
	quotes = append(quotes, quote("tiny", "X", entity.QuoteStatusSent, 50, day(2024, 2, 15)))

	r := analyze(&insights.Snapshot{AsOf: testAsOf}).FindAnomalies(quotes)

	require.Len(t, r.Anomalies, 1)
	assert.Equal(t, "tiny", r.Anomalies[0].QuoteID)
	assert.Equal(t, insights.IssueBelowAverage, r.Anomalies[0].Issue)
	assert.Equal(t, insights.SeverityInfo, r.Anomalies[0].Severity)
}

func TestFindAnomalies_HorarioInusual(t *testing.T) {
	quotes := regularQuotes("X", 20, 100)
	late := quote("late", "X", entity.QuoteStatusAccepted, 100,
		time.Date(2024, 2, 15, 22, 30, 0, 0, time.UTC))
	quotes = append(quotes, late)

	r := analyze(&insights.Snapshot{AsOf: testAsOf}).FindAnomalies(quotes)

	require.Len(t, r.Anomalies, 1)
	assert.Equal(t, insights.IssueOffHours, r.Anomalies[0].Issue)
}

func TestFindAnomalies_OrdenCronologico(t *testing.T) {
	quotes := regularQuotes("X", 20, 100)
	quotes = append(quotes,
		quote("late-big", "X", entity.QuoteStatusAccepted, 5000, time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)),
		quote("early", "X", entity.QuoteStatusAccepted, 100, time.Date(2024, 2, 1, 5, 0, 0, 0, time.UTC)),
	)

	r := analyze(&insights.Snapshot{AsOf: testAsOf}).FindAnomalies(quotes)

	require.Len(t, r.Anomalies, 3)
	assert.Equal(t, "early", r.Anomalies[0].QuoteID)
	assert.Equal(t, "late-big", r.Anomalies[1].QuoteID)
	assert.Equal(t, insights.IssueAboveAverage, r.Anomalies[1].Issue)
	assert.Equal(t, insights.IssueOffHours, r.Anomalies[2].Issue)
}

func TestFindAnomalies_ClienteSinHistorialNoSeCompara(t *testing.T) {
	quotes := regularQuotes("X", 20, 100)
	quotes = append(quotes, quote("solo", "Y", entity.QuoteStatusAccepted, 99999, day(2024, 2, 1)))

	r := analyze(&insights.Snapshot{AsOf: testAsOf}).FindAnomalies(quotes)

	assert.Empty(t, r.Anomalies)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recomendaciones
// ──────────────────────────────────────────────────────────────────────────────

func recommendSnapshot() *insights.Snapshot {
	s := &insights.Snapshot{
		AsOf: testAsOf,
		Customers: []*entity.Customer{
			customer("T", "Target", day(2023, 1, 1)),
			customer("S1", "Similar uno", day(2023, 1, 1)),
			customer("S2", "Similar dos", day(2023, 1, 1)),
			customer("D", "Distinto", day(2023, 1, 1)),
		},
		Products: []*entity.Product{
			product("P1", "Cable", "Redes", 100),
			product("P2", "Switch", "Redes", 50),
			product("P3", "Router", "Redes", 80),
			product("P4", "Rack", "Muebles", 30),
			product("P5", "Silla", "Muebles", 200),
		},
		Quotes: []*entity.Quote{
			quote("qT", "T", entity.QuoteStatusAccepted, 150, day(2024, 5, 1)),
			quote("qS1", "S1", entity.QuoteStatusAccepted, 230, day(2024, 5, 2)),
			quote("qS2", "S2", entity.QuoteStatusSent, 130, day(2024, 5, 3)),
			quote("qD", "D", entity.QuoteStatusAccepted, 200, day(2024, 5, 4)),
		},
		Items: []*entity.QuoteItem{
			item("qT", "P1", 100), item("qT", "P2", 50),
			item("qS1", "P1", 100), item("qS1", "P2", 50), item("qS1", "P3", 80),
			item("qS2", "P1", 100), item("qS2", "P4", 30),
			item("qD", "P5", 200),
		},
	}
	return s
}

func TestRecommend_OrdenPorSimilitud(t *testing.T) {
	recs := analyze(recommendSnapshot()).Recommend("T", 5)

	require.Len(t, recs, 2)
	assert.Equal(t, "P4", recs[0].ProductID, "S2 es el cliente más parecido")
	assert.Equal(t, "P3", recs[1].ProductID)
	assert.Equal(t, "Popular with 1 similar customers", recs[0].Reason)
	for _, r := range recs {
		assert.GreaterOrEqual(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
	}
}

func TestRecommend_ExcluyeProductosCotizados(t *testing.T) {
	s := recommendSnapshot()
	// Un borrador también cuenta como producto ya cotizado.
	s.Quotes = append(s.Quotes, quote("qT2", "T", entity.QuoteStatusDraft, 80, day(2024, 6, 1)))
	s.Items = append(s.Items, item("qT2", "P3", 80))

	recs := analyze(s).Recommend("T", 10)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ProductID)
	}
	assert.Equal(t, []string{"P4"}, ids)
	assert.NotContains(t, ids, "P1")
	assert.NotContains(t, ids, "P2")
}

func TestRecommend_LimiteYDeterminismo(t *testing.T) {
	a := analyze(recommendSnapshot())

	one := a.Recommend("T", 1)
	require.Len(t, one, 1)
	assert.Equal(t, "P4", one[0].ProductID)

	assert.Equal(t, a.Recommend("T", 5), a.Recommend("T", 5))
	assert.Empty(t, a.Recommend("T", 0))
}

func TestRecommend_SinHistorialEsVacio(t *testing.T) {
	s := recommendSnapshot()
	s.Customers = append(s.Customers, customer("N", "Nuevo", day(2024, 1, 1)))

	recs := analyze(s).Recommend("N", 5)

	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pronóstico
// ──────────────────────────────────────────────────────────────────────────────

func TestForecast_SinHistorialEsNeutral(t *testing.T) {
	a := analyze(&insights.Snapshot{AsOf: testAsOf})
	for _, strategy := range []insights.ForecastStrategy{insights.StrategyLinear, insights.StrategyTrend} {
		f := a.Forecast(30, strategy)
		assert.True(t, f.Amount.IsZero())
		assert.Equal(t, insights.ConfidenceLow, f.Confidence)
		assert.Equal(t, insights.ForecastUnknown, f.Trend)
	}
}

func TestForecast_HorizonteNoPositivo(t *testing.T) {
	a := analyze(&insights.Snapshot{AsOf: testAsOf, Quotes: constantSeries("X", 40, 100)})
	f := a.Forecast(0, insights.StrategyLinear)
	assert.True(t, f.Amount.IsZero())
	assert.Equal(t, insights.ConfidenceLow, f.Confidence)
}

func TestForecast_SerieConstante(t *testing.T) {
	a := analyze(&insights.Snapshot{AsOf: testAsOf, Quotes: constantSeries("X", 40, 100)})

	for _, strategy := range []insights.ForecastStrategy{insights.StrategyLinear, insights.StrategyTrend} {
		f := a.Forecast(30, strategy)
		assert.True(t, decimal.NewFromInt(3000).Equal(f.Amount), "%s: %s", strategy, f.Amount)
		assert.True(t, decimal.NewFromInt(100).Equal(f.DailyAverage))
		assert.Equal(t, insights.ForecastFlat, f.Trend)
		assert.Equal(t, insights.ConfidenceMedium, f.Confidence)
		assert.Equal(t, 40, f.ObservedDays)
	}
}

func TestForecast_SerieCreciente(t *testing.T) {
	quotes := constantSeries("X", 120, 100)
	for i, q := range quotes {
		q.Total = decimal.NewFromInt(int64(100 + 10*i))
	}
	a := analyze(&insights.Snapshot{AsOf: testAsOf, Quotes: quotes})

	linear := a.Forecast(30, insights.StrategyLinear)
	trend := a.Forecast(30, insights.StrategyTrend)

	assert.Equal(t, insights.ForecastPositive, linear.Trend)
	assert.Equal(t, insights.ConfidenceHigh, linear.Confidence)
	assert.True(t, linear.Amount.GreaterThan(decimal.NewFromInt(30*1290)))
	assert.Equal(t, insights.ForecastPositive, trend.Trend)
	assert.True(t, trend.Amount.IsPositive())
}

func TestForecast_PocosDiasConIngreso(t *testing.T) {
	a := analyze(&insights.Snapshot{AsOf: testAsOf, Quotes: constantSeries("X", 4, 100)})
	f := a.Forecast(30, insights.StrategyLinear)
	assert.True(t, f.Amount.IsZero())
	assert.Equal(t, 4, f.RevenueDays)
}

func TestParseStrategy(t *testing.T) {
	s, err := insights.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, insights.StrategyLinear, s)

	s, err = insights.ParseStrategy("Trend")
	require.NoError(t, err)
	assert.Equal(t, insights.StrategyTrend, s)

	_, err = insights.ParseStrategy("arima")
	assert.Error(t, err)
}
