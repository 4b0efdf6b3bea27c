package insights_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
)

// ──────────────────────────────────────────────────────────────────────────────
// Valor de vida del cliente
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomerLifetimeValue_Escenario(t *testing.T) {
	a := analyze(scenarioSnapshot())

	clv := a.CustomerLifetimeValue("A")

	// 12 cotizaciones = 3 trimestres; 25 200 / 3 = 8 400 por trimestre; 8 400 × 4 × 3 = 100 800.
	assert.Equal(t, 12, clv.QuoteCount)
	assert.True(t, decimal.NewFromInt(25200).Equal(clv.HistoricalValue), clv.HistoricalValue.String())
	assert.True(t, decimal.NewFromInt(8400).Equal(clv.QuarterlyValue), clv.QuarterlyValue.String())
	assert.True(t, decimal.NewFromInt(100800).Equal(clv.ProjectedValue), clv.ProjectedValue.String())
	assert.True(t, decimal.NewFromInt(126000).Equal(clv.LifetimeValue), clv.LifetimeValue.String())
	assert.Equal(t, 3, clv.ProjectionYears)
	assert.Equal(t, "Acme", clv.CustomerName)
}

func TestCustomerLifetimeValue_MinimoUnTrimestre(t *testing.T) {
	clv := analyze(scenarioSnapshot()).CustomerLifetimeValue("C")

	assert.True(t, decimal.NewFromInt(150).Equal(clv.QuarterlyValue))
	assert.True(t, decimal.NewFromInt(1950).Equal(clv.LifetimeValue))
}

func TestCustomerLifetimeValue_SinIngresoOSinCotizaciones(t *testing.T) {
	s := scenarioSnapshot()
	s.Customers = append(s.Customers, customer("Z", "Zeta", day(2024, 1, 1)))
	a := analyze(s)

	assert.True(t, a.CustomerLifetimeValue("B").LifetimeValue.IsZero(), "solo rechazadas")
	z := a.CustomerLifetimeValue("Z")
	assert.Zero(t, z.QuoteCount)
	assert.True(t, z.LifetimeValue.IsZero())
}

func TestLifetimeValues_OrdenDescendente(t *testing.T) {
	values := analyze(scenarioSnapshot()).LifetimeValues()

	require.Len(t, values, 3)
	assert.Equal(t, []string{"A", "C", "B"},
		[]string{values[0].CustomerID, values[1].CustomerID, values[2].CustomerID})
}

func TestSalesIntelligence_TopIncluyeCLV(t *testing.T) {
	si := analyze(scenarioSnapshot()).SalesIntelligence()

	require.NotEmpty(t, si.TopCustomers)
	assert.True(t, decimal.NewFromInt(126000).Equal(si.TopCustomers[0].LifetimeValue))
}

// ──────────────────────────────────────────────────────────────────────────────
// Condiciones de alerta
// ──────────────────────────────────────────────────────────────────────────────

var alertsAsOf = time.Date(2024, time.July, 20, 12, 0, 0, 0, time.UTC)

func alertsSnapshot() *insights.Snapshot {
	return &insights.Snapshot{
		AsOf: alertsAsOf,
		Customers: []*entity.Customer{
			customer("K", "Kappa", day(2024, 1, 1)),
			customer("L", "Lambda", day(2023, 1, 1)),
			customer("M", "Mu", day(2023, 1, 1)),
			customer("N", "Nu", day(2023, 1, 1)),
		},
		Quotes: []*entity.Quote{
			quote("k1", "K", entity.QuoteStatusAccepted, 1000, day(2024, time.June, 5)),
			quote("k2", "K", entity.QuoteStatusAccepted, 1000, day(2024, time.June, 25)),
			quote("k3", "K", entity.QuoteStatusSent, 600, day(2024, time.July, 10)),
			quote("k4", "K", entity.QuoteStatusDraft, 8000, alertsAsOf.Add(-30*time.Minute)),
			quote("k5", "K", entity.QuoteStatusRejected, 9000, alertsAsOf.Add(-2*time.Hour)),
			quote("l1", "L", entity.QuoteStatusAccepted, 300, day(2024, time.March, 1)),
			quote("m1", "M", entity.QuoteStatusRejected, 10, alertsAsOf.AddDate(0, 0, -90)),
			quote("n1", "N", entity.QuoteStatusRejected, 10, alertsAsOf.AddDate(0, 0, -89)),
		},
	}
}

func TestAlertConditions_DetectaLasTresCondiciones(t *testing.T) {
	alerts := analyze(alertsSnapshot()).AlertConditions()

	require.Len(t, alerts, 4)

	high := alerts[0]
	assert.Equal(t, insights.AlertHighValueQuote, high.Type)
	assert.Equal(t, insights.AlertSuccess, high.Severity)
	assert.Equal(t, "k4", high.QuoteID, "k5 quedó fuera de la ventana de una hora")
	assert.Equal(t, "Quote Q-k4 for Kappa worth $8000.00 has been created", high.Message)

	drop := alerts[1]
	assert.Equal(t, insights.AlertRevenueDrop, drop.Type)
	assert.Equal(t, insights.AlertWarning, drop.Severity)
	assert.Equal(t, 70.0, drop.Percent, "junio 2000 → julio 600")
	assert.True(t, decimal.NewFromInt(600).Equal(drop.Amount))

	assert.Equal(t, insights.AlertChurnRisk, alerts[2].Type)
	assert.Equal(t, "L", alerts[2].CustomerID)
	assert.Equal(t, insights.AlertDanger, alerts[2].Severity)
	assert.Equal(t, "M", alerts[3].CustomerID, "exactamente 90 días sin cotizar")
}

func TestAlertConditions_CaidaIgualAlUmbralNoAlerta(t *testing.T) {
	s := &insights.Snapshot{
		AsOf:      alertsAsOf,
		Customers: []*entity.Customer{customer("K", "Kappa", day(2024, 1, 1))},
		Quotes: []*entity.Quote{
			quote("1", "K", entity.QuoteStatusAccepted, 1000, day(2024, time.June, 10)),
			quote("2", "K", entity.QuoteStatusAccepted, 800, day(2024, time.July, 10)),
		},
	}
	assert.Empty(t, analyze(s).AlertConditions(), "20% no supera el umbral de 20%")

	s.Quotes[1] = quote("2", "K", entity.QuoteStatusAccepted, 799, day(2024, time.July, 10))
	alerts := analyze(s).AlertConditions()
	require.Len(t, alerts, 1)
	assert.Equal(t, insights.AlertRevenueDrop, alerts[0].Type)
}

func TestAlertConditions_UmbralesDeLaPolitica(t *testing.T) {
	p := insights.DefaultPolicy()
	p.Alerts.HighValueAmount = 100000
	p.Alerts.RevenueDropPercent = 80
	p.Churn.LongInactiveDays = 200
	require.NoError(t, p.Validate())

	alerts := insights.NewEngine(p).Analyze(alertsSnapshot()).AlertConditions()
	assert.Empty(t, alerts)
}

func TestAlertConditions_SinDatos(t *testing.T) {
	alerts := analyze(&insights.Snapshot{AsOf: alertsAsOf}).AlertConditions()
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestPolicy_AlertasYCLVInvalidos(t *testing.T) {
	p := insights.DefaultPolicy()
	p.Alerts.RevenueDropPercent = 0
	assert.Error(t, p.Validate())

	p = insights.DefaultPolicy()
	p.Lifetime.QuotesPerQuarter = 0
	assert.Error(t, p.Validate())
}
