package insights

import (
	"github.com/shopspring/decimal"
	"github.com/tirs/quota/internal/domain/entity"
)

// Severity severidad de una anomalía.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

const (
	IssueAboveAverage = "significantly above customer average"
	IssueBelowAverage = "significantly below customer average"
	IssueOffHours     = "unusual creation time"
)

// Anomaly cotización marcada como atípica.
type Anomaly struct {
	QuoteID         string          `json:"quote_id"`
	QuoteNumber     string          `json:"quote_number,omitempty"`
	CustomerID      string          `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	CustomerAverage decimal.Decimal `json:"customer_average"`
	Deviation       float64         `json:"deviation"` // amount / customer_average
	Issue           string          `json:"issue"`
	Severity        Severity        `json:"severity"`
	CreatedAt       string          `json:"created_at"`
}

// AnomalyReport distingue "datos insuficientes" de "sin anomalías".
type AnomalyReport struct {
	InsufficientData bool      `json:"insufficient_data"`
	MinRequired      int       `json:"min_required"`
	Evaluated        int       `json:"evaluated"`
	Anomalies        []Anomaly `json:"anomalies"`
}

// FindAnomalies evalúa las cotizaciones dadas. El promedio de cada cliente se toma
// sobre sus otras cotizaciones elegibles del mismo conjunto. Si quotes es nil se
// usan las del snapshot.
func (a *Analysis) FindAnomalies(quotes []*entity.Quote) AnomalyReport {
	if quotes == nil {
		quotes = a.snap.Quotes
	}
	p := a.policy.Anomaly
	ordered := chronological(quotes)
	report := AnomalyReport{MinRequired: p.MinQuotes, Anomalies: []Anomaly{}}
	if len(ordered) < p.MinQuotes {
		report.InsufficientData = true
		return report
	}
	report.Evaluated = len(ordered)

	type agg struct {
		sum   decimal.Decimal
		count int64
	}
	byCustomer := make(map[string]agg)
	for _, q := range ordered {
		if !q.IsRevenueEligible() {
			continue
		}
		g := byCustomer[q.CustomerID]
		g.sum = g.sum.Add(q.Total)
		g.count++
		byCustomer[q.CustomerID] = g
	}

	loc := p.Location
	if loc == nil {
		loc = a.snap.AsOf.Location()
	}
	high := decimal.NewFromFloat(p.HighMultiplier)
	low := decimal.NewFromFloat(p.LowMultiplier)

	for _, q := range ordered {
		g := byCustomer[q.CustomerID]
		sum, count := g.sum, g.count
		if q.IsRevenueEligible() {
			sum = sum.Sub(q.Total)
			count--
		}
		avg := decimal.Zero
		if count > 0 {
			avg = sum.Div(decimal.NewFromInt(count))
		}

		base := Anomaly{
			QuoteID:         q.ID,
			QuoteNumber:     q.Number,
			CustomerID:      q.CustomerID,
			Amount:          q.Total.Round(2),
			CustomerAverage: avg.Round(2),
			CreatedAt:       q.CreatedAt.In(loc).Format("2006-01-02T15:04:05Z07:00"),
		}
		if avg.IsPositive() {
			base.Deviation = round2(q.Total.Div(avg).InexactFloat64())
			switch {
			case q.Total.GreaterThan(avg.Mul(high)):
				anomaly := base
				anomaly.Issue, anomaly.Severity = IssueAboveAverage, SeverityWarning
				report.Anomalies = append(report.Anomalies, anomaly)
			case q.Total.IsPositive() && q.Total.LessThan(avg.Mul(low)):
				anomaly := base
				anomaly.Issue, anomaly.Severity = IssueBelowAverage, SeverityInfo
				report.Anomalies = append(report.Anomalies, anomaly)
			}
		}
		if hour := q.CreatedAt.In(loc).Hour(); hour < p.BusinessHourStart || hour >= p.BusinessHourEnd {
			anomaly := base
			anomaly.Issue, anomaly.Severity = IssueOffHours, SeverityInfo
			report.Anomalies = append(report.Anomalies, anomaly)
		}
	}
	// ordered es cronológico (desempate por ID) y los issues de monto se agregan antes
	// que el de horario, así que el resultado ya sale ordenado.
	return report
}
