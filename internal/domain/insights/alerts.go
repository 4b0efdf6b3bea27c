package insights

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AlertType condición detectada.
type AlertType string

const (
	AlertHighValueQuote AlertType = "high_value_quote"
	AlertRevenueDrop    AlertType = "revenue_drop"
	AlertChurnRisk      AlertType = "churn_risk"
)

// AlertSeverity nivel con el que se presenta la alerta.
type AlertSeverity string

const (
	AlertSuccess AlertSeverity = "success"
	AlertWarning AlertSeverity = "warning"
	AlertDanger  AlertSeverity = "danger"
)

// Alert condición de negocio que merece atención. Solo se detecta: el envío y el
// estado leído/no leído quedan fuera del motor.
type Alert struct {
	Type       AlertType       `json:"type"`
	Severity   AlertSeverity   `json:"severity"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	CustomerID string          `json:"customer_id,omitempty"`
	QuoteID    string          `json:"quote_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Percent    float64         `json:"percent,omitempty"`
}

// AlertConditions evalúa las tres condiciones sobre el snapshot, en este orden:
//   - high_value_quote: cotización (cualquier estado) con total >= HighValueAmount creada
//     dentro de HighValueWindow antes de AsOf, en orden cronológico.
//   - revenue_drop: ingreso elegible del mes en curso vs el mes calendario anterior.
//   - churn_risk: clientes registrados sin cotizar en LongInactiveDays o más, por ID.
func (a *Analysis) AlertConditions() []Alert {
	out := make([]Alert, 0)
	out = append(out, a.highValueAlerts()...)
	if al, ok := a.revenueDropAlert(); ok {
		out = append(out, al)
	}
	out = append(out, a.inactivityAlerts()...)
	return out
}

func (a *Analysis) highValueAlerts() []Alert {
	p := a.policy.Alerts
	threshold := decimal.NewFromFloat(p.HighValueAmount)
	since := a.snap.AsOf.Add(-p.HighValueWindow)

	var out []Alert
	for _, q := range chronological(a.snap.Quotes) {
		if q.Total.LessThan(threshold) || !q.CreatedAt.After(since) {
			continue
		}
		name := a.customerName(q.CustomerID)
		if name == "" {
			name = q.CustomerID
		}
		out = append(out, Alert{
			Type:       AlertHighValueQuote,
			Severity:   AlertSuccess,
			Title:      "High-Value Quote Created",
			Message:    fmt.Sprintf("Quote %s for %s worth $%s has been created", q.Number, name, q.Total.StringFixed(2)),
			CustomerID: q.CustomerID,
			QuoteID:    q.ID,
			Amount:     q.Total.Round(2),
		})
	}
	return out
}

// revenueDropAlert compara el mes en curso (hasta AsOf) con el mes completo anterior.
func (a *Analysis) revenueDropAlert() (Alert, bool) {
	asOf := a.snap.AsOf
	y, m, _ := asOf.Date()
	thisStart := time.Date(y, m, 1, 0, 0, 0, 0, asOf.Location())
	lastStart := thisStart.AddDate(0, -1, 0)

	current, last := decimal.Zero, decimal.Zero
	for _, q := range eligibleQuotes(a.snap.Quotes) {
		created := q.CreatedAt.In(asOf.Location())
		switch {
		case !created.Before(thisStart):
			current = current.Add(q.Total)
		case !created.Before(lastStart):
			last = last.Add(q.Total)
		}
	}
	if !last.IsPositive() {
		return Alert{}, false
	}
	drop, _ := last.Sub(current).Div(last).Mul(hundred).Round(2).Float64()
	if drop <= a.policy.Alerts.RevenueDropPercent {
		return Alert{}, false
	}
	return Alert{
		Type:     AlertRevenueDrop,
		Severity: AlertWarning,
		Title:    "Revenue Drop Detected",
		Message:  fmt.Sprintf("Revenue has dropped %.1f%% compared to last month", drop),
		Amount:   current.Round(2),
		Percent:  drop,
	}, true
}

func (a *Analysis) inactivityAlerts() []Alert {
	days := a.policy.Churn.LongInactiveDays
	var out []Alert
	for _, id := range a.customerIDs() {
		f := a.Features(id)
		if !f.HasQuotes() || f.DaysSinceLast < days {
			continue
		}
		name := a.customerName(id)
		out = append(out, Alert{
			Type:       AlertChurnRisk,
			Severity:   AlertDanger,
			Title:      "Customer At Risk: " + name,
			Message:    fmt.Sprintf("Customer %s has had no activity in %d days", name, f.DaysSinceLast),
			CustomerID: id,
			Amount:     money(f.Revenue),
		})
	}
	return out
}
