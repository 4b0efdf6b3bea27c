package insights

import (
	"fmt"
	"sort"
)

// Códigos de los factores de riesgo de abandono.
const (
	FactorLongInactivity  = "long_inactivity"
	FactorShortInactivity = "short_inactivity"
	FactorLowAcceptance   = "low_acceptance"
	FactorDecliningTrend  = "declining_revenue"
	FactorLowEngagement   = "low_engagement"
)

const (
	reasonHealthy          = "Healthy customer"
	reasonInsufficientData = "Insufficient data"
)

// ChurnFactor penalización aplicada al riesgo.
type ChurnFactor struct {
	Code   string `json:"code"`
	Weight int    `json:"weight"`
	Detail string `json:"detail"`
}

// ChurnResult riesgo de abandono de un cliente.
type ChurnResult struct {
	CustomerID   string        `json:"customer_id"`
	CustomerName string        `json:"customer_name,omitempty"`
	Risk         int           `json:"risk"`
	Reason       string        `json:"reason"`
	Factors      []ChurnFactor `json:"factors"`
}

// PredictChurn calcula el riesgo 0..100 sumando las penalizaciones que se cumplen.
// Reason es el factor de mayor peso; ante empate gana el primero evaluado.
func (a *Analysis) PredictChurn(customerID string) ChurnResult {
	f := a.Features(customerID)
	res := ChurnResult{
		CustomerID:   customerID,
		CustomerName: a.customerName(customerID),
		Factors:      []ChurnFactor{},
	}
	if !f.HasQuotes() {
		res.Reason = reasonInsufficientData
		return res
	}

	p := a.policy.Churn
	add := func(code string, weight int, detail string) {
		res.Factors = append(res.Factors, ChurnFactor{Code: code, Weight: weight, Detail: detail})
	}

	switch {
	case f.DaysSinceLast > p.LongInactiveDays:
		add(FactorLongInactivity, p.LongInactivePenalty, fmt.Sprintf("No activity in %d days", f.DaysSinceLast))
	case f.DaysSinceLast > p.ShortInactiveDays:
		add(FactorShortInactivity, p.ShortInactivePenalty, fmt.Sprintf("Last quote %d days ago", f.DaysSinceLast))
	}
	if f.AcceptanceRate < p.LowAcceptanceRate {
		add(FactorLowAcceptance, p.LowAcceptancePenalty,
			fmt.Sprintf("Low acceptance rate (%.0f%%)", f.AcceptanceRate*100))
	}
	if f.FirstHalfRevenue > 0 {
		change := (f.SecondHalfRevenue - f.FirstHalfRevenue) / f.FirstHalfRevenue
		if change < -p.DecliningTrendRatio {
			add(FactorDecliningTrend, p.DecliningTrendPenalty,
				fmt.Sprintf("Revenue declined %.0f%%", -change*100))
		}
	}
	if f.QuotesPer30Days < p.LowEngagementRate {
		add(FactorLowEngagement, p.LowEngagementPenalty,
			fmt.Sprintf("Low engagement (%.1f quotes per month)", f.QuotesPer30Days))
	}

	total := 0
	top := -1
	for i, factor := range res.Factors {
		total += factor.Weight
		if top < 0 || factor.Weight > res.Factors[top].Weight {
			top = i
		}
	}
	res.Risk = clampInt(total, 0, 100)
	if top < 0 {
		res.Reason = reasonHealthy
	} else {
		res.Reason = res.Factors[top].Detail
	}
	return res
}

// ChurnRisks evalúa a los clientes registrados del snapshot y devuelve los de riesgo
// estrictamente mayor que minRisk, de mayor a menor riesgo (desempate por ID).
// Las cotizaciones huérfanas (cliente inexistente) no generan filas.
func (a *Analysis) ChurnRisks(minRisk int) []ChurnResult {
	out := make([]ChurnResult, 0)
	for _, id := range a.customerIDs() {
		r := a.PredictChurn(id)
		if r.Risk > minRisk {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Risk != out[j].Risk {
			return out[i].Risk > out[j].Risk
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// HighChurnRisks atajo con el umbral de alto riesgo de la política.
func (a *Analysis) HighChurnRisks() []ChurnResult {
	return a.ChurnRisks(a.policy.Churn.HighRiskThreshold)
}
