package insights

import (
	"sort"
)

// HealthStatus clasificación del puntaje de salud.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "HEALTHY"
	HealthAttention HealthStatus = "ATTENTION"
	HealthAtRisk    HealthStatus = "AT RISK"
)

// HealthResult puntaje compuesto y sus componentes, todos en [0,100].
type HealthResult struct {
	CustomerID   string       `json:"customer_id"`
	CustomerName string       `json:"customer_name,omitempty"`
	Score        float64      `json:"score"`
	Status       HealthStatus `json:"status"`
	Recency      float64      `json:"recency"`
	Engagement   float64      `json:"engagement"`
	Revenue      float64      `json:"revenue"`
}

// HealthScore combina recencia, frecuencia e ingreso relativo a la población.
func (a *Analysis) HealthScore(customerID string) HealthResult {
	f := a.Features(customerID)
	res := HealthResult{
		CustomerID:   customerID,
		CustomerName: a.customerName(customerID),
		Status:       HealthAtRisk,
	}
	if !f.HasQuotes() {
		return res
	}

	p := a.policy.Health
	res.Recency = round2(clamp(100*(1-float64(f.DaysSinceLast)/float64(p.RecencyHorizonDays)), 0, 100))
	res.Engagement = round2(clamp(f.QuotesPer30Days/p.EngagementTargetPerMonth*100, 0, 100))
	res.Revenue = round2(a.revenuePercentile(f.Revenue))

	score := p.EngagementWeight*res.Engagement + p.RevenueWeight*res.Revenue + p.RecencyWeight*res.Recency
	res.Score = round2(clamp(score, 0, 100))
	res.Status = a.healthStatus(res.Score)
	return res
}

// HealthScores puntaje de los clientes registrados, de mayor a menor (desempate por ID).
func (a *Analysis) HealthScores() []HealthResult {
	out := make([]HealthResult, 0, len(a.customers))
	for _, id := range a.customerIDs() {
		out = append(out, a.HealthScore(id))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

func (a *Analysis) healthStatus(score float64) HealthStatus {
	return a.policy.Health.Status(score)
}

// Status clasifica un puntaje: HEALTHY por encima de HealthyAbove, ATTENTION desde
// AttentionFrom (ambos límites incluidos) y AT RISK por debajo.
func (p HealthPolicy) Status(score float64) HealthStatus {
	switch {
	case score > p.HealthyAbove:
		return HealthHealthy
	case score >= p.AttentionFrom:
		return HealthAttention
	default:
		return HealthAtRisk
	}
}

// revenuePercentile porcentaje de clientes con ingreso positivo cuyo ingreso es <= revenue.
// Sin ingreso → 0.
func (a *Analysis) revenuePercentile(revenue float64) float64 {
	if revenue <= 0 || len(a.revenues) == 0 {
		return 0
	}
	n := sort.Search(len(a.revenues), func(i int) bool { return a.revenues[i] > revenue })
	return float64(n) / float64(len(a.revenues)) * 100
}
