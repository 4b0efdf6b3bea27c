package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tirs/quota/internal/domain/insights"
)

// QuickInsightsDTO respuesta de GET /api/insights/quick.
// Cada sección se calcula de forma aislada: si una falla se devuelve su valor neutro
// y se agrega una entrada en Unavailable.
type QuickInsightsDTO struct {
	Trends     insights.TrendResult    `json:"trends"`
	ChurnRisks []insights.ChurnResult  `json:"churn_risks"` // riesgo > umbral, con nombre del cliente
	Deals      insights.DealMetrics    `json:"deals"`
	Metrics    insights.WinMetrics     `json:"metrics"`
	Forecast   insights.ForecastResult `json:"forecast"`
	Segments   insights.Segmentation   `json:"segments"`
	Anomalies  insights.AnomalyReport  `json:"anomalies"`

	Unavailable []SectionErrorDTO `json:"unavailable"`
	GeneratedAt time.Time         `json:"generated_at"`
	Cached      bool              `json:"cached"`
}

// Degraded indica si alguna sección se reemplazó por su valor neutro.
func (q *QuickInsightsDTO) Degraded() bool { return len(q.Unavailable) > 0 }

// SectionErrorDTO marca una sección no disponible del tablero.
type SectionErrorDTO struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// DealFilterRequest filtros de GET /api/insights/deals.
type DealFilterRequest struct {
	Status     string `query:"status"`      // draft|sent|accepted|rejected
	CustomerID string `query:"customer_id"` // UUID o ID del cliente
	Since      string `query:"since"`       // YYYY-MM-DD
}

// ForecastRequest parámetros de GET /api/insights/forecast.
type ForecastRequest struct {
	Days     int    `query:"days"`     // 0 → horizonte por defecto
	Strategy string `query:"strategy"` // linear (defecto) | trend
}

// SegmentsDTO respuesta de GET /api/insights/segments.
type SegmentsDTO struct {
	Segments       insights.Segmentation `json:"segments"`
	TotalCustomers int                   `json:"total_customers"`
}

// ChurnListDTO respuesta de GET /api/insights/churn.
type ChurnListDTO struct {
	MinRisk int                    `json:"min_risk"`
	Items   []insights.ChurnResult `json:"items"`
}

// HealthListDTO respuesta de GET /api/insights/health.
type HealthListDTO struct {
	Items   []insights.HealthResult `json:"items"`
	Summary HealthSummaryDTO        `json:"summary"`
}

// HealthSummaryDTO conteo de clientes por estado de salud.
type HealthSummaryDTO struct {
	Healthy   int     `json:"healthy"`
	Attention int     `json:"attention"`
	AtRisk    int     `json:"at_risk"`
	Average   float64 `json:"average"`
}

// RecommendationsDTO respuesta de GET /api/customers/:id/recommendations.
type RecommendationsDTO struct {
	CustomerID string                    `json:"customer_id"`
	Items      []insights.Recommendation `json:"items"`
}

// LifetimeListDTO respuesta de GET /api/insights/lifetime-value.
type LifetimeListDTO struct {
	Items []insights.LifetimeValue `json:"items"`
	Total decimal.Decimal          `json:"total"`
}

// AlertsDTO respuesta de GET /api/insights/alerts.
type AlertsDTO struct {
	Items  []insights.Alert           `json:"items"`
	Total  int                        `json:"total"`
	Counts map[insights.AlertType]int `json:"counts"`
	AsOf   time.Time                  `json:"as_of"`
}
