package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/tirs/quota/internal/domain"
)

// ChurnPolicy umbrales y pesos de la regla de riesgo de abandono.
// Cada penalización se suma al riesgo cuando su condición se cumple; el total se acota a [0,100].
type ChurnPolicy struct {
	LongInactiveDays      int     // inactividad larga: más de N días sin cotizar
	LongInactivePenalty   int     // +40
	ShortInactiveDays     int     // inactividad corta: más de N días (y hasta LongInactiveDays)
	ShortInactivePenalty  int     // +20
	LowAcceptanceRate     float64 // tasa de aceptación por debajo de este valor (0.30)
	LowAcceptancePenalty  int     // +25
	DecliningTrendRatio   float64 // caída relativa de ingresos 2ª mitad vs 1ª mitad (0.10 = 10%)
	DecliningTrendPenalty int     // +15
	LowEngagementRate     float64 // cotizaciones por cada 30 días por debajo de este valor
	LowEngagementPenalty  int     // +10
	HighRiskThreshold     int     // riesgo > umbral se reporta en el dashboard (70)
}

// HealthPolicy parámetros del puntaje de salud.
// Score = EngagementWeight*engagement + RevenueWeight*revenue + RecencyWeight*recency.
type HealthPolicy struct {
	RecencyHorizonDays       int     // la recencia decae linealmente de 100 a 0 en este horizonte
	EngagementTargetPerMonth float64 // cotizaciones/30 días que equivalen a engagement 100
	EngagementWeight         float64
	RevenueWeight            float64
	RecencyWeight            float64
	HealthyAbove             float64 // score > umbral → HEALTHY
	AttentionFrom            float64 // score >= umbral → ATTENTION; por debajo → AT RISK
}

// SegmentPolicy umbrales de la segmentación en cuatro grupos (montos en la moneda de las cotizaciones).
type SegmentPolicy struct {
	VIPRevenue        float64 // ingreso mínimo para VIP
	VIPAcceptanceRate float64 // tasa de aceptación mínima para VIP
	GrowthRevenue     float64 // ingreso mínimo para Growth
	NewCustomerDays   int     // antigüedad máxima de un cliente "nuevo" (Growth)
	ActiveWindowDays  int     // ventana de actividad reciente (Active)
}

// AnomalyPolicy parámetros de detección de cotizaciones atípicas.
type AnomalyPolicy struct {
	MinQuotes         int     // por debajo de este total no se evalúa
	HighMultiplier    float64 // monto > HighMultiplier * promedio del cliente
	LowMultiplier     float64 // monto < LowMultiplier * promedio del cliente
	BusinessHourStart int     // hora (inclusive) de inicio de la jornada
	BusinessHourEnd   int     // hora (exclusive) de fin de la jornada
	Location          *time.Location
}

// RecommendPolicy parámetros del recomendador.
type RecommendPolicy struct {
	DefaultLimit  int     // n por defecto cuando el llamador no lo indica
	MaxLimit      int     // tope de n
	MinSimilarity float64 // similitud coseno mínima para considerar a otro cliente
}

// ForecastPolicy parámetros de la proyección de ingresos.
type ForecastPolicy struct {
	MinRevenueDays     int     // días distintos con ingreso necesarios para proyectar
	TrendWindowDays    int     // ventana de comparación de la estrategia "trend"
	MinGrowthRatio     float64 // cota inferior del ratio reciente/previo
	MaxGrowthRatio     float64 // cota superior del ratio reciente/previo
	LowConfidenceDays  int     // < N días observados → Low
	HighConfidenceDays int     // > N días observados → High (entre ambos → Medium)
	DefaultHorizonDays int
	MaxHorizonDays     int
}

// LifetimePolicy proyección del valor de vida del cliente (CLV).
// CLV = histórico + (histórico / max(cotizaciones/QuotesPerQuarter, 1)) * 4 * ProjectionYears.
type LifetimePolicy struct {
	QuotesPerQuarter float64 // cotizaciones que equivalen a un trimestre de relación
	ProjectionYears  int
}

// AlertPolicy umbrales de las condiciones de alerta.
type AlertPolicy struct {
	HighValueAmount    float64       // cotización >= monto → high_value_quote
	HighValueWindow    time.Duration // solo cotizaciones creadas dentro de la ventana previa a AsOf
	RevenueDropPercent float64       // caída del mes en curso vs el anterior, en %, que dispara revenue_drop
}

// Policy agrupa todas las políticas de puntuación del motor.
// Los valores son parámetros de negocio ajustables, no resultados de un modelo entrenado.
type Policy struct {
	Churn     ChurnPolicy
	Health    HealthPolicy
	Segment   SegmentPolicy
	Anomaly   AnomalyPolicy
	Recommend RecommendPolicy
	Forecast  ForecastPolicy
	Lifetime  LifetimePolicy
	Alerts    AlertPolicy
}

// DefaultPolicy devuelve los umbrales por defecto.
func DefaultPolicy() Policy {
	return Policy{
		Churn: ChurnPolicy{
			LongInactiveDays:      90,
			LongInactivePenalty:   40,
			ShortInactiveDays:     15,
			ShortInactivePenalty:  20,
			LowAcceptanceRate:     0.30,
			LowAcceptancePenalty:  25,
			DecliningTrendRatio:   0.10,
			DecliningTrendPenalty: 15,
			LowEngagementRate:     1.0,
			LowEngagementPenalty:  10,
			HighRiskThreshold:     70,
		},
		Health: HealthPolicy{
			RecencyHorizonDays:       180,
			EngagementTargetPerMonth: 2,
			EngagementWeight:         0.3,
			RevenueWeight:            0.5,
			RecencyWeight:            0.2,
			HealthyAbove:             75,
			AttentionFrom:            50,
		},
		Segment: SegmentPolicy{
			VIPRevenue:        100000,
			VIPAcceptanceRate: 0.6,
			GrowthRevenue:     20000,
			NewCustomerDays:   180,
			ActiveWindowDays:  90,
		},
		Anomaly: AnomalyPolicy{
			MinQuotes:         20,
			HighMultiplier:    3,
			LowMultiplier:     0.2,
			BusinessHourStart: 7,
			BusinessHourEnd:   20,
		},
		Recommend: RecommendPolicy{
			DefaultLimit:  5,
			MaxLimit:      50,
			MinSimilarity: 0,
		},
		Forecast: ForecastPolicy{
			MinRevenueDays:     5,
			TrendWindowDays:    30,
			MinGrowthRatio:     0.25,
			MaxGrowthRatio:     4,
			LowConfidenceDays:  30,
			HighConfidenceDays: 90,
			DefaultHorizonDays: 30,
			MaxHorizonDays:     365,
		},
		Lifetime: LifetimePolicy{
			QuotesPerQuarter: 4,
			ProjectionYears:  3,
		},
		Alerts: AlertPolicy{
			HighValueAmount:    5000,
			HighValueWindow:    time.Hour,
			RevenueDropPercent: 20,
		},
	}
}

// Validate verifica la coherencia de los umbrales.
func (p Policy) Validate() error {
	h := p.Health
	if sum := h.EngagementWeight + h.RevenueWeight + h.RecencyWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: los pesos de salud deben sumar 1 (suman %.4f)", domain.ErrInvalidInput, sum)
	}
	if h.EngagementWeight < 0 || h.RevenueWeight < 0 || h.RecencyWeight < 0 {
		return fmt.Errorf("%w: pesos de salud negativos", domain.ErrInvalidInput)
	}
	if h.RecencyHorizonDays <= 0 || h.EngagementTargetPerMonth <= 0 {
		return fmt.Errorf("%w: horizonte de recencia y meta de engagement deben ser positivos", domain.ErrInvalidInput)
	}
	if h.AttentionFrom > h.HealthyAbove {
		return fmt.Errorf("%w: el umbral ATTENTION no puede superar al HEALTHY", domain.ErrInvalidInput)
	}
	c := p.Churn
	if c.ShortInactiveDays >= c.LongInactiveDays {
		return fmt.Errorf("%w: la inactividad corta debe ser menor que la larga", domain.ErrInvalidInput)
	}
	s := p.Segment
	if s.VIPRevenue <= 0 || s.GrowthRevenue <= 0 {
		return fmt.Errorf("%w: los umbrales de ingreso de segmentos deben ser positivos", domain.ErrInvalidInput)
	}
	a := p.Anomaly
	if a.MinQuotes < 1 || a.HighMultiplier <= 1 || a.LowMultiplier <= 0 || a.LowMultiplier >= 1 {
		return fmt.Errorf("%w: parámetros de anomalías fuera de rango", domain.ErrInvalidInput)
	}
	if a.BusinessHourStart < 0 || a.BusinessHourEnd > 24 || a.BusinessHourStart >= a.BusinessHourEnd {
		return fmt.Errorf("%w: horario laboral inválido", domain.ErrInvalidInput)
	}
	f := p.Forecast
	if f.MinRevenueDays < 2 || f.TrendWindowDays < 1 {
		return fmt.Errorf("%w: el pronóstico necesita al menos 2 días de ingreso", domain.ErrInvalidInput)
	}
	if f.MinGrowthRatio <= 0 || f.MaxGrowthRatio < f.MinGrowthRatio {
		return fmt.Errorf("%w: cotas de crecimiento inválidas", domain.ErrInvalidInput)
	}
	if f.LowConfidenceDays > f.HighConfidenceDays {
		return fmt.Errorf("%w: umbrales de confianza invertidos", domain.ErrInvalidInput)
	}
	if p.Recommend.MaxLimit < 1 || p.Recommend.DefaultLimit < 1 || f.MaxHorizonDays < 1 || f.DefaultHorizonDays < 1 {
		return fmt.Errorf("%w: límites de recomendación/horizonte inválidos", domain.ErrInvalidInput)
	}
	if p.Lifetime.QuotesPerQuarter <= 0 || p.Lifetime.ProjectionYears < 0 {
		return fmt.Errorf("%w: parámetros de CLV inválidos", domain.ErrInvalidInput)
	}
	al := p.Alerts
	if al.HighValueAmount <= 0 || al.HighValueWindow <= 0 || al.RevenueDropPercent <= 0 || al.RevenueDropPercent > 100 {
		return fmt.Errorf("%w: umbrales de alertas fuera de rango", domain.ErrInvalidInput)
	}
	return nil
}
