package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/tirs/quota/internal/application/dto"
	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
)

// Secciones del tablero rápido.
const (
	SectionTrends     = "trends"
	SectionChurnRisks = "churn_risks"
	SectionDeals      = "deals"
	SectionMetrics    = "metrics"
	SectionForecast   = "forecast"
	SectionSegments   = "segments"
	SectionAnomalies  = "anomalies"
)

// GetQuickInsights compone el tablero: tendencia, riesgos de abandono, métricas de
// negocio, pronóstico a 30 días, segmentos y anomalías.
//
// Cada sección se calcula aislada. Si su lectura falla o su cálculo entra en pánico,
// la sección conserva su valor neutro y queda registrada en Unavailable; el resto del
// tablero se devuelve igual. Solo los tableros completos se guardan en caché.
func (uc *InsightsUseCase) GetQuickInsights(ctx context.Context) (*dto.QuickInsightsDTO, error) {
	defer uc.observe("quick", time.Now())

	snap, errs := uc.readSnapshotTolerant(ctx, partsCore)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var key string
	if errs.first() == nil {
		k, err := cacheKey("quick", snap)
		if err != nil {
			uc.log.Warn().Err(err).Msg("huella del snapshot")
		} else {
			key = k
			var cached dto.QuickInsightsDTO
			if uc.cacheGet(ctx, key, &cached) {
				cached.Cached = true
				return &cached, nil
			}
		}
	}

	a := uc.engine.Analyze(snap)
	out := neutralInsights(uc.engine, snap.AsOf)
	horizon := uc.engine.Policy().Forecast.DefaultHorizonDays

	uc.runSection(out, SectionTrends, errs.quotes, func() {
		out.Trends = a.Trend()
	})
	uc.runSection(out, SectionChurnRisks, firstErr(errs.customers, errs.quotes), func() {
		out.ChurnRisks = a.HighChurnRisks()
	})
	uc.runSection(out, SectionDeals, errs.quotes, func() {
		out.Deals = a.DealMetrics()
	})
	uc.runSection(out, SectionMetrics, errs.quotes, func() {
		out.Metrics = a.WinMetrics()
	})
	uc.runSection(out, SectionForecast, errs.quotes, func() {
		out.Forecast = a.Forecast(horizon, insights.StrategyLinear)
	})
	uc.runSection(out, SectionSegments, firstErr(errs.customers, errs.quotes), func() {
		out.Segments = a.SegmentAll(snap.Customers)
	})
	uc.runSection(out, SectionAnomalies, errs.quotes, func() {
		out.Anomalies = a.FindAnomalies(snap.Quotes)
	})

	if out.Degraded() {
		uc.log.Warn().
			Int("unavailable", len(out.Unavailable)).
			Msg("tablero rápido parcial")
	} else if key != "" {
		uc.cacheSet(ctx, key, out)
	}
	return out, nil
}

// neutralInsights tablero con el valor neutro de cada sección: el resultado del motor
// sobre un snapshot vacío.
func neutralInsights(engine *insights.Engine, asOf time.Time) *dto.QuickInsightsDTO {
	empty := engine.Analyze(&insights.Snapshot{AsOf: asOf})
	return &dto.QuickInsightsDTO{
		Trends:      empty.Trend(),
		ChurnRisks:  []insights.ChurnResult{},
		Deals:       empty.DealMetrics(),
		Metrics:     empty.WinMetrics(),
		Forecast:    empty.Forecast(engine.Policy().Forecast.DefaultHorizonDays, insights.StrategyLinear),
		Segments:    empty.SegmentAll([]*entity.Customer{}),
		Anomalies:   empty.FindAnomalies(nil),
		Unavailable: []dto.SectionErrorDTO{},
		GeneratedAt: asOf,
	}
}

// runSection ejecuta fill salvo que la lectura previa haya fallado. Un pánico dentro
// de fill se recupera y marca la sección como no disponible.
func (uc *InsightsUseCase) runSection(out *dto.QuickInsightsDTO, section string, readErr error, fill func()) {
	if readErr != nil {
		uc.markUnavailable(out, section, msgReadFailed, readErr)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			uc.markUnavailable(out, section, msgComputeFailed, fmt.Errorf("cálculo interrumpido: %v", r))
		}
	}()
	fill()
}

const (
	msgReadFailed    = "data source unavailable"
	msgComputeFailed = "computation failed"
)

func (uc *InsightsUseCase) markUnavailable(out *dto.QuickInsightsDTO, section, message string, err error) {
	uc.metrics.SectionDegraded(section)
	uc.log.Error().Err(err).Str("section", section).Msg("sección del tablero no disponible")
	out.Unavailable = append(out.Unavailable, dto.SectionErrorDTO{
		Section: section,
		Message: message,
	})
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
