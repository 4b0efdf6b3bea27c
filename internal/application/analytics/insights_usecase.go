// Package analytics contiene los casos de uso de inteligencia de clientes: leen un
// snapshot de los repositorios y delegan el cálculo en el motor puro de insights.
package analytics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tirs/quota/internal/application/dto"
	"github.com/tirs/quota/internal/application/ports"
	"github.com/tirs/quota/internal/domain"
	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
	"github.com/tirs/quota/internal/domain/repository"
	"github.com/tirs/quota/pkg/logger"
)

// InsightsUseCase orquesta lecturas, cálculo y caché de los análisis.
//
// Fuente de datos: repositorios read-only. El motor no guarda estado; la única
// memoria entre llamadas es la caché externa (InsightsCache).
type InsightsUseCase struct {
	customers repository.CustomerRepository
	products  repository.ProductRepository
	quotes    repository.QuoteRepository
	engine    *insights.Engine
	cache     ports.InsightsCache
	metrics   ports.InsightsMetrics
	log       *logger.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewInsightsUseCase construye el caso de uso. cache, metrics y log pueden ser nil.
func NewInsightsUseCase(
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	quotes repository.QuoteRepository,
	engine *insights.Engine,
	cache ports.InsightsCache,
	metrics ports.InsightsMetrics,
	log *logger.Logger,
	cacheTTL time.Duration,
) *InsightsUseCase {
	if cache == nil {
		cache = ports.NoopCache{}
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InsightsUseCase{
		customers: customers,
		products:  products,
		quotes:    quotes,
		engine:    engine,
		cache:     cache,
		metrics:   metrics,
		log:       log.Component("insights"),
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// WithClock fija el reloj usado como AsOf de los snapshots.
func (uc *InsightsUseCase) WithClock(now func() time.Time) *InsightsUseCase {
	uc.now = now
	return uc
}

// Policy política activa del motor.
func (uc *InsightsUseCase) Policy() insights.Policy { return uc.engine.Policy() }

func (uc *InsightsUseCase) observe(operation string, start time.Time) {
	uc.metrics.ObserveOperation(operation, time.Since(start))
}

// analyze carga las tablas pedidas y devuelve el análisis listo para consultar.
func (uc *InsightsUseCase) analyze(ctx context.Context, parts snapshotParts) (*insights.Analysis, error) {
	snap, err := uc.loadSnapshot(ctx, parts)
	if err != nil {
		return nil, err
	}
	return uc.engine.Analyze(snap), nil
}

// ── Métricas de negocio ──────────────────────────────────────────────────────

// GetDealMetrics estadísticas de tamaño de negocio con filtros opcionales.
func (uc *InsightsUseCase) GetDealMetrics(ctx context.Context, req dto.DealFilterRequest) (*insights.DealMetrics, error) {
	defer uc.observe("deals", time.Now())

	filter, err := parseDealFilter(req)
	if err != nil {
		return nil, err
	}
	if filter.CustomerID != "" {
		if _, err := uc.requireCustomer(ctx, filter.CustomerID); err != nil {
			return nil, err
		}
	}
	quotes, err := uc.quotes.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetDealMetrics: %w", err)
	}
	m := insights.ComputeDealMetrics(quotes)
	return &m, nil
}

// GetWinMetrics conteos por estado y tasa de conversión.
func (uc *InsightsUseCase) GetWinMetrics(ctx context.Context) (*insights.WinMetrics, error) {
	defer uc.observe("win_rate", time.Now())

	quotes, err := uc.quotes.List(ctx, repository.QuoteFilter{})
	if err != nil {
		return nil, fmt.Errorf("analytics.GetWinMetrics: %w", err)
	}
	m := insights.ComputeWinMetrics(quotes)
	return &m, nil
}

// GetTrend tendencia de ingresos del portafolio.
func (uc *InsightsUseCase) GetTrend(ctx context.Context) (*insights.TrendResult, error) {
	defer uc.observe("trend", time.Now())

	quotes, err := uc.quotes.List(ctx, repository.QuoteFilter{})
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTrend: %w", err)
	}
	t := insights.ComputeTrend(quotes)
	return &t, nil
}

// ── Clientes ─────────────────────────────────────────────────────────────────

// PredictChurn riesgo de abandono de un cliente. Cliente inexistente → domain.ErrNotFound.
func (uc *InsightsUseCase) PredictChurn(ctx context.Context, customerID string) (*insights.ChurnResult, error) {
	defer uc.observe("churn", time.Now())

	if _, err := uc.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	r := a.PredictChurn(customerID)
	return &r, nil
}

// ListChurnRisks clientes con riesgo estrictamente mayor que minRisk.
func (uc *InsightsUseCase) ListChurnRisks(ctx context.Context, minRisk int) (*dto.ChurnListDTO, error) {
	defer uc.observe("churn_list", time.Now())

	if minRisk < 0 || minRisk > 100 {
		return nil, fmt.Errorf("%w: min_risk debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	return &dto.ChurnListDTO{MinRisk: minRisk, Items: a.ChurnRisks(minRisk)}, nil
}

// HealthScore puntaje de salud de un cliente.
func (uc *InsightsUseCase) HealthScore(ctx context.Context, customerID string) (*insights.HealthResult, error) {
	defer uc.observe("health", time.Now())

	if _, err := uc.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	h := a.HealthScore(customerID)
	return &h, nil
}

// ListHealthScores puntajes de todos los clientes con un resumen por estado.
func (uc *InsightsUseCase) ListHealthScores(ctx context.Context) (*dto.HealthListDTO, error) {
	defer uc.observe("health_list", time.Now())

	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	items := a.HealthScores()
	out := &dto.HealthListDTO{Items: items}
	var sum float64
	for _, h := range items {
		sum += h.Score
		switch h.Status {
		case insights.HealthHealthy:
			out.Summary.Healthy++
		case insights.HealthAttention:
			out.Summary.Attention++
		default:
			out.Summary.AtRisk++
		}
	}
	if len(items) > 0 {
		out.Summary.Average = math.Round(sum/float64(len(items))*100) / 100
	}
	return out, nil
}

// GetSegments segmentación de todos los clientes.
func (uc *InsightsUseCase) GetSegments(ctx context.Context) (*dto.SegmentsDTO, error) {
	defer uc.observe("segments", time.Now())

	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	customers := a.Snapshot().Customers
	return &dto.SegmentsDTO{Segments: a.SegmentAll(customers), TotalCustomers: len(customers)}, nil
}

// Recommend hasta n productos para el cliente; n = 0 usa el límite por defecto.
func (uc *InsightsUseCase) Recommend(ctx context.Context, customerID string, n int) (*dto.RecommendationsDTO, error) {
	defer uc.observe("recommend", time.Now())

	p := uc.engine.Policy().Recommend
	if n == 0 {
		n = p.DefaultLimit
	}
	if n < 0 || n > p.MaxLimit {
		return nil, fmt.Errorf("%w: n debe estar entre 1 y %d", domain.ErrInvalidInput, p.MaxLimit)
	}
	if _, err := uc.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	a, err := uc.analyze(ctx, partsAll)
	if err != nil {
		return nil, err
	}
	return &dto.RecommendationsDTO{CustomerID: customerID, Items: a.Recommend(customerID, n)}, nil
}

// ── Portafolio ───────────────────────────────────────────────────────────────

// FindAnomalies cotizaciones atípicas del historial completo.
func (uc *InsightsUseCase) FindAnomalies(ctx context.Context) (*insights.AnomalyReport, error) {
	defer uc.observe("anomalies", time.Now())

	a, err := uc.analyze(ctx, partQuotes)
	if err != nil {
		return nil, err
	}
	r := a.FindAnomalies(a.Snapshot().Quotes)
	return &r, nil
}

// Forecast proyección de ingresos. Days = 0 usa el horizonte por defecto.
func (uc *InsightsUseCase) Forecast(ctx context.Context, req dto.ForecastRequest) (*insights.ForecastResult, error) {
	defer uc.observe("forecast", time.Now())

	p := uc.engine.Policy().Forecast
	days := req.Days
	if days == 0 {
		days = p.DefaultHorizonDays
	}
	if days < 0 || days > p.MaxHorizonDays {
		return nil, fmt.Errorf("%w: days debe estar entre 1 y %d", domain.ErrInvalidInput, p.MaxHorizonDays)
	}
	strategy, err := insights.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	a, err := uc.analyze(ctx, partQuotes)
	if err != nil {
		return nil, err
	}
	f := a.Forecast(days, strategy)
	return &f, nil
}

// GetSalesIntelligence resumen comercial del portafolio, cacheado por huella del snapshot.
func (uc *InsightsUseCase) GetSalesIntelligence(ctx context.Context) (*insights.SalesIntelligence, error) {
	defer uc.observe("intelligence", time.Now())

	snap, err := uc.loadSnapshot(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	key, keyErr := cacheKey("intelligence", snap)
	if keyErr == nil {
		var cached insights.SalesIntelligence
		if uc.cacheGet(ctx, key, &cached) {
			return &cached, nil
		}
	}

	si := uc.engine.Analyze(snap).SalesIntelligence()
	if keyErr == nil {
		uc.cacheSet(ctx, key, si)
	}
	return &si, nil
}

// ── Valor de cliente y alertas ───────────────────────────────────────────────

// CustomerLifetimeValue CLV de un cliente.
func (uc *InsightsUseCase) CustomerLifetimeValue(ctx context.Context, customerID string) (*insights.LifetimeValue, error) {
	defer uc.observe("lifetime_value", time.Now())

	if _, err := uc.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	v := a.CustomerLifetimeValue(customerID)
	return &v, nil
}

// ListLifetimeValues CLV de todos los clientes, de mayor a menor.
func (uc *InsightsUseCase) ListLifetimeValues(ctx context.Context) (*dto.LifetimeListDTO, error) {
	defer uc.observe("lifetime_list", time.Now())

	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	items := a.LifetimeValues()
	total := decimal.Zero
	for _, v := range items {
		total = total.Add(v.LifetimeValue)
	}
	return &dto.LifetimeListDTO{Items: items, Total: total}, nil
}

// GetAlerts condiciones de alerta vigentes respecto del reloj del caso de uso.
func (uc *InsightsUseCase) GetAlerts(ctx context.Context) (*dto.AlertsDTO, error) {
	defer uc.observe("alerts", time.Now())

	a, err := uc.analyze(ctx, partsCore)
	if err != nil {
		return nil, err
	}
	items := a.AlertConditions()
	out := &dto.AlertsDTO{Items: items, Total: len(items), AsOf: a.Snapshot().AsOf, Counts: map[insights.AlertType]int{}}
	for _, al := range items {
		out.Counts[al.Type]++
	}
	return out, nil
}

// ── Caché ────────────────────────────────────────────────────────────────────

// cacheGet devuelve true solo en un acierto; los fallos de la caché se registran y se ignoran.
func (uc *InsightsUseCase) cacheGet(ctx context.Context, key string, dst any) bool {
	ok, err := uc.cache.Get(ctx, key, dst)
	switch {
	case err != nil:
		uc.metrics.CacheResult(ports.CacheError)
		uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
		return false
	case ok:
		uc.metrics.CacheResult(ports.CacheHit)
		return true
	default:
		uc.metrics.CacheResult(ports.CacheMiss)
		return false
	}
}

func (uc *InsightsUseCase) cacheSet(ctx context.Context, key string, v any) {
	if uc.cacheTTL <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, key, v, uc.cacheTTL); err != nil {
		uc.metrics.CacheResult(ports.CacheError)
		uc.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
}

// ── Parámetros ───────────────────────────────────────────────────────────────

// parseDealFilter valida los filtros de /deals. Fechas en formato YYYY-MM-DD.
func parseDealFilter(req dto.DealFilterRequest) (repository.QuoteFilter, error) {
	var f repository.QuoteFilter
	if s := strings.TrimSpace(req.Status); s != "" {
		status := entity.QuoteStatus(strings.ToLower(s))
		if !status.Valid() {
			return f, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, req.Status)
		}
		f.Status = status
	}
	f.CustomerID = strings.TrimSpace(req.CustomerID)
	if s := strings.TrimSpace(req.Since); s != "" {
		since, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, fmt.Errorf("%w: since debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		f.Since = since
	}
	return f, nil
}
