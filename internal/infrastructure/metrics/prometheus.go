// Package metrics exposición Prometheus de las métricas del motor de análisis.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tirs/quota/internal/application/ports"
)

var _ ports.InsightsMetrics = (*InsightsMetrics)(nil)

// InsightsMetrics colectores registrados en un registro propio (no el global).
type InsightsMetrics struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	cache    *prometheus.CounterVec
	degraded *prometheus.CounterVec
}

// New crea el registro con los colectores del motor, más los de proceso y runtime de Go.
func New() *InsightsMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &InsightsMetrics{
		registry: reg,
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quota",
			Subsystem: "insights",
			Name:      "operation_duration_seconds",
			Help:      "Duración de cada operación de análisis, incluida la lectura del snapshot.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quota",
			Subsystem: "insights",
			Name:      "cache_total",
			Help:      "Consultas a la caché de resultados por resultado (hit, miss, error).",
		}, []string{"result"}),
		degraded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quota",
			Subsystem: "insights",
			Name:      "degraded_sections_total",
			Help:      "Secciones del tablero rápido devueltas con su valor neutro.",
		}, []string{"section"}),
	}
}

func (m *InsightsMetrics) ObserveOperation(operation string, d time.Duration) {
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *InsightsMetrics) CacheResult(result string) {
	m.cache.WithLabelValues(result).Inc()
}

func (m *InsightsMetrics) SectionDegraded(section string) {
	m.degraded.WithLabelValues(section).Inc()
}

// Registry registro subyacente (tests, colectores adicionales).
func (m *InsightsMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler HTTP de exposición para /metrics.
func (m *InsightsMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
