package ports

import "time"

// Resultados de una consulta a la caché.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// InsightsMetrics puerto de observabilidad del motor de análisis.
type InsightsMetrics interface {
	ObserveOperation(operation string, d time.Duration)
	CacheResult(result string)
	SectionDegraded(section string)
}

// NoopMetrics descarta todas las mediciones (tests, binarios sin /metrics).
type NoopMetrics struct{}

func (NoopMetrics) ObserveOperation(string, time.Duration) {}
func (NoopMetrics) CacheResult(string)                     {}
func (NoopMetrics) SectionDegraded(string)                 {}

var _ InsightsMetrics = NoopMetrics{}
