// Package insights implementa el motor de inteligencia de clientes sobre el historial
// de cotizaciones: métricas de negocio, riesgo de abandono, salud, segmentación,
// anomalías, recomendaciones y pronóstico de ingresos.
//
// Todo el paquete es de cálculo puro: recibe un Snapshot ya leído, no hace I/O y no
// guarda estado entre llamadas. Las reglas son políticas con umbrales configurables
// (Policy), no modelos entrenados.
package insights

import (
	"sort"

	"github.com/tirs/quota/internal/domain/entity"
)

// Engine construye análisis con una política fija.
type Engine struct {
	policy Policy
}

// NewEngine construye el motor. La política debe haberse validado con Policy.Validate.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy devuelve la política activa.
func (e *Engine) Policy() Policy { return e.policy }

// Analysis es la vista calculada de un Snapshot: índices y Features por cliente.
// Es inmutable tras Analyze, por lo que puede leerse desde varias goroutines.
type Analysis struct {
	policy    Policy
	snap      *Snapshot
	features  map[string]*Features
	customers map[string]*entity.Customer
	products  map[string]*entity.Product
	revenues  []float64 // ingresos positivos de clientes registrados, ascendentes (percentiles de salud)
}

// Analyze indexa el snapshot y calcula los Features de todos los clientes.
func (e *Engine) Analyze(s *Snapshot) *Analysis {
	if s == nil {
		s = &Snapshot{}
	}
	a := &Analysis{
		policy:    e.policy,
		snap:      s,
		features:  BuildFeatures(s),
		customers: make(map[string]*entity.Customer, len(s.Customers)),
		products:  make(map[string]*entity.Product, len(s.Products)),
	}
	for _, c := range s.Customers {
		if c != nil {
			a.customers[c.ID] = c
		}
	}
	for _, p := range s.Products {
		if p != nil {
			a.products[p.ID] = p
		}
	}
	for id := range a.customers {
		if f, ok := a.features[id]; ok && f.Revenue > 0 {
			a.revenues = append(a.revenues, f.Revenue)
		}
	}
	sort.Float64s(a.revenues)
	return a
}

// Snapshot devuelve el snapshot analizado.
func (a *Analysis) Snapshot() *Snapshot { return a.snap }

// Features devuelve los agregados del cliente; nunca nil (cliente sin cotizaciones → ceros).
func (a *Analysis) Features(customerID string) *Features {
	if f, ok := a.features[customerID]; ok {
		return f
	}
	return &Features{CustomerID: customerID}
}

// customerIDs IDs de los clientes registrados, ordenados.
func (a *Analysis) customerIDs() []string { return sortedKeys(a.customers) }

// customerName nombre del cliente o cadena vacía si no está en el snapshot.
func (a *Analysis) customerName(id string) string {
	if c, ok := a.customers[id]; ok {
		return c.Name
	}
	return ""
}

// DealMetrics métricas de tamaño de negocio sobre todas las cotizaciones del snapshot.
func (a *Analysis) DealMetrics() DealMetrics { return ComputeDealMetrics(a.snap.Quotes) }

// WinMetrics métricas de conversión sobre todas las cotizaciones del snapshot.
func (a *Analysis) WinMetrics() WinMetrics { return ComputeWinMetrics(a.snap.Quotes) }

// Trend tendencia de ingresos sobre todas las cotizaciones del snapshot.
func (a *Analysis) Trend() TrendResult { return ComputeTrend(a.snap.Quotes) }
