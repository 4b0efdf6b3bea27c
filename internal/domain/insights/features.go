package insights

import (
	"time"

	"github.com/tirs/quota/internal/domain/entity"
)

// Features agregados por cliente que comparten churn, salud y segmentación.
// Se calculan una sola vez por snapshot (BuildFeatures).
type Features struct {
	CustomerID        string
	QuoteCount        int     // todas las cotizaciones, cualquier estado
	AcceptedCount     int
	EligibleCount     int     // aceptadas + enviadas
	AcceptanceRate    float64 // AcceptedCount / QuoteCount
	Revenue           float64 // suma de totales elegibles
	FirstQuoteAt      time.Time
	LastQuoteAt       time.Time
	DaysSinceLast     int
	TenureDays        int     // desde el alta del cliente (o su primera cotización)
	QuotesPer30Days   float64 // frecuencia desde la primera cotización, ventana mínima de 30 días
	FirstHalfRevenue  float64 // ingreso elegible de la primera mitad cronológica de sus cotizaciones
	SecondHalfRevenue float64
}

// HasQuotes indica si el cliente tiene al menos una cotización.
func (f *Features) HasQuotes() bool { return f.QuoteCount > 0 }

// BuildFeatures calcula los Features de cada cliente del snapshot y de cada
// CustomerID referenciado por alguna cotización.
func BuildFeatures(s *Snapshot) map[string]*Features {
	grouped := groupByCustomer(s.Quotes)
	out := make(map[string]*Features, len(s.Customers))
	for _, c := range s.Customers {
		if c == nil {
			continue
		}
		out[c.ID] = customerFeatures(c.ID, c.CreatedAt, grouped[c.ID], s.AsOf)
	}
	for id, quotes := range grouped {
		if _, ok := out[id]; !ok {
			out[id] = customerFeatures(id, time.Time{}, quotes, s.AsOf)
		}
	}
	return out
}

// customerFeatures espera quotes en orden cronológico.
func customerFeatures(customerID string, createdAt time.Time, quotes []*entity.Quote, asOf time.Time) *Features {
	f := &Features{CustomerID: customerID}
	if !createdAt.IsZero() {
		f.TenureDays = daysBetween(createdAt, asOf)
	}
	if len(quotes) == 0 {
		return f
	}

	f.QuoteCount = len(quotes)
	f.FirstQuoteAt = quotes[0].CreatedAt
	f.LastQuoteAt = quotes[len(quotes)-1].CreatedAt
	f.DaysSinceLast = daysBetween(f.LastQuoteAt, asOf)
	if createdAt.IsZero() {
		f.TenureDays = daysBetween(f.FirstQuoteAt, asOf)
	}

	mid := len(quotes) / 2
	for i, q := range quotes {
		if q.Status == entity.QuoteStatusAccepted {
			f.AcceptedCount++
		}
		if !q.IsRevenueEligible() {
			continue
		}
		amount := q.Total.InexactFloat64()
		f.EligibleCount++
		f.Revenue += amount
		if i < mid {
			f.FirstHalfRevenue += amount
		} else {
			f.SecondHalfRevenue += amount
		}
	}
	f.AcceptanceRate = float64(f.AcceptedCount) / float64(f.QuoteCount)

	span := daysBetween(f.FirstQuoteAt, asOf)
	if span < 30 {
		span = 30
	}
	f.QuotesPer30Days = float64(f.QuoteCount) / (float64(span) / 30)
	return f
}
