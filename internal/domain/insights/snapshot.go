package insights

import (
	"sort"
	"time"

	"github.com/tirs/quota/internal/domain/entity"
)

// Snapshot es una lectura consistente de la fuente de datos. El motor nunca la modifica.
// AsOf es el instante de referencia para recencias y ventanas; fijarlo hace que dos
// cálculos sobre el mismo snapshot den resultados idénticos.
type Snapshot struct {
	AsOf      time.Time
	Customers []*entity.Customer
	Products  []*entity.Product
	Quotes    []*entity.Quote
	Items     []*entity.QuoteItem
}

// chronological devuelve una copia ordenada por fecha de creación (desempate por ID).
func chronological(quotes []*entity.Quote) []*entity.Quote {
	out := make([]*entity.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q != nil {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// groupByCustomer agrupa las cotizaciones por cliente, cada grupo en orden cronológico.
func groupByCustomer(quotes []*entity.Quote) map[string][]*entity.Quote {
	grouped := make(map[string][]*entity.Quote)
	for _, q := range chronological(quotes) {
		grouped[q.CustomerID] = append(grouped[q.CustomerID], q)
	}
	return grouped
}

// daysBetween días completos transcurridos de from a to (nunca negativo).
func daysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// civilDay número de día calendario (desde la época Unix) de la fecha local de t.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
