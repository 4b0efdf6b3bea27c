package insights

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Recommendation producto sugerido para un cliente.
type Recommendation struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	Category            string          `json:"category"`
	Price               decimal.Decimal `json:"price"`
	Reason              string          `json:"reason"`
	Confidence          float64         `json:"confidence"` // 0..1
	Score               float64         `json:"score"`
	SupportingCustomers int             `json:"supporting_customers"`
}

// Recommend sugiere hasta n productos que el cliente aún no ha cotizado, ponderando
// la popularidad de cada producto por la similitud coseno entre vectores de gasto.
// Devuelve una lista vacía (no error) sin historial elegible o sin candidatos.
func (a *Analysis) Recommend(customerID string, n int) []Recommendation {
	out := make([]Recommendation, 0)
	if n <= 0 {
		return out
	}

	quoteOwner := make(map[string]string, len(a.snap.Quotes))
	eligible := make(map[string]bool, len(a.snap.Quotes))
	for _, q := range a.snap.Quotes {
		if q == nil {
			continue
		}
		quoteOwner[q.ID] = q.CustomerID
		eligible[q.ID] = q.IsRevenueEligible()
	}

	excluded := make(map[string]bool)
	spend := make(map[string]map[string]float64)
	for _, it := range a.snap.Items {
		if it == nil {
			continue
		}
		owner, ok := quoteOwner[it.QuoteID]
		if !ok {
			continue
		}
		if owner == customerID {
			excluded[it.ProductID] = true
		}
		if !eligible[it.QuoteID] {
			continue
		}
		v := spend[owner]
		if v == nil {
			v = make(map[string]float64)
			spend[owner] = v
		}
		v[it.ProductID] += it.LineTotal.InexactFloat64()
	}

	target := spend[customerID]
	if len(target) == 0 {
		return out
	}

	type candidate struct {
		score      float64
		supporters int
	}
	candidates := make(map[string]*candidate)
	var totalSimilarity float64
	for _, other := range sortedKeys(spend) {
		if other == customerID {
			continue
		}
		sim := cosineSimilarity(target, spend[other])
		if sim <= 0 || sim < a.policy.Recommend.MinSimilarity {
			continue
		}
		totalSimilarity += sim
		for _, productID := range sortedKeys(spend[other]) {
			if excluded[productID] {
				continue
			}
			c := candidates[productID]
			if c == nil {
				c = &candidate{}
				candidates[productID] = c
			}
			c.score += sim
			c.supporters++
		}
	}
	if totalSimilarity == 0 {
		return out
	}

	for _, productID := range sortedKeys(candidates) {
		p, ok := a.products[productID]
		if !ok {
			continue
		}
		c := candidates[productID]
		out = append(out, Recommendation{
			ProductID:           p.ID,
			ProductName:         p.Name,
			Category:            p.Category,
			Price:               p.Price.Round(2),
			Reason:              fmt.Sprintf("Popular with %d similar customers", c.supporters),
			Confidence:          round2(clamp(c.score/totalSimilarity, 0, 1)),
			Score:               round2(c.score),
			SupportingCustomers: c.supporters,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
