package analytics_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tirs/quota/internal/application/analytics"
	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
	"github.com/tirs/quota/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos
// ──────────────────────────────────────────────────────────────────────────────

var errDB = errors.New("conexión rechazada")

type fakeCustomers struct {
	rows []*entity.Customer
	err  error
}

func (f *fakeCustomers) List(context.Context) ([]*entity.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	for _, c := range f.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

type fakeProducts struct {
	rows []*entity.Product
}

func (f *fakeProducts) List(context.Context) ([]*entity.Product, error) { return f.rows, nil }

func (f *fakeProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakeQuotes struct {
	rows  []*entity.Quote
	items []*entity.QuoteItem
	err   error
}

func (f *fakeQuotes) List(_ context.Context, filter repository.QuoteFilter) ([]*entity.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*entity.Quote, 0, len(f.rows))
	for _, q := range f.rows {
		if filter.Matches(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuotes) GetItems(_ context.Context, quoteID string) ([]*entity.QuoteItem, error) {
	out := make([]*entity.QuoteItem, 0)
	for _, it := range f.items {
		if it.QuoteID == quoteID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeQuotes) ListItems(context.Context) ([]*entity.QuoteItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

// memCache caché en memoria que serializa con msgpack como el adaptador Redis.
type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	sets   int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, msgpack.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.sets++
	return nil
}

type countingMetrics struct {
	mu       sync.Mutex
	ops      map[string]int
	cache    map[string]int
	degraded map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{ops: map[string]int{}, cache: map[string]int{}, degraded: map[string]int{}}
}

func (m *countingMetrics) ObserveOperation(op string, _ time.Duration) {
	m.mu.Lock()
	m.ops[op]++
	m.mu.Unlock()
}

func (m *countingMetrics) CacheResult(result string) {
	m.mu.Lock()
	m.cache[result]++
	m.mu.Unlock()
}

func (m *countingMetrics) SectionDegraded(section string) {
	m.mu.Lock()
	m.degraded[section]++
	m.mu.Unlock()
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

func at(m time.Month, d int) time.Time { return time.Date(2024, m, d, 10, 0, 0, 0, time.UTC) }

func newQuote(id, customerID string, status entity.QuoteStatus, total int64, created time.Time) *entity.Quote {
	amount := decimal.NewFromInt(total)
	return &entity.Quote{
		ID: id, Number: "Q-" + id, CustomerID: customerID, Status: status,
		Subtotal: amount, Total: amount, CreatedAt: created, UpdatedAt: created,
	}
}

type fixture struct {
	customers *fakeCustomers
	products  *fakeProducts
	quotes    *fakeQuotes
	cache     *memCache
	metrics   *countingMetrics
}

// scenario A (12 cotizaciones crecientes), B (rechazadas, inactivo 122 días), C (una pequeña).
func scenario() *fixture {
	f := &fixture{
		customers: &fakeCustomers{rows: []*entity.Customer{
			{ID: "A", Name: "Acme", CreatedAt: at(1, 1).AddDate(0, -1, 0)},
			{ID: "B", Name: "Beta", CreatedAt: at(1, 1).AddDate(-1, 0, 0)},
			{ID: "C", Name: "Cobalto", CreatedAt: at(6, 1)},
		}},
		products: &fakeProducts{rows: []*entity.Product{
			{ID: "P1", Name: "Cable", Category: "Redes", Price: decimal.NewFromInt(100)},
			{ID: "P2", Name: "Switch", Category: "Redes", Price: decimal.NewFromInt(50)},
			{ID: "P3", Name: "Router", Category: "Redes", Price: decimal.NewFromInt(80)},
		}},
		quotes:  &fakeQuotes{},
		cache:   newMemCache(),
		metrics: newCountingMetrics(),
	}
	amount := int64(1000)
	n := 0
	for m := time.January; m <= time.June; m++ {
		for _, d := range []int{5, 20} {
			n++
			f.quotes.rows = append(f.quotes.rows, newQuote(fmt.Sprintf("A%02d", n), "A", entity.QuoteStatusAccepted, amount, at(m, d)))
			amount += 200
		}
	}
	f.quotes.rows = append(f.quotes.rows,
		newQuote("B01", "B", entity.QuoteStatusRejected, 5000, at(2, 1)),
		newQuote("B02", "B", entity.QuoteStatusRejected, 4000, at(3, 1)),
		newQuote("C01", "C", entity.QuoteStatusAccepted, 150, at(6, 15)),
	)
	// A y C compran P1; A además P2 y P3.
	f.quotes.items = []*entity.QuoteItem{
		{ID: "i1", QuoteID: "A01", ProductID: "P1", Quantity: 1, LineTotal: decimal.NewFromInt(100)},
		{ID: "i2", QuoteID: "A02", ProductID: "P2", Quantity: 1, LineTotal: decimal.NewFromInt(50)},
		{ID: "i3", QuoteID: "A03", ProductID: "P3", Quantity: 1, LineTotal: decimal.NewFromInt(80)},
		{ID: "i4", QuoteID: "C01", ProductID: "P1", Quantity: 1, LineTotal: decimal.NewFromInt(150)},
	}
	return f
}

func (f *fixture) useCase() *analytics.InsightsUseCase {
	return analytics.NewInsightsUseCase(
		f.customers, f.products, f.quotes,
		insights.NewEngine(insights.DefaultPolicy()),
		f.cache, f.metrics, nil, 5*time.Minute,
	).WithClock(func() time.Time { return testNow })
}
