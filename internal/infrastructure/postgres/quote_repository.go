package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo implementación read-only de cotizaciones y sus líneas.
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

const quoteColumns = `id::text, quote_number, customer_id::text, status,
	subtotal::numeric, tax_rate::numeric, tax_amount::numeric, total::numeric,
	COALESCE(notes, ''), created_at, COALESCE(updated_at, created_at)`

const itemColumns = `id::text, quote_id::text, product_id::text, quantity, unit_price::numeric, line_total::numeric`

// quoteFilterSQL traduce el filtro a cláusulas WHERE con parámetros posicionales.
func quoteFilterSQL(f repository.QuoteFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.CustomerID != "" {
		add("customer_id::text = $%d", f.CustomerID)
	}
	if f.MinTotal != nil {
		add("total >= $%d", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		add("total <= $%d", *f.MaxTotal)
	}
	if !f.Since.IsZero() {
		add("created_at >= $%d", f.Since)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List devuelve las cotizaciones que cumplen el filtro, ordenadas por ID.
func (r *QuoteRepo) List(ctx context.Context, filter repository.QuoteFilter) ([]*entity.Quote, error) {
	where, args := quoteFilterSQL(filter)
	rows, err := r.q.Query(ctx, `SELECT `+quoteColumns+` FROM quotes`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, wrapErr("list quotes", err)
	}
	defer rows.Close()

	out := make([]*entity.Quote, 0)
	for rows.Next() {
		var (
			q      entity.Quote
			status string
		)
		if err := rows.Scan(
			&q.ID, &q.Number, &q.CustomerID, &status,
			&q.Subtotal, &q.TaxRate, &q.TaxAmount, &q.Total,
			&q.Notes, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, wrapErr("scan quote", err)
		}
		q.Status = entity.QuoteStatus(strings.ToLower(status))
		out = append(out, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list quotes", err)
	}
	return out, nil
}

// GetItems devuelve las líneas de una cotización.
func (r *QuoteRepo) GetItems(ctx context.Context, quoteID string) ([]*entity.QuoteItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM quote_items WHERE quote_id::text = $1 ORDER BY id`, quoteID)
	if err != nil {
		return nil, wrapErr("get quote items", err)
	}
	return collectItems(rows)
}

// ListItems devuelve todas las líneas ordenadas por ID.
func (r *QuoteRepo) ListItems(ctx context.Context) ([]*entity.QuoteItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM quote_items ORDER BY id`)
	if err != nil {
		return nil, wrapErr("list quote items", err)
	}
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]*entity.QuoteItem, error) {
	defer rows.Close()
	out := make([]*entity.QuoteItem, 0)
	for rows.Next() {
		var it entity.QuoteItem
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, wrapErr("scan quote item", err)
		}
		out = append(out, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list quote items", err)
	}
	return out, nil
}
