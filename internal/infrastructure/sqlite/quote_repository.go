package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo lectura de cotizaciones y sus líneas sobre quotes.db.
type QuoteRepo struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) *QuoteRepo {
	return &QuoteRepo{db: db}
}

const quoteColumns = `CAST(id AS TEXT), quote_number, CAST(customer_id AS TEXT), COALESCE(status, 'draft'),
	COALESCE(subtotal, 0), COALESCE(tax_rate, 0), COALESCE(tax_amount, 0), COALESCE(total, 0),
	COALESCE(notes, ''), COALESCE(CAST(created_at AS TEXT), ''), COALESCE(CAST(updated_at AS TEXT), '')`

const itemColumns = `CAST(id AS TEXT), CAST(quote_id AS TEXT), CAST(product_id AS TEXT),
	quantity, unit_price, line_total`

// quoteFilterSQL traduce el filtro a cláusulas WHERE con parámetros "?".
// Las fechas se normalizan con datetime() porque la columna guarda texto.
func quoteFilterSQL(f repository.QuoteFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "LOWER(status) = ?")
		args = append(args, string(f.Status))
	}
	if f.CustomerID != "" {
		conds = append(conds, "CAST(customer_id AS TEXT) = ?")
		args = append(args, f.CustomerID)
	}
	if f.MinTotal != nil {
		conds = append(conds, "total >= ?")
		args = append(args, f.MinTotal.InexactFloat64())
	}
	if f.MaxTotal != nil {
		conds = append(conds, "total <= ?")
		args = append(args, f.MaxTotal.InexactFloat64())
	}
	if !f.Since.IsZero() {
		conds = append(conds, "datetime(created_at) >= datetime(?)")
		args = append(args, sqliteTime(f.Since))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *QuoteRepo) List(ctx context.Context, filter repository.QuoteFilter) ([]*entity.Quote, error) {
	where, args := quoteFilterSQL(filter)
	rows, err := r.db.QueryContext(ctx, `SELECT `+quoteColumns+` FROM quotes`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, wrapErr("list quotes", err)
	}
	defer rows.Close()

	out := make([]*entity.Quote, 0)
	for rows.Next() {
		var (
			q                entity.Quote
			status           string
			created, updated string
		)
		if err := rows.Scan(
			&q.ID, &q.Number, &q.CustomerID, &status,
			&q.Subtotal, &q.TaxRate, &q.TaxAmount, &q.Total,
			&q.Notes, &created, &updated,
		); err != nil {
			return nil, wrapErr("scan quote", err)
		}
		q.Status = entity.QuoteStatus(strings.ToLower(strings.TrimSpace(status)))
		if q.CreatedAt, err = parseTime(created); err != nil {
			return nil, wrapErr("scan quote "+q.ID, err)
		}
		if q.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, wrapErr("scan quote "+q.ID, err)
		}
		if q.UpdatedAt.IsZero() {
			q.UpdatedAt = q.CreatedAt
		}
		out = append(out, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list quotes", err)
	}
	return out, nil
}

// GetItems devuelve las líneas de una cotización.
func (r *QuoteRepo) GetItems(ctx context.Context, quoteID string) ([]*entity.QuoteItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM quote_items WHERE CAST(quote_id AS TEXT) = ? ORDER BY id`, quoteID)
	if err != nil {
		return nil, wrapErr("get quote items", err)
	}
	return collectItems(rows)
}

// ListItems devuelve todas las líneas ordenadas por ID.
func (r *QuoteRepo) ListItems(ctx context.Context) ([]*entity.QuoteItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM quote_items ORDER BY id`)
	if err != nil {
		return nil, wrapErr("list quote items", err)
	}
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*entity.QuoteItem, error) {
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
