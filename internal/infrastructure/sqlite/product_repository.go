package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo sobre quotes.db.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// price es REAL; decimal.Decimal implementa sql.Scanner y lo convierte.
const productColumns = `CAST(id AS TEXT), name, COALESCE(description, ''), COALESCE(price, 0),
	COALESCE(category, ''), COALESCE(CAST(created_at AS TEXT), '')`

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p       entity.Product
		created string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()

	out := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list products", err)
	}
	return out, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE CAST(id AS TEXT) = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return p, nil
}
