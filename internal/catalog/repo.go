package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, title, price_cents, image, wh1qty, wh2qty, wh3qty, status
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.PriceCents, &p.Image, &p.Wh1Qty, &p.Wh2Qty, &p.Wh3Qty, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, price_cents, image, wh1qty, wh2qty, wh3qty, status
		FROM products ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Title, &p.PriceCents, &p.Image, &p.Wh1Qty, &p.Wh2Qty, &p.Wh3Qty, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPurchasable filters to what the shop page may show: active products
// with stock somewhere.
func (r *Repo) ListPurchasable(ctx context.Context) ([]Product, error) {
	all, err := r.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if p.Purchasable() {
			out = append(out, p)
		}
	}
	return out, nil
}
