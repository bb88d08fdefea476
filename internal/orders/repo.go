package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

// InsufficientStockError names the product that blocked a checkout.
type InsufficientStockError struct {
	ProductTitle string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductTitle)
}

type Repo struct{ DB *pgxpool.Pool }

// Create writes the order and decrements warehouse-1 stock for every line in
// ONE transaction. Each decrement is conditional on wh1qty still covering the
// line, so two concurrent checkouts cannot drive stock negative: the slower
// one misses the condition, the whole transaction rolls back, and neither the
// order nor any decrement survives.
func (r *Repo) Create(ctx context.Context, o Order) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, shipping_address, total_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, o.ShippingAddress, o.TotalCents, o.Status, o.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	for _, l := range o.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, product_id, title, image, qty, price_cents, remark)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.ID, l.ProductID, l.Title, l.Image, l.Qty, l.PriceCents, l.Remark)
		if err != nil {
			return "", fmt.Errorf("insert order line: %w", err)
		}

		ct, err := tx.Exec(ctx, `
			UPDATE products SET wh1qty = wh1qty - $2
			WHERE id = $1 AND wh1qty >= $2`,
			l.ProductID, l.Qty)
		if err != nil {
			return "", fmt.Errorf("decrement stock for %s: %w", l.ProductID, err)
		}
		if ct.RowsAffected() != 1 {
			return "", &InsufficientStockError{ProductTitle: l.Title}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit checkout tx: %w", err)
	}
	return o.ID, nil
}

// GetStatusForUser reads an order's status scoped to its owner; an order
// belonging to someone else reads as not found.
func (r *Repo) GetStatusForUser(ctx context.Context, orderID, userID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 AND user_id=$2`, orderID, userID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// UpdateStatus advances an order's status, refusing transitions the machine
// does not allow. Returns the order's user id so the caller can notify.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) (string, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	var userID string
	err = tx.QueryRow(ctx, `SELECT status, user_id FROM orders WHERE id=$1 FOR UPDATE`, orderID).
		Scan(&cur, &userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !CanTransition(Status(cur), to) {
		return "", fmt.Errorf("order %s: invalid transition %s -> %s", orderID, cur, to)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, to); err != nil {
		return "", err
	}
	return userID, tx.Commit(ctx)
}

// ListByUser returns the user's orders with their lines, newest first.
// Orders whose created_at was never set sort as oldest.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, shipping_address, total_cents, status, created_at
		FROM orders WHERE user_id = $1
		ORDER BY COALESCE(created_at, 'epoch'::timestamptz) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	idx := map[string]int{}
	for rows.Next() {
		var o Order
		var created *time.Time
		if err := rows.Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.TotalCents, &o.Status, &created); err != nil {
			return nil, err
		}
		if created != nil {
			o.CreatedAt = *created
		}
		idx[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	lrows, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, title, image, qty, price_cents, remark
		FROM order_lines WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lrows.Close()

	for lrows.Next() {
		var orderID string
		var l Line
		if err := lrows.Scan(&orderID, &l.ProductID, &l.Title, &l.Image, &l.Qty, &l.PriceCents, &l.Remark); err != nil {
			return nil, err
		}
		if i, ok := idx[orderID]; ok {
			out[i].Lines = append(out[i].Lines, l)
		}
	}
	return out, lrows.Err()
}
