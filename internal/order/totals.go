package order

import (
	"context"
	"database/sql"
	"fmt"
)

// dbtx matches the methods shared by *sql.DB and *sql.Tx that the
// repository uses, so the total recalculation can run either directly on
// the pool or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sumItems returns the sum of quantity * unit_price over the order's
// current items. An unknown order id or an empty item set yields 0.
func sumItems(ctx context.Context, q dbtx, orderID int64) (float64, error) {
	var total float64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity * unit_price), 0) FROM order_items WHERE order_id = ?`,
		orderID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum items: %w", err)
	}
	return total, nil
}

// recalculateTotal recomputes the order's total from its current items and
// persists it. Always a full recompute, never an incremental adjustment, so
// it corrects any prior drift in the stored column. Writing to a missing
// order updates zero rows and is not an error.
func recalculateTotal(ctx context.Context, q dbtx, orderID int64) (float64, error) {
	total, err := sumItems(ctx, q, orderID)
	if err != nil {
		return 0, err
	}

	_, err = q.ExecContext(ctx,
		`UPDATE orders SET total_amount = ? WHERE id = ?`,
		total, orderID,
	)
	if err != nil {
		return 0, fmt.Errorf("update total: %w", err)
	}
	return total, nil
}
