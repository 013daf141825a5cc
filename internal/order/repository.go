package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("order item not found")
)

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrder(ctx context.Context, o *Order) error
	DeleteOrder(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	ListItemsForOrder(ctx context.Context, orderID int64) ([]Item, error)
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id int64) error

	CreateOrderWithItems(ctx context.Context, customerID int64, orderDate string, items []Item) (*OrderWithItems, error)
	Stats(ctx context.Context) (*Stats, error)

	SumItems(ctx context.Context, orderID int64) (float64, error)
	RecalculateTotal(ctx context.Context, orderID int64) (float64, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// withTx runs fn inside a transaction and commits on success. Every item
// mutation shares a transaction with the total recalculation that follows
// it, so the two writes land together.
func (r *repo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SumItems returns the order's total computed live from its items, without
// touching the stored column. Read paths use this instead of the cache.
func (r *repo) SumItems(ctx context.Context, orderID int64) (float64, error) {
	return sumItems(ctx, r.db, orderID)
}

// RecalculateTotal recomputes and persists the order's total.
func (r *repo) RecalculateTotal(ctx context.Context, orderID int64) (float64, error) {
	return recalculateTotal(ctx, r.db, orderID)
}

func (r *repo) CreateOrder(ctx context.Context, o *Order) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (customer_id, order_date, total_amount) VALUES (?, ?, ?)`,
		o.CustomerID, o.OrderDate, o.TotalAmount,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	o.ID = id
	return nil
}

func (r *repo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, order_date, total_amount FROM orders WHERE id = ?`,
		id,
	).Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.TotalAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	total, err := sumItems(ctx, r.db, o.ID)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = total

	return &o, nil
}

func (r *repo) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, order_date, total_amount FROM orders`,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		total, err := sumItems(ctx, r.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].TotalAmount = total
	}

	return orders, nil
}

// UpdateOrder overwrites all scalar fields, then recomputes the total from
// the current items, discarding whatever total the caller supplied.
func (r *repo) UpdateOrder(ctx context.Context, o *Order) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET customer_id = ?, order_date = ?, total_amount = ? WHERE id = ?`,
			o.CustomerID, o.OrderDate, o.TotalAmount, o.ID,
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrOrderNotFound
		}

		total, err := recalculateTotal(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		o.TotalAmount = total
		return nil
	})
}

// DeleteOrder removes the order's items first and then the order itself.
// The schema also declares ON DELETE CASCADE; the explicit child delete
// keeps the behavior driver-independent.
func (r *repo) DeleteOrder(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM order_items WHERE order_id = ?`, id,
		); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
}

func (r *repo) CreateItem(ctx context.Context, it *Item) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
			it.OrderID, it.ProductID, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		it.ID = id

		_, err = recalculateTotal(ctx, tx, it.OrderID)
		return err
	})
}

func (r *repo) GetItem(ctx context.Context, id int64) (*Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price FROM order_items WHERE id = ?`,
		id,
	).Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("select order item: %w", err)
	}
	return &it, nil
}

func (r *repo) ListItems(ctx context.Context) ([]Item, error) {
	return r.queryItems(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price FROM order_items`)
}

func (r *repo) ListItemsForOrder(ctx context.Context, orderID int64) ([]Item, error) {
	return r.queryItems(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price FROM order_items WHERE order_id = ?`,
		orderID)
}

func (r *repo) queryItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

// UpdateItem overwrites every field, including order_id, so an item can be
// reassigned to a different order. Only the new owner's total is refreshed;
// a prior owner's stored total stays stale until its own next mutation
// (reads recompute live, so only /stats can observe the stale value).
func (r *repo) UpdateItem(ctx context.Context, it *Item) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE order_items SET order_id = ?, product_id = ?, quantity = ?, unit_price = ? WHERE id = ?`,
			it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.ID,
		)
		if err != nil {
			return fmt.Errorf("update order item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrItemNotFound
		}

		_, err = recalculateTotal(ctx, tx, it.OrderID)
		return err
	})
}

// DeleteItem captures the owning order id before the row disappears, then
// deletes and refreshes that order's total.
func (r *repo) DeleteItem(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var orderID int64
		err := tx.QueryRowContext(ctx,
			`SELECT order_id FROM order_items WHERE id = ?`, id,
		).Scan(&orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("select order item: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM order_items WHERE id = ?`, id,
		); err != nil {
			return fmt.Errorf("delete order item: %w", err)
		}

		_, err = recalculateTotal(ctx, tx, orderID)
		return err
	})
}

// CreateOrderWithItems creates the order and all of its items as one atomic
// unit. The total is accumulated inline while inserting, then written once;
// the result matches what a recalculation would produce.
func (r *repo) CreateOrderWithItems(ctx context.Context, customerID int64, orderDate string, items []Item) (*OrderWithItems, error) {
	result := &OrderWithItems{
		CustomerID: customerID,
		OrderDate:  orderDate,
		Items:      []Item{},
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO orders (customer_id, order_date, total_amount) VALUES (?, ?, ?)`,
			customerID, orderDate, 0.0,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		orderID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("order id: %w", err)
		}
		result.OrderID = orderID

		var total float64
		for _, it := range items {
			total += float64(it.Quantity) * it.UnitPrice

			res, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
				orderID, it.ProductID, it.Quantity, it.UnitPrice,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			itemID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("item id: %w", err)
			}

			it.ID = itemID
			it.OrderID = orderID
			result.Items = append(result.Items, it)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET total_amount = ? WHERE id = ?`,
			total, orderID,
		); err != nil {
			return fmt.Errorf("update total: %w", err)
		}
		result.TotalAmount = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Stats aggregates across all orders and items. Revenue comes from the
// stored total_amount column, not a live recompute.
func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{ProductStats: map[string]ProductStat{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COUNT(DISTINCT customer_id)
		FROM orders`,
	).Scan(&s.TotalOrders, &s.TotalRevenue, &s.UniqueCustomers)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, SUM(quantity), SUM(quantity * unit_price)
		FROM order_items
		GROUP BY product_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var stat ProductStat
		if err := rows.Scan(&productID, &stat.Quantity, &stat.Revenue); err != nil {
			return nil, fmt.Errorf("scan product stat: %w", err)
		}
		s.ProductStats[productID] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var earliest, latest sql.NullString
	err = r.db.QueryRowContext(ctx, `
		SELECT MIN(order_date), MAX(order_date) FROM orders`,
	).Scan(&earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("date range: %w", err)
	}
	if earliest.Valid {
		s.DateRange.EarliestOrder = &earliest.String
	}
	if latest.Valid {
		s.DateRange.LatestOrder = &latest.String
	}

	return s, nil
}
