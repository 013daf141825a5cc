package order

// Order is the parent entity. TotalAmount is a cache of the sum of its
// items' line totals; reads recompute it from the items instead of
// trusting the stored column.
type Order struct {
	ID          int64   `json:"id"`
	CustomerID  int64   `json:"customer_id"`
	OrderDate   string  `json:"order_date"`
	TotalAmount float64 `json:"total_amount"`
}

// Item is one line of an order.
type Item struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderWithItems is the result of the composite create endpoint.
type OrderWithItems struct {
	OrderID     int64   `json:"order_id"`
	CustomerID  int64   `json:"customer_id"`
	OrderDate   string  `json:"order_date"`
	TotalAmount float64 `json:"total_amount"`
	Items       []Item  `json:"items"`
}

// ProductStat aggregates quantity and revenue per product across all items.
type ProductStat struct {
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DateRange holds the earliest and latest order dates, nil when there are
// no orders yet.
type DateRange struct {
	EarliestOrder *string `json:"earliest_order"`
	LatestOrder   *string `json:"latest_order"`
}

// Stats is the read-only summary served by /stats. TotalRevenue sums the
// stored total_amount column as-is.
type Stats struct {
	TotalOrders     int64                  `json:"total_orders"`
	TotalRevenue    float64                `json:"total_revenue"`
	UniqueCustomers int64                  `json:"unique_customers"`
	ProductStats    map[string]ProductStat `json:"product_stats"`
	DateRange       DateRange              `json:"date_range"`
}
