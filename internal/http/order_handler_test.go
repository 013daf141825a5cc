package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onestomanys/orders-api/internal/order"
)

type fakeOrderRepo struct {
	createOrderFunc          func(ctx context.Context, o *order.Order) error
	getOrderFunc             func(ctx context.Context, id int64) (*order.Order, error)
	listOrdersFunc           func(ctx context.Context) ([]order.Order, error)
	updateOrderFunc          func(ctx context.Context, o *order.Order) error
	deleteOrderFunc          func(ctx context.Context, id int64) error
	createItemFunc           func(ctx context.Context, it *order.Item) error
	getItemFunc              func(ctx context.Context, id int64) (*order.Item, error)
	listItemsFunc            func(ctx context.Context) ([]order.Item, error)
	listItemsForOrderFunc    func(ctx context.Context, orderID int64) ([]order.Item, error)
	updateItemFunc           func(ctx context.Context, it *order.Item) error
	deleteItemFunc           func(ctx context.Context, id int64) error
	createOrderWithItemsFunc func(ctx context.Context, customerID int64, orderDate string, items []order.Item) (*order.OrderWithItems, error)
	statsFunc                func(ctx context.Context) (*order.Stats, error)
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, o *order.Order) error {
	if f.createOrderFunc != nil {
		return f.createOrderFunc(ctx, o)
	}
	return nil
}

func (f *fakeOrderRepo) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	if f.getOrderFunc != nil {
		return f.getOrderFunc(ctx, id)
	}
	return nil, order.ErrOrderNotFound
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]order.Order, error) {
	if f.listOrdersFunc != nil {
		return f.listOrdersFunc(ctx)
	}
	return nil, nil
}

func (f *fakeOrderRepo) UpdateOrder(ctx context.Context, o *order.Order) error {
	if f.updateOrderFunc != nil {
		return f.updateOrderFunc(ctx, o)
	}
	return nil
}

func (f *fakeOrderRepo) DeleteOrder(ctx context.Context, id int64) error {
	if f.deleteOrderFunc != nil {
		return f.deleteOrderFunc(ctx, id)
	}
	return nil
}

func (f *fakeOrderRepo) CreateItem(ctx context.Context, it *order.Item) error {
	if f.createItemFunc != nil {
		return f.createItemFunc(ctx, it)
	}
	return nil
}

func (f *fakeOrderRepo) GetItem(ctx context.Context, id int64) (*order.Item, error) {
	if f.getItemFunc != nil {
		return f.getItemFunc(ctx, id)
	}
	return nil, order.ErrItemNotFound
}

func (f *fakeOrderRepo) ListItems(ctx context.Context) ([]order.Item, error) {
	if f.listItemsFunc != nil {
		return f.listItemsFunc(ctx)
	}
	return nil, nil
}

func (f *fakeOrderRepo) ListItemsForOrder(ctx context.Context, orderID int64) ([]order.Item, error) {
	if f.listItemsForOrderFunc != nil {
		return f.listItemsForOrderFunc(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeOrderRepo) UpdateItem(ctx context.Context, it *order.Item) error {
	if f.updateItemFunc != nil {
		return f.updateItemFunc(ctx, it)
	}
	return nil
}

func (f *fakeOrderRepo) DeleteItem(ctx context.Context, id int64) error {
	if f.deleteItemFunc != nil {
		return f.deleteItemFunc(ctx, id)
	}
	return nil
}

func (f *fakeOrderRepo) CreateOrderWithItems(ctx context.Context, customerID int64, orderDate string, items []order.Item) (*order.OrderWithItems, error) {
	if f.createOrderWithItemsFunc != nil {
		return f.createOrderWithItemsFunc(ctx, customerID, orderDate, items)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeOrderRepo) Stats(ctx context.Context) (*order.Stats, error) {
	if f.statsFunc != nil {
		return f.statsFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeOrderRepo) SumItems(ctx context.Context, orderID int64) (float64, error) {
	return 0, nil
}

func (f *fakeOrderRepo) RecalculateTotal(ctx context.Context, orderID int64) (float64, error) {
	return 0, nil
}

func newTestRouter(repo order.Repository) http.Handler {
	return NewRouter(zap.NewNop(), NewOrderHandler(repo), NewMasterHandler(&fakeMasterRepo{}))
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRoot_Banner(t *testing.T) {
	rr := doRequest(t, newTestRouter(&fakeOrderRepo{}), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Welcome to OnesToManys API!", resp["message"])
}

func TestGetOrder_Success(t *testing.T) {
	repo := &fakeOrderRepo{
		getOrderFunc: func(ctx context.Context, id int64) (*order.Order, error) {
			return &order.Order{ID: id, CustomerID: 7, OrderDate: "2024-05-01", TotalAmount: 13.0}, nil
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodGet, "/orders/3", "")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp order.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp.ID)
	assert.Equal(t, 13.0, resp.TotalAmount)
}

func TestGetOrder_NotFound(t *testing.T) {
	rr := doRequest(t, newTestRouter(&fakeOrderRepo{}), http.MethodGet, "/orders/42", "")

	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Order not found", resp["error"])
}

func TestGetOrder_InvalidID(t *testing.T) {
	rr := doRequest(t, newTestRouter(&fakeOrderRepo{}), http.MethodGet, "/orders/abc", "")

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListOrders_EmptyIsJSONArray(t *testing.T) {
	rr := doRequest(t, newTestRouter(&fakeOrderRepo{}), http.MethodGet, "/orders", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestCreateOrder_ReturnsAssignedID(t *testing.T) {
	repo := &fakeOrderRepo{
		createOrderFunc: func(ctx context.Context, o *order.Order) error {
			o.ID = 3
			return nil
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodPost, "/orders",
		`{"customer_id": 7, "order_date": "2024-05-01"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp order.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp.ID)
	assert.Equal(t, int64(7), resp.CustomerID)
}

func TestUpdateOrder_NotFound(t *testing.T) {
	repo := &fakeOrderRepo{
		updateOrderFunc: func(ctx context.Context, o *order.Order) error {
			return order.ErrOrderNotFound
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodPut, "/orders/42",
		`{"customer_id": 7, "order_date": "2024-05-01", "total_amount": 5}`)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteOrder_Success(t *testing.T) {
	var deleted int64
	repo := &fakeOrderRepo{
		deleteOrderFunc: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodDelete, "/orders/3", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(3), deleted)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Order deleted", resp["message"])
}

func TestCreateItemForOrder_PathOverridesBody(t *testing.T) {
	var created order.Item
	repo := &fakeOrderRepo{
		createItemFunc: func(ctx context.Context, it *order.Item) error {
			it.ID = 9
			created = *it
			return nil
		},
	}

	// Body claims order 99; the path order id must win.
	rr := doRequest(t, newTestRouter(repo), http.MethodPost, "/orders/3/items",
		`{"order_id": 99, "product_id": 1, "quantity": 2, "unit_price": 5.0}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(3), created.OrderID)

	var resp order.Item
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp.OrderID)
	assert.Equal(t, int64(9), resp.ID)
}

func TestUpdateItem_NotFound(t *testing.T) {
	repo := &fakeOrderRepo{
		updateItemFunc: func(ctx context.Context, it *order.Item) error {
			return order.ErrItemNotFound
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodPut, "/order-items/42",
		`{"order_id": 1, "product_id": 1, "quantity": 1, "unit_price": 1.0}`)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Order item not found", resp["error"])
}

func TestDeleteItem_NotFound(t *testing.T) {
	repo := &fakeOrderRepo{
		deleteItemFunc: func(ctx context.Context, id int64) error {
			return order.ErrItemNotFound
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodDelete, "/order-items/42", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateOrderWithItems_Success(t *testing.T) {
	repo := &fakeOrderRepo{
		createOrderWithItemsFunc: func(ctx context.Context, customerID int64, orderDate string, items []order.Item) (*order.OrderWithItems, error) {
			require.Len(t, items, 2)
			return &order.OrderWithItems{
				OrderID:     3,
				CustomerID:  customerID,
				OrderDate:   orderDate,
				TotalAmount: 13.0,
				Items: []order.Item{
					{ID: 10, OrderID: 3, ProductID: 1, Quantity: 2, UnitPrice: 5.0},
					{ID: 11, OrderID: 3, ProductID: 2, Quantity: 1, UnitPrice: 3.0},
				},
			}, nil
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodPost, "/orders/with-items",
		`{"customer_id": 7, "order_date": "2024-05-01", "items": [
			{"product_id": 1, "quantity": 2, "unit_price": 5.0},
			{"product_id": 2, "quantity": 1, "unit_price": 3.0}
		]}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp order.OrderWithItems
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 13.0, resp.TotalAmount)
	assert.Len(t, resp.Items, 2)
}

func TestCreateOrderWithItems_MissingUnitPrice(t *testing.T) {
	called := false
	repo := &fakeOrderRepo{
		createOrderWithItemsFunc: func(ctx context.Context, customerID int64, orderDate string, items []order.Item) (*order.OrderWithItems, error) {
			called = true
			return nil, nil
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodPost, "/orders/with-items",
		`{"customer_id": 7, "order_date": "2024-05-01", "items": [
			{"product_id": 1, "quantity": 2}
		]}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, called, "repository must not be reached on malformed input")

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "unit_price")
}

func TestCreateOrderWithItems_MissingCustomerID(t *testing.T) {
	rr := doRequest(t, newTestRouter(&fakeOrderRepo{}), http.MethodPost, "/orders/with-items",
		`{"order_date": "2024-05-01", "items": []}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetStats_EmptyDatabase(t *testing.T) {
	repo := &fakeOrderRepo{
		statsFunc: func(ctx context.Context) (*order.Stats, error) {
			return &order.Stats{ProductStats: map[string]order.ProductStat{}}, nil
		},
	}

	rr := doRequest(t, newTestRouter(repo), http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, float64(0), resp["total_orders"])
	assert.Equal(t, float64(0), resp["total_revenue"])
	assert.Equal(t, map[string]any{}, resp["product_stats"])

	dateRange, ok := resp["date_range"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, dateRange["earliest_order"])
	assert.Nil(t, dateRange["latest_order"])
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	router := newTestRouter(&fakeOrderRepo{})

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
