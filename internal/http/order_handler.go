package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/onestomanys/orders-api/internal/order"
)

type OrderHandler struct {
	repo order.Repository
}

func NewOrderHandler(repo order.Repository) *OrderHandler {
	return &OrderHandler{repo: repo}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// respondOrderError maps repository errors onto the HTTP taxonomy:
// not-found sentinels become 404 with an entity-specific message,
// everything else is a generic 500.
func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "Order item not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.ListOrders(r.Context())
	if err != nil {
		respondOrderError(w, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.repo.GetOrder(r.Context(), id)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.CreateOrder(r.Context(), &o); err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	o.ID = id

	if err := h.repo.UpdateOrder(r.Context(), &o); err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.repo.DeleteOrder(r.Context(), id); err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}

func (h *OrderHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListItems(r.Context())
	if err != nil {
		respondOrderError(w, err)
		return
	}
	if items == nil {
		items = []order.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *OrderHandler) ListItemsForOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	items, err := h.repo.ListItemsForOrder(r.Context(), orderID)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	if items == nil {
		items = []order.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *OrderHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	it, err := h.repo.GetItem(r.Context(), id)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *OrderHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var it order.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.CreateItem(r.Context(), &it); err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// CreateItemForOrder creates an item under the order from the path; the
// path id wins over any order_id in the body.
func (h *OrderHandler) CreateItemForOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var it order.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it.OrderID = orderID

	if err := h.repo.CreateItem(r.Context(), &it); err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *OrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var it order.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it.ID = id

	if err := h.repo.UpdateItem(r.Context(), &it); err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *OrderHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.repo.DeleteItem(r.Context(), id); err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order item deleted"})
}

type createOrderWithItemsRequest struct {
	CustomerID *int64                 `json:"customer_id"`
	OrderDate  *string                `json:"order_date"`
	Items      []orderItemFieldsInput `json:"items"`
}

// orderItemFieldsInput decodes item fields as pointers so a missing field
// is distinguishable from a zero value.
type orderItemFieldsInput struct {
	ProductID *int64   `json:"product_id"`
	Quantity  *int64   `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

func (req *createOrderWithItemsRequest) validate() ([]order.Item, error) {
	if req.CustomerID == nil {
		return nil, errors.New("missing customer_id")
	}
	if req.OrderDate == nil {
		return nil, errors.New("missing order_date")
	}

	items := make([]order.Item, 0, len(req.Items))
	for i, in := range req.Items {
		switch {
		case in.ProductID == nil:
			return nil, fmt.Errorf("items[%d]: missing product_id", i)
		case in.Quantity == nil:
			return nil, fmt.Errorf("items[%d]: missing quantity", i)
		case in.UnitPrice == nil:
			return nil, fmt.Errorf("items[%d]: missing unit_price", i)
		}
		items = append(items, order.Item{
			ProductID: *in.ProductID,
			Quantity:  *in.Quantity,
			UnitPrice: *in.UnitPrice,
		})
	}
	return items, nil
}

// CreateOrderWithItems creates an order and its items as one atomic unit.
// Malformed input fails the whole batch with 400 and nothing is persisted.
func (h *OrderHandler) CreateOrderWithItems(w http.ResponseWriter, r *http.Request) {
	var req createOrderWithItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.repo.CreateOrderWithItems(r.Context(), *req.CustomerID, *req.OrderDate, items)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
