package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(logger *zap.Logger, oh *OrderHandler, mh *MasterHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/", rootHandler)
	r.Get("/health", healthHandler)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", oh.ListOrders)
		r.Post("/", oh.CreateOrder)
		r.Post("/with-items", oh.CreateOrderWithItems)
		r.Get("/{orderID}", oh.GetOrder)
		r.Put("/{orderID}", oh.UpdateOrder)
		r.Delete("/{orderID}", oh.DeleteOrder)
		r.Get("/{orderID}/items", oh.ListItemsForOrder)
		r.Post("/{orderID}/items", oh.CreateItemForOrder)
	})

	r.Route("/order-items", func(r chi.Router) {
		r.Get("/", oh.ListItems)
		r.Post("/", oh.CreateItem)
		r.Get("/{itemID}", oh.GetItem)
		r.Put("/{itemID}", oh.UpdateItem)
		r.Delete("/{itemID}", oh.DeleteItem)
	})

	r.Get("/stats", oh.GetStats)

	r.Route("/masters", func(r chi.Router) {
		r.Get("/", mh.ListMasters)
		r.Post("/", mh.CreateMaster)
		r.Get("/{masterID}", mh.GetMaster)
		r.Put("/{masterID}", mh.UpdateMaster)
		r.Delete("/{masterID}", mh.DeleteMaster)
		r.Get("/{masterID}/details", mh.ListDetailsForMaster)
	})

	r.Route("/details", func(r chi.Router) {
		r.Get("/", mh.ListDetails)
		r.Post("/", mh.CreateDetail)
		r.Get("/{detailID}", mh.GetDetail)
		r.Put("/{detailID}", mh.UpdateDetail)
		r.Delete("/{detailID}", mh.DeleteDetail)
	})

	return r
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to OnesToManys API!",
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "orders-api",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
