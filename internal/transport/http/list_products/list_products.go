package listproducts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/appareldesk/storefront/internal/service/models/product"
	"github.com/gorilla/schema"
)

// defaultLowStockThreshold mirrors the stock alert default of the admin
// dashboard.
const defaultLowStockThreshold = 10

type service interface {
	GetProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}

type queryProductsRequest struct {
	Ids    []int64 `schema:"ids,omitempty"`
	Limit  int     `schema:"limit,omitempty"`
	Offset int     `schema:"offset,omitempty"`
}

func (q *queryProductsRequest) ToModel() *product.QueryProductsModel {
	return &product.QueryProductsModel{
		Ids:    q.Ids,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}

func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryProductsRequest{}
	err := decoder.Decode(query, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	products, err := service.GetProducts(r.Context(), query.ToModel())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting products", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(products); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}

// lowStockReport is the admin report of products at or below a threshold.
type lowStockReport struct {
	Products   []product.Product `json:"products"`
	TotalCount int               `json:"totalCount"`
	Threshold  int               `json:"threshold"`
}

func ListLowStock(w http.ResponseWriter, r *http.Request, service service) {
	threshold := defaultLowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid threshold", http.StatusBadRequest)

			return
		}
		threshold = parsed
	}

	products, err := service.GetProducts(r.Context(), &product.QueryProductsModel{
		MaxAvailable: &threshold,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting low stock products", "error", err)

		return
	}

	report := lowStockReport{
		Products:   products,
		TotalCount: len(products),
		Threshold:  threshold,
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
