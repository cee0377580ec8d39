package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/appareldesk/storefront/internal/service/models/customer"
	"github.com/appareldesk/storefront/internal/service/models/invoice"
	"github.com/appareldesk/storefront/internal/service/models/order"
	"github.com/appareldesk/storefront/internal/service/models/product"
	"github.com/appareldesk/storefront/internal/service/services/ordersvc"
)

// response is the error body returned to API clients.
type response struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// Write maps a service error onto the API error taxonomy: not_found (404),
// insufficient_stock (400, with the available quantity), conflict (409,
// retryable), invalid_customer (400), invalid_order (400). Anything
// unclassified is a 500.
func Write(w http.ResponseWriter, err error) {
	resp, status := classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("Error writing error response", "error", encodeErr)
	}
}

func classify(err error) (response, int) {
	var insufficient *product.InsufficientStockError
	if errors.As(err, &insufficient) {
		available := insufficient.Available

		return response{
			Error:     "insufficient_stock",
			Detail:    insufficient.Error(),
			ProductID: insufficient.ProductID,
			Available: &available,
		}, http.StatusBadRequest
	}

	switch {
	case errors.Is(err, product.ErrVersionConflict):
		return response{
			Error:  "conflict",
			Detail: "stock changed while processing, please retry",
		}, http.StatusConflict
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, invoice.ErrNotFound):
		return response{
			Error:  "not_found",
			Detail: err.Error(),
		}, http.StatusNotFound
	case errors.Is(err, customer.ErrInvalidCustomer):
		return response{
			Error:  "invalid_customer",
			Detail: err.Error(),
		}, http.StatusBadRequest
	case errors.Is(err, ordersvc.ErrEmptyOrder),
		errors.Is(err, ordersvc.ErrInvalidQuantity):
		return response{
			Error:  "invalid_order",
			Detail: err.Error(),
		}, http.StatusBadRequest
	default:
		return response{
			Error: "internal",
		}, http.StatusInternalServerError
	}
}
