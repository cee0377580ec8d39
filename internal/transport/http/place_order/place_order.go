package placeorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/appareldesk/storefront/internal/service/services/ordersvc"
	"github.com/appareldesk/storefront/internal/transport/http/apierr"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(
		ctx context.Context,
		customerID int64,
		lines []ordersvc.LineRequest,
		autoInvoice bool,
	) (*ordersvc.PlaceOrderResult, error)
}

// itemInPlaceOrderRequest represents one cart item in a place order request.
type itemInPlaceOrderRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gt=0"`
}

// placeOrderRequest represents a place order request. AutoInvoice defaults
// to true when omitted.
type placeOrderRequest struct {
	CustomerID  int64                     `json:"customerId" validate:"gt=0"`
	Items       []itemInPlaceOrderRequest `json:"items"      validate:"required,min=1,dive"`
	AutoInvoice *bool                     `json:"autoInvoice"`
}

// Validate validates the place order request.
func (r *placeOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *placeOrderRequest) toLineRequests() []ordersvc.LineRequest {
	lines := make([]ordersvc.LineRequest, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, ordersvc.LineRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return lines
}

// placeOrderResponse mirrors the success shape of the placement endpoint.
type placeOrderResponse struct {
	Status      string `json:"status"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	TotalCents  int64  `json:"total"`
	Currency    string `json:"currency"`
}

// PlaceOrder handles the order placement request.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := placeOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for place order", "error", err)

		return
	}

	autoInvoice := true
	if req.AutoInvoice != nil {
		autoInvoice = *req.AutoInvoice
	}

	result, err := service.PlaceOrder(r.Context(), req.CustomerID, req.toLineRequests(), autoInvoice)
	if err != nil {
		apierr.Write(w, err)
		slog.Error("Error placing order", "customer_id", req.CustomerID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(placeOrderResponse{
		Status:      "success",
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		TotalCents:  result.TotalCents,
		Currency:    result.Currency.String(),
	}); err != nil {
		slog.Error("Error sending response for place order", "error", err)
	}
}
