package getorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/appareldesk/storefront/internal/service/models/order"
	"github.com/appareldesk/storefront/internal/transport/http/apierr"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
}

func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	o, err := service.GetOrder(r.Context(), id)
	if err != nil {
		apierr.Write(w, err)
		slog.Error("Error getting order", "order_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(o); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
