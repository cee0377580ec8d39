package getinvoice

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/appareldesk/storefront/internal/service/models/invoice"
	"github.com/appareldesk/storefront/internal/transport/http/apierr"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error)
}

func GetInvoice(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "invoiceID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)

		return
	}

	inv, err := service.GetInvoice(r.Context(), id)
	if err != nil {
		apierr.Write(w, err)
		slog.Error("Error getting invoice", "invoice_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(inv); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
