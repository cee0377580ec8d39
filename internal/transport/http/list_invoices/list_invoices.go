package listinvoices

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/appareldesk/storefront/internal/service/models/invoice"
	"github.com/gorilla/schema"
)

type service interface {
	GetInvoices(ctx context.Context, filter *invoice.QueryInvoicesModel) ([]invoice.Invoice, error)
}

type queryInvoicesRequest struct {
	Ids         []int64 `schema:"ids,omitempty"`
	OrderIds    []int64 `schema:"orderIds,omitempty"`
	CustomerIds []int64 `schema:"customerIds,omitempty"`
	Limit       int     `schema:"limit,omitempty"`
	Offset      int     `schema:"offset,omitempty"`
}

func (q *queryInvoicesRequest) ToModel() *invoice.QueryInvoicesModel {
	return &invoice.QueryInvoicesModel{
		Ids:         q.Ids,
		OrderIds:    q.OrderIds,
		CustomerIds: q.CustomerIds,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
}

func ListInvoices(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryInvoicesRequest{}
	err := decoder.Decode(query, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	invoices, err := service.GetInvoices(r.Context(), query.ToModel())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting invoices", "error", err)

		return
	}

	if invoices == nil {
		invoices = []invoice.Invoice{}
	}

	if err := json.NewEncoder(w).Encode(invoices); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
