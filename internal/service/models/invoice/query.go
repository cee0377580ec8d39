package invoice

// QueryInvoicesModel represents filter parameters for querying invoices.
type QueryInvoicesModel struct {
	Ids         []int64 `json:"ids,omitempty"`
	OrderIds    []int64 `json:"orderIds,omitempty"`
	CustomerIds []int64 `json:"customerIds,omitempty"`
	Limit       int     `json:"limit,omitempty"`
	Offset      int     `json:"offset,omitempty"`
}
