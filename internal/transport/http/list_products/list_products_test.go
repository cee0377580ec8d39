package listproducts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	products  []product.Product
	gotFilter *product.QueryProductsModel
}

func (f *fakeService) GetProducts(
	_ context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	f.gotFilter = filter

	return f.products, nil
}

func TestListLowStockUsesDefaultThreshold(t *testing.T) {
	svc := &fakeService{products: []product.Product{
		{ID: 10, Name: "belt", AvailableQty: 2, PriceCurrency: currency.CurrencyUSD},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/products/low-stock", nil)
	w := httptest.NewRecorder()
	ListLowStock(w, req, svc)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotFilter.MaxAvailable)
	assert.Equal(t, defaultLowStockThreshold, *svc.gotFilter.MaxAvailable)

	var report lowStockReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TotalCount)
	assert.Equal(t, defaultLowStockThreshold, report.Threshold)
	require.Len(t, report.Products, 1)
	assert.EqualValues(t, 10, report.Products[0].ID)
}

func TestListLowStockCustomThreshold(t *testing.T) {
	svc := &fakeService{}

	req := httptest.NewRequest(http.MethodGet, "/api/products/low-stock?threshold=3", nil)
	w := httptest.NewRecorder()
	ListLowStock(w, req, svc)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotFilter.MaxAvailable)
	assert.Equal(t, 3, *svc.gotFilter.MaxAvailable)
}

func TestListLowStockRejectsBadThreshold(t *testing.T) {
	for _, raw := range []string{"abc", "-1"} {
		svc := &fakeService{}

		req := httptest.NewRequest(http.MethodGet, "/api/products/low-stock?threshold="+raw, nil)
		w := httptest.NewRecorder()
		ListLowStock(w, req, svc)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.gotFilter)
	}
}

func TestListProductsPassesFilter(t *testing.T) {
	svc := &fakeService{products: []product.Product{}}

	req := httptest.NewRequest(http.MethodGet, "/api/products?ids=10&ids=20&limit=5", nil)
	w := httptest.NewRecorder()
	ListProducts(w, req, svc)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotFilter)
	assert.Equal(t, []int64{10, 20}, svc.gotFilter.Ids)
	assert.Equal(t, 5, svc.gotFilter.Limit)
}
