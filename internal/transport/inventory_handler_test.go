package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-api/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryHandler_Endpoints(t *testing.T) {
	low := sampleProduct("Anchor", true)
	low.Stock = 0
	svc := &fakeInventoryService{
		lowStock:  []*domain.Product{low},
		valuation: decimal.RequireFromString("225.00"),
		summary: &domain.InventorySummary{
			TotalActiveProducts: 2,
			TotalCategories:     3,
			TotalValuation:      decimal.RequireFromString("225"),
			LowStockCount:       1,
		},
	}
	router := routerFor(NewInventoryHandler(svc, nopLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/low-stock", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Anchor", products[0]["name"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/valuation", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var valuation map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &valuation))
	assert.Equal(t, "225", valuation["valuation"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, float64(2), summary["total_active_products"])
	assert.Equal(t, float64(3), summary["total_categories"])
	assert.Equal(t, float64(1), summary["low_stock_count"])
}

func TestInventoryHandler_EmptyLowStockIsArray(t *testing.T) {
	router := routerFor(NewInventoryHandler(&fakeInventoryService{lowStock: []*domain.Product{}}, nopLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/low-stock", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestInventoryHandler_StoreFailure(t *testing.T) {
	router := routerFor(NewInventoryHandler(&fakeInventoryService{err: assert.AnError}, nopLogger()))

	for _, path := range []string{"/api/inventory/low-stock", "/api/inventory/valuation", "/api/inventory/summary"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
	}
}
