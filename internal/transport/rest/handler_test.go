package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ventas/internal/app"
	"ventas/internal/domain"
	"ventas/internal/storage"
	"ventas/internal/store"
	"ventas/pkg/bootstrap"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, *app.Dependencies) {
	t.Helper()
	deps := app.SetupDependencies(context.Background(), storage.NewMemory(), bootstrap.NewTestLogger())
	return app.SetupHttpHandler(deps), deps
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func setDisplayName(t *testing.T, handler http.Handler) {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPut, "/api/v1/session", map[string]string{"name": "Maria"})
	require.Equal(t, http.StatusOK, rec.Code)
}

type cartViewDto struct {
	Client       *domain.Client     `json:"client"`
	Items        []domain.OrderItem `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	StockLimited bool               `json:"stock_limited"`
}

func TestGuard_RejectsWithoutDisplayName(t *testing.T) {
	handler, _ := newTestHandler(t)

	for _, path := range []string{"/api/v1/clients", "/api/v1/products", "/api/v1/orders", "/api/v1/cart", "/api/v1/reports"} {
		rec := doJSON(t, handler, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}

	// Session endpoints stay reachable
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_Lifecycle(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/session", map[string]string{"name": "Maria"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[map[string]string](t, rec)
	assert.Equal(t, "Maria", session["name"])

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/session", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClients_CreateValidateAndDelete(t *testing.T) {
	handler, _ := newTestHandler(t)
	setDisplayName(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/clients", map[string]string{
		"name": "Ana Gomez", "email": "ana@example.com", "phone": "555-0101",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.Client](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	// Malformed email is rejected before reaching the store
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/clients", map[string]string{
		"name": "Bad", "email": "not-an-email", "phone": "555",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Client](t, rec), 1)

	// Deleting an unknown ID is a silent no-op
	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/clients/no-such-id", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/clients/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients", nil)
	assert.Empty(t, decode[[]domain.Client](t, rec))
}

func TestProducts_SeededCatalogAndCreate(t *testing.T) {
	handler, _ := newTestHandler(t)
	setDisplayName(t, handler)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Product](t, rec), 20)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Nail Polish", "description": "Quick-dry.", "price": "3900", "stock": 12, "category": "Makeup",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Broken", "description": "Negative price.", "price": "-1", "stock": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_StockLimitedFlow(t *testing.T) {
	handler, deps := newTestHandler(t)
	setDisplayName(t, handler)
	ctx := context.Background()

	clientRec := deps.Clients.Add(ctx, store.ClientFields{Name: "Ana", Email: "ana@example.com", Phone: "1"})
	product := deps.Products.Add(ctx, store.ProductFields{
		Name:  "Serum",
		Price: decimal.RequireFromString("100"),
		Stock: 2,
	})

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/cart/client", map[string]string{"client_id": clientRec.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	// Requesting three units clamps to the available two
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[cartViewDto](t, rec)
	assert.True(t, view.StockLimited)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("200")))

	// The line sits at the stock limit; another add is rejected
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[domain.Order](t, rec)
	assert.Equal(t, clientRec.ID, order.ClientID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("200")))

	// The builder was cleared; a second checkout is rejected
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Order](t, rec), 1)
}

func TestCart_CheckoutWithoutClient(t *testing.T) {
	handler, deps := newTestHandler(t)
	setDisplayName(t, handler)

	product := deps.Products.Add(context.Background(), store.ProductFields{
		Name:  "Serum",
		Price: decimal.RequireFromString("100"),
		Stock: 5,
	})
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// No partial order was created
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders", nil)
	assert.Empty(t, decode[[]domain.Order](t, rec))
}

func TestCart_UnknownReferences(t *testing.T) {
	handler, _ := newTestHandler(t)
	setDisplayName(t, handler)

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/cart/client", map[string]string{"client_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": "ghost", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/cart/items/0", map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/cart/items/0", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports_DefaultWindow(t *testing.T) {
	handler, deps := newTestHandler(t)
	setDisplayName(t, handler)
	ctx := context.Background()

	client := deps.Clients.Add(ctx, store.ClientFields{Name: "Ana", Email: "ana@example.com", Phone: "1"})
	product := deps.Products.Add(ctx, store.ProductFields{
		Name:  "Serum",
		Price: decimal.RequireFromString("100"),
		Stock: 5,
	})

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/cart/client", map[string]string{"client_id": client.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Stats struct {
			TotalOrders    int             `json:"total_orders"`
			TotalRevenue   decimal.Decimal `json:"total_revenue"`
			TotalItemsSold int             `json:"total_items_sold"`
		} `json:"stats"`
		TopProducts []struct {
			ProductID string `json:"product_id"`
		} `json:"top_products"`
		ByDay        []struct{}     `json:"by_day"`
		StatusCounts map[string]int `json:"status_counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	assert.Equal(t, 1, summary.Stats.TotalOrders)
	assert.True(t, summary.Stats.TotalRevenue.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, 2, summary.Stats.TotalItemsSold)
	require.Len(t, summary.TopProducts, 1)
	assert.Equal(t, product.ID, summary.TopProducts[0].ProductID)
	assert.Len(t, summary.ByDay, 1)
	assert.Equal(t, map[string]int{domain.StatusPending: 1}, summary.StatusCounts)
}

func TestReports_InvalidDate(t *testing.T) {
	handler, _ := newTestHandler(t)
	setDisplayName(t, handler)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
