package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/order"
	"storefront-service/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products []models.Product
}

func (f *fakeCatalog) Products(_ context.Context) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) ProductByID(_ context.Context, id int64) (models.Product, bool, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return models.Product{}, false, nil
}

func (f *fakeCatalog) Banners(_ context.Context) ([]models.Banner, error)   { return nil, nil }
func (f *fakeCatalog) Comments(_ context.Context) ([]models.Comment, error) { return nil, nil }

type fakeOrders struct {
	order *models.Order
}

func (f *fakeOrders) GetOrder(_ context.Context, _ string) (*models.Order, error) {
	return f.order, nil
}

type fakeUpdater struct{ err error }

func (f *fakeUpdater) UpdateStatus(_ context.Context, _, _ string) error { return f.err }

type fakeSnapshots struct {
	created []*models.CheckoutSnapshot
}

func (f *fakeSnapshots) CreateCheckoutSnapshot(_ context.Context, snap *models.CheckoutSnapshot) error {
	f.created = append(f.created, snap)
	return nil
}

func (f *fakeSnapshots) GetSnapshotsBySessionID(_ context.Context, sessionID string) ([]models.CheckoutSnapshot, error) {
	var out []models.CheckoutSnapshot
	for _, snap := range f.created {
		if snap.SessionID == sessionID {
			out = append(out, *snap)
		}
	}
	return out, nil
}

func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Shampoo", Price: decimal.NewFromInt(100), Discount: decimal.NewFromInt(80)},
		{ID: 2, Name: "Sharp Comb", Price: decimal.NewFromInt(50)},
		{ID: 3, Name: "Brush", Price: decimal.NewFromInt(60)},
	}
}

func newTestRouter(t *testing.T, catalog *fakeCatalog, orders *fakeOrders, snapshots *fakeSnapshots) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	carts := cart.NewManager(nil, func(ctx context.Context, id int64) (models.Product, bool) {
		p, ok, _ := catalog.ProductByID(ctx, id)
		return p, ok
	})
	canceller := order.NewCancelCoordinator(&fakeUpdater{}, nil)

	var snapStore SnapshotStore
	if snapshots != nil {
		snapStore = snapshots
	}

	h := NewHandler(catalog, search.NewEngine(), carts, orders, canceller, snapStore, nil)
	router := gin.New()
	h.SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, session, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestAddCartItemMergesAndComputesSubtotal(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 1, "quantity": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 1, "quantity": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	lines := body["lines"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.Equal(t, float64(5), line["quantity"])
	// 5 x discounted price 80
	assert.Equal(t, "400", body["subtotal"])
}

func TestAddCartItemNonPositiveQuantityIsNoOp(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 1, "quantity": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["is_empty"])
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 99, "quantity": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCartItemZeroRemovesLine(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 1, "quantity": 2}`)
	rec, body := doJSON(t, router, http.MethodPut, "/api/v1/cart/items/1", "sess-1", `{"quantity": 0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["is_empty"])
}

func TestSessionsAreIsolated(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-a", `{"product_id": 1, "quantity": 1}`)
	_, body := doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-b", "")

	assert.Equal(t, true, body["is_empty"])
}

func TestSessionMintedWhenAbsent(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(sessionHeader))
}

func TestCheckoutEmptyCart(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "sess-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutPersistsSnapshotAndClearsCart(t *testing.T) {
	snapshots := &fakeSnapshots{}
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, snapshots)

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 1, "quantity": 2}`)
	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 2, "quantity": 1}`)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "sess-1", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, body["snapshot_id"])

	require.Len(t, snapshots.created, 1)
	snap := snapshots.created[0]
	assert.Equal(t, "sess-1", snap.SessionID)
	assert.Len(t, snap.Lines, 2)
	// 2 x 80 + 1 x 50
	assert.True(t, snap.Subtotal.Equal(decimal.NewFromInt(210)))

	_, cartBody := doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-1", "")
	assert.Equal(t, true, cartBody["is_empty"])
}

func TestCheckoutHistoryScopedToSession(t *testing.T) {
	snapshots := &fakeSnapshots{}
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, snapshots)

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1", `{"product_id": 1, "quantity": 2}`)
	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "sess-1", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/checkout/history", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := body["snapshots"].([]interface{})
	require.Len(t, history, 1)
	snap := history[0].(map[string]interface{})
	assert.Equal(t, "sess-1", snap["session_id"])

	rec, body = doJSON(t, router, http.MethodGet, "/api/v1/checkout/history", "sess-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["snapshots"])
}

func TestSearchEndpointRanksAndCounts(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/search?q=sh", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// "Brush" matches the "sh" substring too, ranked after the prefix matches.
	results := body["results"].([]interface{})
	require.Len(t, results, 3)
	first := results[0].(map[string]interface{})
	second := results[1].(map[string]interface{})
	third := results[2].(map[string]interface{})
	assert.Equal(t, "Shampoo", first["product_name"])
	assert.Equal(t, "Sharp Comb", second["product_name"])
	assert.Equal(t, "Brush", third["product_name"])
	assert.Equal(t, float64(3), body["total"])
}

func TestSearchEndpointEmptyQuery(t *testing.T) {
	router := newTestRouter(t, &fakeCatalog{products: testProducts()}, &fakeOrders{}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/search?q=", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["results"])
	assert.Equal(t, float64(0), body["total"])
}

func TestGetOrderReportsCancellability(t *testing.T) {
	o := &models.Order{
		ID:        "ORD-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		Status:    models.StatusPending,
	}
	router := newTestRouter(t, &fakeCatalog{}, &fakeOrders{order: o}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/orders/ORD-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["cancellable"])
}

func TestCancelOrderSucceeds(t *testing.T) {
	o := &models.Order{
		ID:        "ORD-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		Status:    models.StatusPending,
	}
	router := newTestRouter(t, &fakeCatalog{}, &fakeOrders{order: o}, nil)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/orders/ORD-1/cancel", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := body["order"].(map[string]interface{})
	assert.Equal(t, "cancelled", got["status"])
}

func TestCancelOrderRefusedForNonPending(t *testing.T) {
	o := &models.Order{
		ID:        "ORD-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		Status:    models.StatusProcessing,
	}
	router := newTestRouter(t, &fakeCatalog{}, &fakeOrders{order: o}, nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/orders/ORD-1/cancel", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCancelOrderRefusedOutsideWindow(t *testing.T) {
	o := &models.Order{
		ID:        "ORD-1",
		CreatedAt: time.Now().Add(-25 * time.Hour),
		Status:    models.StatusPending,
	}
	router := newTestRouter(t, &fakeCatalog{}, &fakeOrders{order: o}, nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/orders/ORD-1/cancel", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
