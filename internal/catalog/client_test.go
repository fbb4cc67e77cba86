package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogBody = `[
	{
		"product_id": 7,
		"product_name": "Herbal Shampoo",
		"product_price": 450,
		"discount": 380,
		"weight": 200,
		"amount": 1,
		"unit_type": "ml",
		"image_url": "https://cdn/shampoo.jpg",
		"description": "Gentle herbal shampoo",
		"category": "Hair Care",
		"tags": ["herbal", "shampoo"]
	},
	{
		"product_id": 0,
		"product_name": "broken record"
	}
]`

type fakeCache struct {
	products []models.Product
	stored   []models.Product
}

func (f *fakeCache) CachedCatalog(_ context.Context) ([]models.Product, bool, error) {
	return f.products, f.products != nil, nil
}

func (f *fakeCache) CacheCatalog(_ context.Context, products []models.Product) error {
	f.stored = products
	return nil
}

func TestProductsMapsWireShapeAndDropsInvalid(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/api/customerOrderSave/getAllData", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	products, err := client.Products(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1, "records without a usable id are dropped")
	p := products[0]
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Herbal Shampoo", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(450)))
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(380)))
	assert.Equal(t, []string{"herbal", "shampoo"}, p.Tags)
	assert.Equal(t, 1, hits)
}

func TestProductsServedFromCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be hit on a cache hit")
	}))
	defer srv.Close()

	cache := &fakeCache{products: []models.Product{{ID: 1, Name: "Cached"}}}
	client := NewClient(srv.URL, 5*time.Second, cache)

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cached", products[0].Name)
}

func TestProductsPopulatesCacheOnMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(catalogBody))
	}))
	defer srv.Close()

	cache := &fakeCache{}
	client := NewClient(srv.URL, 5*time.Second, cache)

	_, err := client.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, cache.stored, 1)
}

func TestProductByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(catalogBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)

	p, ok, err := client.ProductByID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Herbal Shampoo", p.Name)

	_, ok, err = client.ProductByID(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	_, err := client.Products(context.Background())
	assert.Error(t, err)
}

func TestBannersAndComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/configuration/getAllBanners":
			_, _ = w.Write([]byte(`[{"banner_id": 1, "image_url": "https://cdn/b1.jpg", "link": "/sale"}]`))
		case "/api/configuration/getAllComments":
			_, _ = w.Write([]byte(`[{"comment_id": 2, "author": "Amara", "content": "Great store"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)

	banners, err := client.Banners(context.Background())
	require.NoError(t, err)
	require.Len(t, banners, 1)
	assert.Equal(t, "/sale", banners[0].Link)

	comments, err := client.Comments(context.Background())
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Amara", comments[0].Author)
}
