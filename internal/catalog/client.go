package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Cache is the read-through catalog cache. A nil Cache disables caching.
type Cache interface {
	CachedCatalog(ctx context.Context) ([]models.Product, bool, error)
	CacheCatalog(ctx context.Context, products []models.Product) error
}

// Client fetches product records and auxiliary display content from the
// backend catalog API. Products are immutable once fetched; this client
// owns them and everything else holds references.
type Client struct {
	baseURL string
	http    *http.Client
	cache   Cache
	logger  *zap.Logger
}

// NewClient creates a new catalog client. cache may be nil.
func NewClient(baseURL string, timeout time.Duration, cache Cache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
		logger:  util.GetLogger(),
	}
}

// Products returns the full product catalog, served from cache when fresh.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "catalog.Client.Products")
	defer span.End()

	if c.cache != nil {
		cached, ok, err := c.cache.CachedCatalog(ctx)
		if err != nil {
			c.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if ok {
			util.CatalogCacheHitsTotal.Inc()
			return cached, nil
		}
		util.CatalogCacheMissesTotal.Inc()
	}

	start := time.Now()
	var products []models.Product
	if err := c.getJSON(ctx, "/api/customerOrderSave/getAllData", &products); err != nil {
		return nil, err
	}
	util.CatalogFetchLatency.Observe(time.Since(start).Seconds())

	// Records without a usable id cannot be carted or searched.
	valid := products[:0]
	for _, p := range products {
		if p.ID > 0 {
			valid = append(valid, p)
		}
	}
	products = valid

	if c.cache != nil {
		if err := c.cache.CacheCatalog(ctx, products); err != nil {
			c.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}

	c.logger.Info("Catalog fetched", zap.Int("products", len(products)))
	return products, nil
}

// ProductByID resolves a single product against the catalog.
func (c *Client) ProductByID(ctx context.Context, id int64) (models.Product, bool, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return models.Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return models.Product{}, false, nil
}

// Banners fetches the configured storefront banners.
func (c *Client) Banners(ctx context.Context) ([]models.Banner, error) {
	ctx, span := util.StartSpan(ctx, "catalog.Client.Banners")
	defer span.End()

	var banners []models.Banner
	if err := c.getJSON(ctx, "/api/configuration/getAllBanners", &banners); err != nil {
		return nil, err
	}
	return banners, nil
}

// Comments fetches customer testimonials.
func (c *Client) Comments(ctx context.Context) ([]models.Comment, error) {
	ctx, span := util.StartSpan(ctx, "catalog.Client.Comments")
	defer span.End()

	var comments []models.Comment
	if err := c.getJSON(ctx, "/api/configuration/getAllComments", &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
