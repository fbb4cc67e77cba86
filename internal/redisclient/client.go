package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const catalogKey = "catalog:products"

// Client wraps Redis for the two things the storefront persists: cart line
// refs per session and a read-through copy of the product catalog.
type Client struct {
	rdb        *redis.Client
	cartTTL    time.Duration
	catalogTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, cartTTL, catalogTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, cartTTL: cartTTL, catalogTTL: catalogTTL}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// SaveCart stores a session's cart line refs with the configured TTL.
// An empty cart deletes the key rather than storing an empty list.
func (c *Client) SaveCart(ctx context.Context, sessionID string, refs []models.CartLineRef) error {
	if len(refs) == 0 {
		return c.DeleteCart(ctx, sessionID)
	}

	payload, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return c.rdb.Set(ctx, cartKey(sessionID), payload, c.cartTTL).Err()
}

// LoadCart retrieves a session's persisted cart line refs. A missing key
// yields an empty cart, not an error.
func (c *Client) LoadCart(ctx context.Context, sessionID string) ([]models.CartLineRef, error) {
	payload, err := c.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var refs []models.CartLineRef
	if err := json.Unmarshal(payload, &refs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return refs, nil
}

// DeleteCart removes a session's persisted cart.
func (c *Client) DeleteCart(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, cartKey(sessionID)).Err()
}

// CacheCatalog stores the fetched product list with the catalog TTL.
func (c *Client) CacheCatalog(ctx context.Context, products []models.Product) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return c.rdb.Set(ctx, catalogKey, payload, c.catalogTTL).Err()
}

// CachedCatalog retrieves the cached product list. A cache miss returns
// (nil, false, nil).
func (c *Client) CachedCatalog(ctx context.Context) ([]models.Product, bool, error) {
	payload, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []models.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return products, true, nil
}

// InvalidateCatalog drops the cached product list.
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}
