package cart

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Persister saves and loads the serialized cart line refs for a session.
type Persister interface {
	SaveCart(ctx context.Context, sessionID string, refs []models.CartLineRef) error
	LoadCart(ctx context.Context, sessionID string) ([]models.CartLineRef, error)
	DeleteCart(ctx context.Context, sessionID string) error
}

// ProductLookup resolves a product id against the current catalog.
type ProductLookup func(ctx context.Context, productID int64) (models.Product, bool)

// Manager owns one cart store per session. Sessions are re-hydrated from
// the persister against a fresh catalog lookup on first access, and every
// mutation is persisted in the background.
type Manager struct {
	mu        sync.Mutex
	carts     map[string]*Store
	persister Persister // nil disables persistence
	lookup    ProductLookup
	logger    *zap.Logger
}

// NewManager creates a new session manager
func NewManager(persister Persister, lookup ProductLookup) *Manager {
	return &Manager{
		carts:     make(map[string]*Store),
		persister: persister,
		lookup:    lookup,
		logger:    util.GetLogger(),
	}
}

// Cart returns the store for a session, creating and re-hydrating it on
// first access.
func (m *Manager) Cart(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	if store, ok := m.carts[sessionID]; ok {
		m.mu.Unlock()
		return store
	}
	store := NewStore()
	m.carts[sessionID] = store
	m.mu.Unlock()

	if m.persister != nil {
		refs, err := m.persister.LoadCart(ctx, sessionID)
		if err != nil {
			m.logger.Warn("Failed to load persisted cart",
				zap.String("session_id", sessionID),
				zap.Error(err))
		} else if len(refs) > 0 {
			store.Restore(refs, func(productID int64) (models.Product, bool) {
				return m.lookup(ctx, productID)
			})
		}

		store.Subscribe(func(lines []models.CartLine) {
			refs := make([]models.CartLineRef, 0, len(lines))
			for _, line := range lines {
				refs = append(refs, models.CartLineRef{ProductID: line.Product.ID, Quantity: line.Quantity})
			}
			go m.persist(sessionID, refs)
		})
	}

	return store
}

// Forget clears a session after checkout hand-off: the persisted copy is
// deleted and the in-memory store released.
func (m *Manager) Forget(ctx context.Context, sessionID string) {
	m.mu.Lock()
	delete(m.carts, sessionID)
	m.mu.Unlock()

	if m.persister != nil {
		if err := m.persister.DeleteCart(ctx, sessionID); err != nil {
			m.logger.Warn("Failed to delete persisted cart",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}
}

func (m *Manager) persist(sessionID string, refs []models.CartLineRef) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.persister.SaveCart(ctx, sessionID, refs); err != nil {
		m.logger.Error("Failed to persist cart",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
