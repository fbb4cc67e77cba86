package cart

import (
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
)

// Store is the single source of truth for one shopping cart: an ordered
// sequence of (product, quantity) lines with at most one line per product
// id and every quantity >= 1. Insertion order is preserved for display.
// Every mutation notifies subscribed observers synchronously so consumers
// stay visually consistent. No network calls originate here; cart state is
// purely local until checkout reads the final line list.
type Store struct {
	mu        sync.Mutex
	lines     []models.CartLine
	observers []func([]models.CartLine)
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{}
}

// Subscribe registers an observer called synchronously after every mutation
// with a snapshot of the current line list.
func (s *Store) Subscribe(fn func([]models.CartLine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// AddToCart adds quantity of product to the cart, merging into the existing
// line when one exists. Quantities <= 0 are rejected as no-ops: cart
// mutations are best-effort UI operations and never return errors.
func (s *Store) AddToCart(product models.Product, quantity int) {
	if quantity <= 0 {
		util.CartMutationsRejectedTotal.WithLabelValues("non_positive_quantity").Inc()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID == product.ID {
			s.lines[i].Quantity += quantity
			s.notifyLocked()
			return
		}
	}
	s.lines = append(s.lines, models.CartLine{Product: product, Quantity: quantity})
	util.CartLinesAddedTotal.Inc()
	s.notifyLocked()
}

// UpdateQuantity sets the line's quantity exactly. A quantity <= 0 removes
// the line entirely; a zero-quantity line is never stored. No-op when the
// product is not in the cart.
func (s *Store) UpdateQuantity(productID int64, newQuantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID != productID {
			continue
		}
		if newQuantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity = newQuantity
		}
		s.notifyLocked()
		return
	}
}

// RemoveFromCart deletes the line if present; silent no-op otherwise.
func (s *Store) RemoveFromCart(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.notifyLocked()
			return
		}
	}
}

// ClearCart empties the cart, invoked after a successful checkout hand-off.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.notifyLocked()
}

// Subtotal sums effective price x quantity across all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Lines returns a snapshot copy of the line sequence in insertion order.
// Callers must treat it as read-only; all writes go through the store API.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Snapshot returns the persisted form of the cart: (product id, quantity)
// pairs, the unit to serialize across sessions.
func (s *Store) Snapshot() []models.CartLineRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := make([]models.CartLineRef, 0, len(s.lines))
	for _, line := range s.lines {
		refs = append(refs, models.CartLineRef{ProductID: line.Product.ID, Quantity: line.Quantity})
	}
	return refs
}

// Restore re-hydrates persisted line refs against a fresh catalog lookup.
// Refs whose product no longer exists, and refs with non-positive
// quantities, are dropped. Replaces the current contents.
func (s *Store) Restore(refs []models.CartLineRef, lookup func(productID int64) (models.Product, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	seen := make(map[int64]bool, len(refs))
	for _, ref := range refs {
		if ref.Quantity <= 0 || seen[ref.ProductID] {
			continue
		}
		product, ok := lookup(ref.ProductID)
		if !ok {
			continue
		}
		seen[ref.ProductID] = true
		s.lines = append(s.lines, models.CartLine{Product: product, Quantity: ref.Quantity})
	}
	s.notifyLocked()
}

func (s *Store) snapshotLocked() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) notifyLocked() {
	snapshot := s.snapshotLocked()
	for _, fn := range s.observers {
		fn(snapshot)
	}
}
