// Package cart owns the per-session shopping cart. Lines keep insertion
// order and hold a snapshot of the product taken when it was first added.
// Every mutation re-persists the whole cart through the fallback store; an
// emptied cart deletes its key so "no stored cart" and "empty cart" are
// indistinguishable on the next load.
package cart

import (
	"context"

	"github.com/dajiagoods/storefront/internal/catalog"
	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/redisx"
)

type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Manager is loaded per request, mutated, and persisted back. It is not
// safe for concurrent use; concurrent sessions race at the store with
// last-writer-wins, which is accepted.
type Manager struct {
	sessionID string
	store     fallback.Store
	items     []Item
}

// Load restores the session's cart from the fallback store. A missing or
// malformed entry yields an empty cart, never an error.
func Load(ctx context.Context, store fallback.Store, sessionID string) *Manager {
	m := &Manager{sessionID: sessionID, store: store}
	var items []Item
	if err := store.Load(ctx, redisx.CartKey(sessionID), &items); err == nil {
		m.items = items
	}
	return m
}

// Add puts quantity units of product in the cart. The add is all-or-nothing:
// if the proposed line total would exceed the product's stock, or the product
// is not purchasable, the cart is left unchanged and false is returned. An
// existing line accumulates quantity; quantities are never clamped down to
// the ceiling.
func (m *Manager) Add(ctx context.Context, product catalog.Product, quantity int) (bool, error) {
	if quantity < 1 || !product.Purchasable() {
		return false, nil
	}
	for i, it := range m.items {
		if it.Product.ID == product.ID {
			proposed := it.Quantity + quantity
			if proposed > product.Stock {
				return false, nil
			}
			m.items[i].Quantity = proposed
			return true, m.persist(ctx)
		}
	}
	if quantity > product.Stock {
		return false, nil
	}
	m.items = append(m.items, Item{Product: product, Quantity: quantity})
	return true, m.persist(ctx)
}

// Remove deletes the line for productID. Removing an absent line is not an
// error.
func (m *Manager) Remove(ctx context.Context, productID string) error {
	kept := m.items[:0]
	for _, it := range m.items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(m.items) {
		return nil
	}
	m.items = kept
	return m.persist(ctx)
}

// UpdateQuantity sets the line for productID to exactly quantity. A quantity
// of zero or less removes the line. A missing line or an over-stock proposal
// leaves the cart unchanged.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) (bool, error) {
	if quantity <= 0 {
		return true, m.Remove(ctx, productID)
	}
	for i, it := range m.items {
		if it.Product.ID == productID {
			if quantity > it.Product.Stock {
				return false, nil
			}
			m.items[i].Quantity = quantity
			return true, m.persist(ctx)
		}
	}
	return false, nil
}

func (m *Manager) Clear(ctx context.Context) error {
	if len(m.items) == 0 {
		return nil
	}
	m.items = nil
	return m.persist(ctx)
}

// Items returns a deep copy of the cart lines. Product fields are values, so
// copying the slice is enough to decouple the caller from later mutations.
func (m *Manager) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// TotalPrice sums price × quantity over all well-formed lines. Corrupted
// lines (restored from a damaged store entry) contribute nothing.
func (m *Manager) TotalPrice() int {
	total := 0
	for _, it := range m.items {
		if it.Product.Price > 0 && it.Quantity > 0 {
			total += it.Product.Price * it.Quantity
		}
	}
	return total
}

func (m *Manager) TotalItems() int {
	total := 0
	for _, it := range m.items {
		if it.Quantity > 0 {
			total += it.Quantity
		}
	}
	return total
}

func (m *Manager) persist(ctx context.Context) error {
	key := redisx.CartKey(m.sessionID)
	if len(m.items) == 0 {
		return m.store.Clear(ctx, key)
	}
	return m.store.Save(ctx, key, m.items)
}
