package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/internal/repository"
)

// Container holds the in-memory cart state for a single session and keeps it
// in sync with the persistent store.
//
// Mutations are applied to memory immediately. Before Hydrate has run they are
// memory-only; once hydrated, every mutation persists the full item collection
// in the background. Persistence failures are logged, never returned, so a
// flaky store cannot break a mutation that already succeeded in memory.
type Container struct {
	sessionID string
	store     repository.CartStore
	logger    *slog.Logger

	mu       sync.Mutex
	items    []domain.LineItem
	hydrated bool
}

// NewContainer creates a cart container for the given session. The store is a
// hard requirement; a nil store is a wiring bug, not a runtime condition.
func NewContainer(sessionID string, store repository.CartStore, logger *slog.Logger) *Container {
	if store == nil {
		panic("cart: NewContainer called without a store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Container{
		sessionID: sessionID,
		store:     store,
		logger:    logger.With("session_id", sessionID),
	}
}

// Hydrate reads the persisted cart once and folds it under any mutations that
// arrived before the load finished: persisted items form the base, in-memory
// items are merged on top. Safe to call more than once; only the first call
// loads.
func (c *Container) Hydrate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hydrated {
		return
	}

	persisted := c.store.Load(ctx, c.sessionID)
	if len(c.items) == 0 {
		c.items = persisted
	} else {
		early := c.items
		c.items = persisted
		for _, it := range early {
			c.mergeLocked(it)
		}
	}
	c.hydrated = true
	c.logger.Debug("cart hydrated", "items", len(c.items))
}

// Hydrated reports whether the persisted cart has been read. Until then an
// empty Items result means "not loaded yet", not "empty cart".
func (c *Container) Hydrated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hydrated
}

// AddItem merges the item into the cart. An existing line with the same
// product ID has its quantity incremented; descriptive fields keep their
// first-written values. New products are appended, preserving display order.
func (c *Container) AddItem(ctx context.Context, item domain.LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeLocked(item)
	cartMutationsTotal.WithLabelValues("add").Inc()
	c.persistLocked(ctx)
}

// RemoveItem deletes the line with the matching product ID. No-op if absent.
func (c *Container) RemoveItem(ctx context.Context, productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := domain.FindIndex(c.items, productID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	cartMutationsTotal.WithLabelValues("remove").Inc()
	c.persistLocked(ctx)
}

// SetQuantity replaces the quantity for the matching item. A quantity of zero
// or less removes the line instead. No-op if the product is not in the cart.
func (c *Container) SetQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(ctx, productID)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := domain.FindIndex(c.items, productID)
	if i < 0 {
		return
	}
	c.items[i].Quantity = quantity
	cartMutationsTotal.WithLabelValues("set_quantity").Inc()
	c.persistLocked(ctx)
}

// Clear empties the cart and deletes the persisted copy entirely, so a
// concurrent read cannot resurrect stale state from a leftover key.
func (c *Container) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	cartMutationsTotal.WithLabelValues("clear").Inc()
	if !c.hydrated {
		return
	}
	if err := c.store.Clear(ctx, c.sessionID); err != nil {
		c.logger.Warn("failed to clear persisted cart", "error", err)
	}
}

// Items returns a copy of the current line items in display order.
func (c *Container) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// QuantityOf returns the in-cart quantity for a product, zero if absent.
func (c *Container) QuantityOf(productID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.QuantityOf(c.items, productID)
}

// Total returns the sum of price times quantity over all items, recomputed
// from the current state.
func (c *Container) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Total(c.items)
}

// View snapshots the cart into its API representation.
func (c *Container) View() domain.CartView {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]domain.LineItem, len(c.items))
	copy(items, c.items)
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return domain.CartView{
		SessionID: c.sessionID,
		Items:     items,
		Total:     domain.Total(items),
		ItemCount: count,
		Hydrated:  c.hydrated,
	}
}

func (c *Container) mergeLocked(item domain.LineItem) {
	if i := domain.FindIndex(c.items, item.ProductID); i >= 0 {
		c.items[i].Quantity += item.Quantity
		return
	}
	c.items = append(c.items, item)
}

// persistLocked writes the full item collection when hydrated. Pre-hydration
// writes are skipped so a partial in-memory cart never clobbers persisted
// state that has not been read yet.
func (c *Container) persistLocked(ctx context.Context) {
	if !c.hydrated {
		return
	}
	snapshot := make([]domain.LineItem, len(c.items))
	copy(snapshot, c.items)
	if err := c.store.Save(ctx, c.sessionID, snapshot); err != nil {
		c.logger.Warn("failed to persist cart", "error", err)
	}
}
