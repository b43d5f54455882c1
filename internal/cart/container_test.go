package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industriassp/storefront/internal/domain"
)

// fakeStore is an in-memory CartStore that records every Save call.
type fakeStore struct {
	mu       sync.Mutex
	data     map[string][]domain.LineItem
	saves    int
	clears   int
	saveErr  error
	clearErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]domain.LineItem{}}
}

func (s *fakeStore) Load(_ context.Context, sessionID string) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.LineItem, len(s.data[sessionID]))
	copy(items, s.data[sessionID])
	return items
}

func (s *fakeStore) Save(_ context.Context, sessionID string, items []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[sessionID] = items
	return nil
}

func (s *fakeStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	delete(s.data, sessionID)
	return nil
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func item(id int64, name string, price float64, qty int) domain.LineItem {
	return domain.LineItem{ProductID: id, Name: name, Price: price, Quantity: qty}
}

func TestNewContainerPanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() {
		NewContainer("s1", nil, nil)
	})
}

func TestContainerAddItemMergesByProduct(t *testing.T) {
	c := NewContainer("s1", newFakeStore(), nil)
	c.Hydrate(context.Background())

	c.AddItem(context.Background(), item(7, "Taladro", 99.99, 1))
	c.AddItem(context.Background(), item(7, "Taladro renombrado", 120, 2))
	c.AddItem(context.Background(), item(7, "Taladro", 99.99, 3))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
	// descriptive fields keep their first-written values
	assert.Equal(t, "Taladro", items[0].Name)
	assert.Equal(t, 99.99, items[0].Price)
}

func TestContainerTotal(t *testing.T) {
	c := NewContainer("s1", newFakeStore(), nil)
	c.Hydrate(context.Background())

	c.AddItem(context.Background(), item(1, "A", 99.99, 1))
	c.AddItem(context.Background(), item(2, "B", 50, 1))

	assert.InDelta(t, 149.99, c.Total(), 1e-9)

	c.SetQuantity(context.Background(), 1, 3)
	assert.InDelta(t, 3*99.99+50, c.Total(), 1e-9)
}

func TestContainerSetQuantityZeroRemoves(t *testing.T) {
	c := NewContainer("s1", newFakeStore(), nil)
	c.Hydrate(context.Background())

	c.AddItem(context.Background(), item(1, "A", 10, 2))
	c.AddItem(context.Background(), item(2, "B", 5, 1))

	c.SetQuantity(context.Background(), 1, 0)
	assert.Equal(t, 0, c.QuantityOf(1))

	c.SetQuantity(context.Background(), 2, -3)
	assert.Empty(t, c.Items())
}

func TestContainerSetQuantityAbsentIsNoop(t *testing.T) {
	c := NewContainer("s1", newFakeStore(), nil)
	c.Hydrate(context.Background())

	c.SetQuantity(context.Background(), 42, 5)
	assert.Empty(t, c.Items())
}

func TestContainerRemoveAbsentIsNoop(t *testing.T) {
	store := newFakeStore()
	c := NewContainer("s1", store, nil)
	c.Hydrate(context.Background())

	c.RemoveItem(context.Background(), 42)
	assert.Equal(t, 0, store.saveCount())
}

func TestContainerHydrationGating(t *testing.T) {
	store := newFakeStore()
	store.data["s1"] = []domain.LineItem{item(1, "Persisted", 10, 2)}

	c := NewContainer("s1", store, nil)

	// mutations before hydration stay in memory only
	c.AddItem(context.Background(), item(2, "Early", 5, 1))
	assert.Equal(t, 0, store.saveCount())
	assert.False(t, c.Hydrated())
	assert.Equal(t, 1, c.QuantityOf(2))

	c.Hydrate(context.Background())
	assert.True(t, c.Hydrated())

	// persisted items form the base, early mutations are merged on top
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, int64(2), items[1].ProductID)

	// the next mutation persists the full collection
	c.AddItem(context.Background(), item(3, "Late", 1, 1))
	assert.Equal(t, 1, store.saveCount())
	assert.Len(t, store.data["s1"], 3)
}

func TestContainerHydrateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.data["s1"] = []domain.LineItem{item(1, "A", 10, 2)}

	c := NewContainer("s1", store, nil)
	c.Hydrate(context.Background())
	c.AddItem(context.Background(), item(1, "A", 10, 1))
	c.Hydrate(context.Background())

	assert.Equal(t, 3, c.QuantityOf(1))
}

func TestContainerClearDeletesPersistedKey(t *testing.T) {
	store := newFakeStore()
	c := NewContainer("s1", store, nil)
	c.Hydrate(context.Background())

	c.AddItem(context.Background(), item(1, "A", 10, 2))
	c.Clear(context.Background())

	assert.Empty(t, c.Items())
	assert.Equal(t, 1, store.clears)
	_, exists := store.data["s1"]
	assert.False(t, exists)
}

func TestContainerClearBeforeHydrationSkipsStore(t *testing.T) {
	store := newFakeStore()
	c := NewContainer("s1", store, nil)

	c.AddItem(context.Background(), item(1, "A", 10, 2))
	c.Clear(context.Background())

	assert.Empty(t, c.Items())
	assert.Equal(t, 0, store.clears)
}

func TestContainerPersistFailureDoesNotPropagate(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("redis down")

	c := NewContainer("s1", store, nil)
	c.Hydrate(context.Background())

	c.AddItem(context.Background(), item(1, "A", 10, 1))
	assert.Equal(t, 1, c.QuantityOf(1))
}

func TestContainerView(t *testing.T) {
	c := NewContainer("s1", newFakeStore(), nil)
	c.Hydrate(context.Background())

	c.AddItem(context.Background(), item(1, "A", 99.99, 2))
	c.AddItem(context.Background(), item(2, "B", 50, 1))

	v := c.View()
	assert.Equal(t, "s1", v.SessionID)
	assert.Equal(t, 3, v.ItemCount)
	assert.InDelta(t, 2*99.99+50, v.Total, 1e-9)
	assert.True(t, v.Hydrated)
	assert.Len(t, v.Items, 2)
}

func TestContainerMutationsCounted(t *testing.T) {
	c := NewContainer("s1", newFakeStore(), nil)
	c.Hydrate(context.Background())

	adds := testutil.ToFloat64(cartMutationsTotal.WithLabelValues("add"))
	removes := testutil.ToFloat64(cartMutationsTotal.WithLabelValues("remove"))
	clears := testutil.ToFloat64(cartMutationsTotal.WithLabelValues("clear"))

	c.AddItem(context.Background(), item(1, "A", 10, 1))
	c.AddItem(context.Background(), item(2, "B", 5, 1))
	c.RemoveItem(context.Background(), 2)
	c.RemoveItem(context.Background(), 99) // no-op, not counted
	c.Clear(context.Background())

	assert.Equal(t, adds+2, testutil.ToFloat64(cartMutationsTotal.WithLabelValues("add")))
	assert.Equal(t, removes+1, testutil.ToFloat64(cartMutationsTotal.WithLabelValues("remove")))
	assert.Equal(t, clears+1, testutil.ToFloat64(cartMutationsTotal.WithLabelValues("clear")))
}
