package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industriassp/storefront/internal/domain"
)

func setupCartStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewCartStore(client, 24*time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return store, mr
}

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: 1, Name: "Tanque 1100L", Price: 99.99, Quantity: 2, ImageURL: "https://cdn.example.com/1.jpg"},
		{ProductID: 2, Name: "Cisterna 600L", Price: 50, Quantity: 1},
	}
}

func TestCartStore_SaveAndLoad(t *testing.T) {
	store, _ := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleItems()))

	got := store.Load(ctx, "sess-1")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ProductID)
	assert.Equal(t, "Tanque 1100L", got[0].Name)
	assert.InDelta(t, 99.99, got[0].Price, 1e-9)
	assert.Equal(t, 2, got[0].Quantity)
}

func TestCartStore_Save_AppliesTTL(t *testing.T) {
	store, mr := setupCartStore(t)

	require.NoError(t, store.Save(context.Background(), "sess-ttl", sampleItems()))
	assert.Greater(t, mr.TTL("industriasp_cart:sess-ttl"), time.Duration(0))
}

func TestCartStore_Load_Absent(t *testing.T) {
	store, _ := setupCartStore(t)

	got := store.Load(context.Background(), "nobody")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCartStore_Load_CorruptJSON(t *testing.T) {
	store, mr := setupCartStore(t)

	require.NoError(t, mr.Set("industriasp_cart:sess-bad", `{not json`))

	got := store.Load(context.Background(), "sess-bad")
	assert.Empty(t, got)
}

func TestCartStore_Load_FiltersInvalidEntries(t *testing.T) {
	store, mr := setupCartStore(t)

	payload := `[
		{"product_id":1,"name":"ok","price":10,"quantity":2},
		{"product_id":2,"name":"negative qty","price":10,"quantity":-1},
		{"product_id":0,"name":"zero id","price":10,"quantity":1},
		{"product_id":"oops","name":"wrong type","price":10,"quantity":1},
		{"product_id":3,"name":"","price":10,"quantity":1},
		{"product_id":4,"name":"also ok","price":0,"quantity":1}
	]`
	require.NoError(t, mr.Set("industriasp_cart:sess-mixed", payload))

	got := store.Load(context.Background(), "sess-mixed")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ProductID)
	assert.Equal(t, int64(4), got[1].ProductID)
}

func TestCartStore_Load_DropsDuplicateProducts(t *testing.T) {
	store, mr := setupCartStore(t)

	payload := `[
		{"product_id":5,"name":"first","price":10,"quantity":1},
		{"product_id":5,"name":"dup","price":12,"quantity":3}
	]`
	require.NoError(t, mr.Set("industriasp_cart:sess-dup", payload))

	got := store.Load(context.Background(), "sess-dup")
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Name)
}

func TestCartStore_Load_StoreDown(t *testing.T) {
	store, mr := setupCartStore(t)
	mr.Close()

	got := store.Load(context.Background(), "sess-1")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCartStore_Clear_RemovesKey(t *testing.T) {
	store, mr := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", sampleItems()))
	require.NoError(t, store.Clear(ctx, "sess-1"))

	assert.False(t, mr.Exists("industriasp_cart:sess-1"))
}

func TestCartStore_Save_EmptySlice(t *testing.T) {
	store, mr := setupCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", []domain.LineItem{}))

	raw, err := mr.Get("industriasp_cart:sess-1")
	require.NoError(t, err)

	var decoded []domain.LineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Empty(t, decoded)
}
