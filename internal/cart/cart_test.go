package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dajiagoods/storefront/internal/catalog"
	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/redisx"
)

func product(id string, price, stock int) catalog.Product {
	return catalog.Product{ID: id, Name: "p" + id, Slug: "p-" + id, Price: price, Stock: stock, InStock: true}
}

func TestAddRespectsStockCeiling(t *testing.T) {
	ctx := context.Background()
	m := Load(ctx, fallback.NewMemory(), "s1")
	p := product("1", 680, 5)

	ok, err := m.Add(ctx, p, 3)
	require.NoError(t, err)
	require.True(t, ok)

	// Second add would total 6 > 5: rejected wholesale, quantity stays 3.
	ok, err = m.Add(ctx, p, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, m.Items(), 1)
	assert.Equal(t, 3, m.Items()[0].Quantity)

	// Topping up to exactly the ceiling is allowed.
	ok, err = m.Add(ctx, p, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, m.Items()[0].Quantity)
}

func TestAddRejectsOverStockNewLine(t *testing.T) {
	ctx := context.Background()
	m := Load(ctx, fallback.NewMemory(), "s1")

	ok, err := m.Add(ctx, product("1", 100, 2), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, m.Items())
}

func TestAddRejectsUnpurchasable(t *testing.T) {
	ctx := context.Background()
	m := Load(ctx, fallback.NewMemory(), "s1")

	p := product("1", 100, 10)
	p.InStock = false
	ok, err := m.Add(ctx, p, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	m := Load(ctx, fallback.NewMemory(), "s1")
	p := product("1", 100, 4)

	_, err := m.Add(ctx, p, 2)
	require.NoError(t, err)

	// Over stock: rejected, not clamped.
	ok, err := m.UpdateQuantity(ctx, "1", 9)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, m.Items()[0].Quantity)

	// Exact set within stock.
	ok, err = m.UpdateQuantity(ctx, "1", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, m.Items()[0].Quantity)

	// Missing line: no-op.
	ok, err = m.UpdateQuantity(ctx, "nope", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// Zero removes the line.
	ok, err = m.UpdateQuantity(ctx, "1", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m.Items())
}

func TestEmptyCartDeletesStorageKey(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	m := Load(ctx, store, "s1")
	key := redisx.CartKey("s1")

	_, err := m.Add(ctx, product("1", 100, 5), 1)
	require.NoError(t, err)
	require.True(t, store.Has(key))

	require.NoError(t, m.Remove(ctx, "1"))
	assert.False(t, store.Has(key), "emptied cart must delete its key, not write []")
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	m := Load(ctx, fallback.NewMemory(), "s1")

	_, err := m.Add(ctx, product("a", 680, 10), 2)
	require.NoError(t, err)
	_, err = m.Add(ctx, product("b", 1880, 10), 1)
	require.NoError(t, err)

	assert.Equal(t, 3240, m.TotalPrice())
	assert.Equal(t, 3, m.TotalItems())
}

func TestMalformedStoredCartYieldsZeroTotals(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()
	store.Put(redisx.CartKey("s1"), []byte(`"not a cart"`))

	m := Load(ctx, store, "s1")
	assert.Equal(t, 0, m.TotalPrice())
	assert.Equal(t, 0, m.TotalItems())
	assert.Empty(t, m.Items())
}

func TestInsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	m := Load(ctx, fallback.NewMemory(), "s1")

	for _, id := range []string{"3", "1", "2"} {
		_, err := m.Add(ctx, product(id, 100, 5), 1)
		require.NoError(t, err)
	}
	items := m.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "3", items[0].Product.ID)
	assert.Equal(t, "1", items[1].Product.ID)
	assert.Equal(t, "2", items[2].Product.ID)
}

func TestCartSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := fallback.NewMemory()

	m := Load(ctx, store, "s1")
	_, err := m.Add(ctx, product("1", 100, 5), 2)
	require.NoError(t, err)

	reloaded := Load(ctx, store, "s1")
	require.Len(t, reloaded.Items(), 1)
	assert.Equal(t, 2, reloaded.Items()[0].Quantity)
}
