package selection

import (
	"context"
	"testing"

	"FreshKeeper/entities"
	"FreshKeeper/pkg/inventory"
	"FreshKeeper/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (kvstore.Store, inventory.Store, Store) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	items := inventory.NewStore(kv)
	return kv, items, NewStore(kv, items)
}

func addItem(t *testing.T, items inventory.Store, name string) entities.FoodItem {
	t.Helper()
	item := entities.FoodItem{
		Name:           name,
		ExpirationDate: "2025-05-10",
		Amount:         100,
		Unit:           "g",
		Category:       "vegetable",
	}
	require.NoError(t, items.Append(context.Background(), &item))
	return item
}

func TestToggleIsIdempotentPair(t *testing.T) {
	ctx := context.Background()
	_, items, sel := setup(t)
	item := addItem(t, items, "carrot")

	assert.False(t, sel.IsSelected(item.ID))

	require.NoError(t, sel.Toggle(ctx, item.ID))
	assert.True(t, sel.IsSelected(item.ID))

	require.NoError(t, sel.Toggle(ctx, item.ID))
	assert.False(t, sel.IsSelected(item.ID))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	_, items, sel := setup(t)
	a := addItem(t, items, "a")
	b := addItem(t, items, "b")

	require.NoError(t, sel.Toggle(ctx, a.ID))
	require.NoError(t, sel.Toggle(ctx, b.ID))
	require.NoError(t, sel.Clear(ctx))

	assert.Empty(t, sel.IDs())
	assert.False(t, sel.IsSelected(a.ID))
}

func TestItemsResolveAgainstLiveInventory(t *testing.T) {
	ctx := context.Background()
	_, items, sel := setup(t)
	item := addItem(t, items, "carrot")

	require.NoError(t, sel.Toggle(ctx, item.ID))

	// Edits to the underlying item show up in the resolved selection.
	name := "daikon"
	_, err := items.UpsertByID(ctx, item.ID, inventory.Patch{Name: &name})
	require.NoError(t, err)

	resolved := sel.Items()
	require.Len(t, resolved, 1)
	assert.Equal(t, "daikon", resolved[0].Name)
}

func TestSelectionDroppedWhenItemDeleted(t *testing.T) {
	ctx := context.Background()
	_, items, sel := setup(t)
	keep := addItem(t, items, "keep")
	gone := addItem(t, items, "gone")

	require.NoError(t, sel.Toggle(ctx, keep.ID))
	require.NoError(t, sel.Toggle(ctx, gone.ID))

	_, err := items.RemoveByID(ctx, gone.ID)
	require.NoError(t, err)

	assert.False(t, sel.IsSelected(gone.ID))
	resolved := sel.Items()
	require.Len(t, resolved, 1)
	assert.Equal(t, "keep", resolved[0].Name)
}

func TestSelectionSurvivesEditsToOtherFields(t *testing.T) {
	ctx := context.Background()
	_, items, sel := setup(t)
	item := addItem(t, items, "carrot")

	require.NoError(t, sel.Toggle(ctx, item.ID))

	amount := 42.0
	_, err := items.UpsertByID(ctx, item.ID, inventory.Patch{Amount: &amount})
	require.NoError(t, err)

	assert.True(t, sel.IsSelected(item.ID))
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, items, sel := setup(t)
	item := addItem(t, items, "carrot")

	require.NoError(t, sel.Toggle(ctx, item.ID))

	reloaded := NewStore(kv, items)
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.IsSelected(item.ID))
}

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	_, _, sel := setup(t)
	require.NoError(t, sel.Load(context.Background()))
	assert.Empty(t, sel.IDs())
}
