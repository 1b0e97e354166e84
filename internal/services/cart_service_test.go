package services_test

import (
	"context"
	"testing"

	"autoshop/internal/models"
	"autoshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_GetCartCreatesEmptyCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cart, err := e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cart.ID)
	assert.NotNil(t, cart.Items)
	assert.True(t, cart.Total.IsZero())

	again, err := e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartService_AddItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	item, err := e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductID: e.polish.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	item, err = e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductSlug: "polish", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	// Stock is not checked when adding.
	item, err = e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductSlug: "cloth", Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, item.Quantity)

	cart, err := e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.True(t, dec("582.70").Equal(cart.Total), cart.Total.String())
}

func TestCartService_AddItemRejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{})
	assert.Contains(t, fieldErrors(t, err), "product_slug")

	_, err = e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductSlug: "polish", Quantity: -1})
	assert.Contains(t, fieldErrors(t, err), "quantity")

	_, err = e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductSlug: "missing"})
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	_, err = e.catalog.Bulk(ctx, services.BulkInput{Action: services.BulkUnpublish, Slugs: []string{"polish"}})
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductSlug: "polish"})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCartService_TotalFollowsCurrentPrice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)

	price := dec("50.00")
	_, err := e.catalog.PatchProduct(ctx, "polish", services.ProductPatch{Price: &price})
	require.NoError(t, err)

	cart, err := e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	assert.True(t, dec("108.90").Equal(cart.Total), cart.Total.String())
}

func TestCartService_SetQuantitiesAndRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)

	cart, err := e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	var polishLine, clothLine string
	for _, item := range cart.Items {
		switch item.ProductID {
		case e.polish.ID:
			polishLine = item.ID
		case e.cloth.ID:
			clothLine = item.ID
		}
	}

	cart, err = e.carts.SetQuantities(ctx, e.user.ID, []services.QuantityUpdate{
		{ID: polishLine, Quantity: 1},
		{ID: clothLine, Quantity: 0},
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.True(t, dec("45.90").Equal(cart.Total))

	// One bad line rolls back the whole batch.
	_, err = e.carts.SetQuantities(ctx, e.user.ID, []services.QuantityUpdate{
		{ID: polishLine, Quantity: 4},
		{ID: "missing", Quantity: 1},
	})
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)
	cart, err = e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	require.NoError(t, e.carts.RemoveItem(ctx, e.user.ID, polishLine))
	assert.ErrorIs(t, e.carts.RemoveItem(ctx, e.user.ID, polishLine), models.ErrCartItemNotFound)
	assert.Contains(t, fieldErrors(t, e.carts.RemoveItem(ctx, e.user.ID, "")), "item_id")
}

func TestCartService_RemoveItemOfAnotherUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	cart, err := e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, e.carts.RemoveItem(ctx, e.other.ID, cart.Items[0].ID), models.ErrCartItemNotFound)
	_, err = e.carts.GetCart(ctx, e.other.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, e.carts.RemoveItem(ctx, e.other.ID, cart.Items[0].ID), models.ErrCartItemNotFound)
}

func TestCartService_Clear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.carts.Clear(ctx, e.user.ID))

	e.fillCart(t, e.user.ID)
	require.NoError(t, e.carts.Clear(ctx, e.user.ID))
	cart, err := e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}
