package repository

import (
	"context"
	"testing"
	"time"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(NewMemoryStore())

	_, err := repo.Create(ctx, entities.User{ID: "u-1", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, entities.User{ID: "u-2", Email: "ana@example.com"})
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

	_, err = repo.Create(ctx, entities.User{ID: "u-2", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, entities.User{ID: "u-2", Email: "ana@example.com"})
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

	updated, err := repo.Update(ctx, entities.User{ID: "u-2", Email: "robert@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "robert@example.com", updated.Email)

	old, err := repo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, old.ID)
}

func TestMemoryUserRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(NewMemoryStore())
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, id := range []string{"u-1", "u-2", "u-3"} {
		_, err := repo.Create(ctx, entities.User{ID: id, Email: id + "@example.com", CreatedAt: at})
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "u-3", users[0].ID)
	assert.Equal(t, "u-1", users[2].ID)
}

func TestMemoryProductRepository_UniqueSKU(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository(NewMemoryStore())

	_, err := repo.Create(ctx, entities.Product{ID: "p-1", SKU: "P001"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, entities.Product{ID: "p-2", SKU: "P001"})
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

	got, err := repo.GetByIDs(ctx, []string{"p-1", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "p-1")
}

func TestMemoryCartRepository_AddItem(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCartRepository(NewMemoryStore())

	first, err := repo.AddItem(ctx, entities.AddItemCommand{UserID: "u-1", ProductID: "p-1", Quantity: 2, UnitPrice: 10})
	require.NoError(t, err)
	second, err := repo.AddItem(ctx, entities.AddItemCommand{UserID: "u-1", ProductID: "p-1", Quantity: 3, UnitPrice: 12})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Greater(t, second.Version, first.Version)

	items, err := repo.ListItems(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 12.0, items[0].UnitPrice)

	_, err = repo.AddItem(ctx, entities.AddItemCommand{UserID: "u-1", ProductID: "p-1", Quantity: 1, UnitPrice: 12, MaxLineQuantity: 5})
	assert.ErrorIs(t, err, interfaces.ErrLineQuantityExceeded)
}

func TestMemoryCartRepository_SingleOpenCart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewMemoryCartRepository(store)

	open, err := repo.GetOrCreateOpenCart(ctx, "u-1")
	require.NoError(t, err)
	again, err := repo.GetOrCreateOpenCart(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, open.ID, again.ID)

	_, err = repo.UpdateStatus(ctx, open.ID, entities.CartStatusCheckedOut)
	require.NoError(t, err)
	none, err := repo.GetOpenCart(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, none.ID)

	_, err = repo.ClearItems(ctx, open.ID)
	assert.ErrorIs(t, err, interfaces.ErrCartNotOpen)

	next, err := repo.GetOrCreateOpenCart(ctx, "u-1")
	require.NoError(t, err)
	assert.NotEqual(t, open.ID, next.ID)

	_, err = repo.UpdateStatus(ctx, open.ID, entities.CartStatusOpen)
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)
}

func TestMemoryOrderRepository_CreateFromCart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	carts := NewMemoryCartRepository(store)
	orders := NewMemoryOrderRepository(store)

	cart, err := carts.AddItem(ctx, entities.AddItemCommand{UserID: "u-1", ProductID: "p-1", Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)

	order := entities.Order{ID: "o-1", UserID: "u-1", CartID: cart.ID, Total: 10, IdempotencyKey: "k-1",
		Items: []entities.OrderLine{{ProductID: "p-1", Quantity: 1, UnitPrice: 10, LineTotal: 10}}}

	_, err = orders.CreateFromCart(ctx, entities.CheckoutCommand{Order: order, CartID: cart.ID, CartVersion: cart.Version - 1})
	assert.ErrorIs(t, err, interfaces.ErrConcurrentUpdate)

	created, err := orders.CreateFromCart(ctx, entities.CheckoutCommand{Order: order, CartID: cart.ID, CartVersion: cart.Version})
	require.NoError(t, err)
	assert.Equal(t, "o-1", created.ID)

	closed, err := carts.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CartStatusCheckedOut, closed.Status)

	_, err = orders.CreateFromCart(ctx, entities.CheckoutCommand{Order: order, CartID: cart.ID, CartVersion: closed.Version})
	assert.ErrorIs(t, err, interfaces.ErrCartNotOpen)

	byKey, err := orders.GetByIdempotencyKey(ctx, "u-1", "k-1")
	require.NoError(t, err)
	assert.Equal(t, "o-1", byKey.ID)

	byKey.Items[0].Quantity = 99
	stored, err := orders.GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Items[0].Quantity)
}

func TestMemoryUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := NewMemoryUserRepository(store)
	carts := NewMemoryCartRepository(store)
	orders := NewMemoryOrderRepository(store)

	_, err := users.Create(ctx, entities.User{ID: "u-1", Email: "ana@example.com"})
	require.NoError(t, err)
	cart, err := carts.AddItem(ctx, entities.AddItemCommand{UserID: "u-1", ProductID: "p-1", Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)
	_, err = orders.CreateFromCart(ctx, entities.CheckoutCommand{
		Order:       entities.Order{ID: "o-1", UserID: "u-1", CartID: cart.ID, IdempotencyKey: "k-1"},
		CartID:      cart.ID,
		CartVersion: cart.Version,
	})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, "u-1"))

	all, err := carts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	byUser, err := orders.ListByUserID(ctx, "u-1", 0)
	require.NoError(t, err)
	assert.Empty(t, byUser)
	byKey, err := orders.GetByIdempotencyKey(ctx, "u-1", "k-1")
	require.NoError(t, err)
	assert.Empty(t, byKey.ID)
}

func TestMemoryProductRepository_DeleteInvalidatesCartSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := NewMemoryProductRepository(store)
	carts := NewMemoryCartRepository(store)
	orders := NewMemoryOrderRepository(store)

	_, err := products.Create(ctx, entities.Product{ID: "p-1", SKU: "P001"})
	require.NoError(t, err)
	cart, err := carts.AddItem(ctx, entities.AddItemCommand{UserID: "u-1", ProductID: "p-1", Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)
	items, err := carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, products.Delete(ctx, "p-1"))

	after, err := carts.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Greater(t, after.Version, cart.Version)

	_, err = orders.CreateFromCart(ctx, entities.CheckoutCommand{
		Order:       entities.Order{ID: "o-1", UserID: "u-1", CartID: cart.ID, Total: 10},
		CartID:      cart.ID,
		CartVersion: cart.Version,
	})
	assert.ErrorIs(t, err, interfaces.ErrConcurrentUpdate)

	left, err := carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
