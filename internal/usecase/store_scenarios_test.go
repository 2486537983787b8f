package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"retail_backoffice/internal/adapter/persistence/repository"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/infrastructure/payments"
	"retail_backoffice/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backoffice struct {
	users    *usecase.UserUseCase
	products *usecase.ProductUseCase
	carts    *usecase.CartUseCase
	orders   *usecase.OrderUseCase
}

func newBackoffice(policy usecase.StockPolicy) backoffice {
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUserRepository(store)
	products := repository.NewMemoryProductRepository(store)
	carts := repository.NewMemoryCartRepository(store)
	orders := repository.NewMemoryOrderRepository(store)
	links := payments.NewCheckoutLinkBuilder("http://front.test/index.html", "http://api.test", payments.ModeExpanded)

	return backoffice{
		users:    usecase.NewUserUseCase(users),
		products: usecase.NewProductUseCase(products, 0),
		carts:    usecase.NewCartUseCase(carts, users, products, policy),
		orders:   usecase.NewOrderUseCase(orders, carts, users, products, links, links),
	}
}

func (b backoffice) user(t *testing.T, email string) entities.User {
	t.Helper()
	u, err := b.users.Create(context.Background(), entities.User{Name: "Customer", Email: email})
	require.NoError(t, err)
	return u
}

func (b backoffice) product(t *testing.T, sku string, price float64, stock int) entities.Product {
	t.Helper()
	p, err := b.products.Create(context.Background(), entities.Product{SKU: sku, Name: "Product " + sku, Price: price, Stock: stock})
	require.NoError(t, err)
	return p
}

func (b backoffice) openCarts(t *testing.T, userID string) int {
	t.Helper()
	carts, err := b.carts.ListCarts(context.Background())
	require.NoError(t, err)
	n := 0
	for _, c := range carts {
		if c.UserID == userID && c.Status == entities.CartStatusOpen {
			n++
		}
	}
	return n
}

func TestScenarios_AddMergeCheckout(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u1 := b.user(t, "u1@example.com")
	productA := b.product(t, "A", 100, 50)

	// A: first add creates the cart.
	summary, err := b.carts.AddItem(ctx, u1.ID, productA.ID, 2)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, 100.0, summary.Items[0].UnitPrice)
	assert.Equal(t, 200.0, summary.Items[0].LineTotal)
	assert.Equal(t, 200.0, summary.Total)

	// B: same product merges into one line.
	summary, err = b.carts.AddItem(ctx, u1.ID, productA.ID, 1)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, 300.0, summary.Total)
	cartID := summary.CartID

	// C: checkout freezes and closes the cart.
	receipt, err := b.orders.Checkout(ctx, u1.ID, "u1@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, 300.0, receipt.Total)
	assert.Equal(t, cartID, receipt.CartID)
	assert.Equal(t, entities.PaymentStatusPending, receipt.PaymentStatus)

	cart, _, err := b.carts.GetCart(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, entities.CartStatusCheckedOut, cart.Status)

	after, err := b.carts.GetSummary(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, after.CartID)
	assert.Empty(t, after.Items)
	assert.Zero(t, after.Total)
	assert.Zero(t, b.openCarts(t, u1.ID))
}

func TestScenarios_InsufficientStockLeavesCartUntouched(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u2 := b.user(t, "u2@example.com")
	productB := b.product(t, "B", 10, 5)

	_, err := b.carts.AddItem(ctx, u2.ID, productB.ID, 1)
	require.NoError(t, err)

	// D
	_, err = b.carts.AddItem(ctx, u2.ID, productB.ID, 10)
	var stockErr *usecase.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, productB.Name, stockErr.ProductName)

	summary, err := b.carts.GetSummary(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)
}

func TestScenarios_ClearWithoutCartCreatesNothing(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u3 := b.user(t, "u3@example.com")

	// E
	summary, message, err := b.carts.Clear(ctx, u3.ID)
	require.NoError(t, err)
	assert.Equal(t, usecase.MessageNoOpenCart, message)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.Total)

	carts, err := b.carts.ListCarts(ctx)
	require.NoError(t, err)
	assert.Empty(t, carts)
}

func TestScenarios_RoundTripKeepsLatestPrice(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 100, 50)

	_, err := b.carts.AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	p.Price = 120
	_, err = b.products.Update(ctx, p)
	require.NoError(t, err)

	_, err = b.carts.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	summary, err := b.carts.GetSummary(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 5, summary.Items[0].Quantity)
	assert.Equal(t, 120.0, summary.Items[0].UnitPrice)
	assert.Equal(t, 600.0, summary.Total)
}

func TestScenarios_OrderSnapshotIsFrozen(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 100, 50)

	_, err := b.carts.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	receipt, err := b.orders.Checkout(ctx, u.ID, "", "")
	require.NoError(t, err)

	p.Price = 999
	p.Name = "Renamed"
	_, err = b.products.Update(ctx, p)
	require.NoError(t, err)

	order, err := b.orders.GetLastOrder(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.OrderID, order.ID)
	assert.Equal(t, 300.0, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Product P", order.Items[0].Name)
	assert.Equal(t, 100.0, order.Items[0].UnitPrice)
	assert.Equal(t, "P", order.Items[0].SKU)
}

func TestScenarios_CheckoutPreconditions(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 100, 50)

	_, err := b.orders.Checkout(ctx, u.ID, "", "")
	assert.ErrorIs(t, err, usecase.ErrNoOpenCart)

	_, err = b.carts.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	_, _, err = b.carts.Clear(ctx, u.ID)
	require.NoError(t, err)

	_, err = b.orders.Checkout(ctx, u.ID, "", "")
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)

	summary, err := b.carts.GetSummary(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, summary.CartID, "a failed checkout leaves the cart open")
}

func TestScenarios_InvalidQuantityDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 100, 50)

	for _, q := range []int{0, -1} {
		_, err := b.carts.AddItem(ctx, u.ID, p.ID, q)
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	}
	assert.Zero(t, b.openCarts(t, u.ID))
}

func TestScenarios_UpsertByEmailIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)

	status, first, err := b.users.UpsertByEmail(ctx, "Ana", "ana@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, entities.UpsertStatusCreated, status)

	status, second, err := b.users.UpsertByEmail(ctx, "Ana Maria", "ANA@example.com", "+5411")
	require.NoError(t, err)
	assert.Equal(t, entities.UpsertStatusExists, status)
	assert.Equal(t, first.ID, second.ID)
}

func TestScenarios_IdempotentCheckoutReplay(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 100, 50)

	_, err := b.carts.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	first, err := b.orders.Checkout(ctx, u.ID, "", "key-1")
	require.NoError(t, err)
	replay, err := b.orders.Checkout(ctx, u.ID, "", "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, replay.OrderID)

	orders, err := b.orders.ListOrdersByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

// racingOrders commits an order under the same idempotency key just before
// the first CreateFromCart call it forwards.
type racingOrders struct {
	*repository.MemoryOrderRepository
	raced bool
}

func (r *racingOrders) CreateFromCart(ctx context.Context, cmd entities.CheckoutCommand) (entities.Order, error) {
	if !r.raced {
		r.raced = true
		winner := cmd
		winner.Order.ID = "winner-order"
		if _, err := r.MemoryOrderRepository.CreateFromCart(ctx, winner); err != nil {
			return entities.Order{}, err
		}
	}
	return r.MemoryOrderRepository.CreateFromCart(ctx, cmd)
}

func TestScenarios_KeyedCheckoutLosingToSameKeyReturnsWinner(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUserRepository(store)
	products := repository.NewMemoryProductRepository(store)
	carts := repository.NewMemoryCartRepository(store)
	orders := &racingOrders{MemoryOrderRepository: repository.NewMemoryOrderRepository(store)}
	links := payments.NewCheckoutLinkBuilder("http://front.test/index.html", "http://api.test", payments.ModeCompact)

	u, err := usecase.NewUserUseCase(users).Create(ctx, entities.User{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	p, err := usecase.NewProductUseCase(products, 0).Create(ctx, entities.Product{SKU: "P", Name: "Yerba", Price: 100, Stock: 10})
	require.NoError(t, err)
	_, err = usecase.NewCartUseCase(carts, users, products, usecase.StockPolicyIncrement).AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	receipt, err := usecase.NewOrderUseCase(orders, carts, users, products, links, links).Checkout(ctx, u.ID, "", "key-1")
	require.NoError(t, err)
	assert.Equal(t, "winner-order", receipt.OrderID)
	assert.Equal(t, 200.0, receipt.Total)
	assert.Equal(t, "http://api.test/checkout/winner-order", receipt.PaymentURL)

	all, err := orders.ListByUserID(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestScenarios_LineStockPolicy(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyLine)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 100, 5)

	_, err := b.carts.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	_, err = b.carts.AddItem(ctx, u.ID, p.ID, 3)
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)

	summary, err := b.carts.AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Items[0].Quantity)
}

func TestConcurrency_AddItemKeepsOneCartAndOneLine(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 10, 100)

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.carts.AddItem(ctx, u.ID, p.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, b.openCarts(t, u.ID))
	summary, err := b.carts.GetSummary(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, workers, summary.Items[0].Quantity)
	assert.Equal(t, float64(workers*10), summary.Total)
}

func TestConcurrency_CheckoutCreatesOneOrder(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 10, 100)

	_, err := b.carts.AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.orders.Checkout(ctx, u.ID, "", "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, usecase.ErrNoOpenCart), errors.Is(err, usecase.ErrCheckoutFailed):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	orders, err := b.orders.ListOrdersByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestConcurrency_SameKeyCheckoutsShareOneOrder(t *testing.T) {
	ctx := context.Background()
	b := newBackoffice(usecase.StockPolicyIncrement)
	u := b.user(t, "ana@example.com")
	p := b.product(t, "P", 10, 100)

	_, err := b.carts.AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	const workers = 8
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]int{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := b.orders.Checkout(ctx, u.ID, "", "retry-key")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			ids[receipt.OrderID]++
		}()
	}
	wg.Wait()

	require.Len(t, ids, 1)
	orders, err := b.orders.ListOrdersByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, workers, ids[orders[0].ID])
}
