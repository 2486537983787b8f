package usecase

import (
	"context"
	"errors"
	"testing"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"
	mock_interfaces "retail_backoffice/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type orderMocks struct {
	orders   *mock_interfaces.MockIOrderRepository
	carts    *mock_interfaces.MockICartRepository
	users    *mock_interfaces.MockIUserRepository
	products *mock_interfaces.MockIProductRepository
	links    *mock_interfaces.MockIPaymentLinkProvider
	redirect *mock_interfaces.MockIPaymentLinkProvider
}

func newOrderUseCase(t *testing.T) (*OrderUseCase, orderMocks) {
	ctrl := gomock.NewController(t)
	m := orderMocks{
		orders:   mock_interfaces.NewMockIOrderRepository(ctrl),
		carts:    mock_interfaces.NewMockICartRepository(ctrl),
		users:    mock_interfaces.NewMockIUserRepository(ctrl),
		products: mock_interfaces.NewMockIProductRepository(ctrl),
		links:    mock_interfaces.NewMockIPaymentLinkProvider(ctrl),
		redirect: mock_interfaces.NewMockIPaymentLinkProvider(ctrl),
	}
	return NewOrderUseCase(m.orders, m.carts, m.users, m.products, m.links, m.redirect), m
}

var (
	ana      = entities.User{ID: "u-1", Name: "Ana", Email: "ana@example.com"}
	openCart = entities.Cart{ID: "c-1", UserID: "u-1", Status: entities.CartStatusOpen, Version: 4}
	cartRows = []entities.CartItem{{CartID: "c-1", ProductID: "p-1", Quantity: 3, UnitPrice: 100}}
)

func expectSnapshot(m orderMocks) {
	m.carts.EXPECT().GetOpenCart(gomock.Any(), "u-1").Return(openCart, nil)
	m.carts.EXPECT().ListItems(gomock.Any(), "c-1").Return(cartRows, nil)
	m.products.EXPECT().GetByIDs(gomock.Any(), []string{"p-1"}).Return(map[string]entities.Product{"p-1": yerba}, nil)
}

func TestOrderUseCase_Checkout(t *testing.T) {
	t.Run("blank user", func(t *testing.T) {
		uc, _ := newOrderUseCase(t)
		if _, err := uc.Checkout(context.Background(), " ", "", ""); !errors.Is(err, ErrInvalidUserID) {
			t.Fatalf("expected ErrInvalidUserID, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(entities.User{}, nil)

		if _, err := uc.Checkout(context.Background(), "u-1", "", ""); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("no open cart", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		m.carts.EXPECT().GetOpenCart(gomock.Any(), "u-1").Return(entities.Cart{}, nil)

		if _, err := uc.Checkout(context.Background(), "u-1", "", ""); !errors.Is(err, ErrNoOpenCart) {
			t.Fatalf("expected ErrNoOpenCart, got %v", err)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		m.carts.EXPECT().GetOpenCart(gomock.Any(), "u-1").Return(openCart, nil)
		m.carts.EXPECT().ListItems(gomock.Any(), "c-1").Return([]entities.CartItem{}, nil)

		if _, err := uc.Checkout(context.Background(), "u-1", "", ""); !errors.Is(err, ErrEmptyCart) {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("freezes the cart into an order", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		expectSnapshot(m)
		m.orders.EXPECT().CreateFromCart(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd entities.CheckoutCommand) (entities.Order, error) {
				if cmd.CartID != "c-1" || cmd.CartVersion != 4 {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				o := cmd.Order
				if o.ID == "" || o.Total != 300 || o.PaymentStatus != entities.PaymentStatusPending || len(o.Items) != 1 {
					t.Fatalf("unexpected order: %+v", o)
				}
				if o.Items[0].SKU != "P1" || o.Items[0].LineTotal != 300 {
					t.Fatalf("unexpected line: %+v", o.Items[0])
				}
				return o, nil
			},
		)
		m.links.EXPECT().PaymentURL(gomock.Any(), gomock.Any(), ana).Return("http://pay/x", nil)

		receipt, err := uc.Checkout(context.Background(), "u-1", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if receipt.CartID != "c-1" || receipt.Total != 300 || receipt.PaymentURL != "http://pay/x" {
			t.Fatalf("unexpected receipt: %+v", receipt)
		}
	})

	t.Run("email fallback for users without one", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(entities.User{ID: "u-1", Name: "Ana"}, nil)
		expectSnapshot(m)
		m.orders.EXPECT().CreateFromCart(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd entities.CheckoutCommand) (entities.Order, error) { return cmd.Order, nil },
		)
		m.links.EXPECT().PaymentURL(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ entities.Order, u entities.User) (string, error) {
				if u.Email != "ana@example.com" {
					t.Fatalf("expected fallback email, got %q", u.Email)
				}
				return "http://pay/x", nil
			},
		)

		if _, err := uc.Checkout(context.Background(), "u-1", " ANA@example.com ", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("replayed idempotency key", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		existing := entities.Order{ID: "o-1", UserID: "u-1", CartID: "c-1", Total: 300, PaymentStatus: "pending"}
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		m.orders.EXPECT().GetByIdempotencyKey(gomock.Any(), "u-1", "k-1").Return(existing, nil)
		m.links.EXPECT().PaymentURL(gomock.Any(), existing, ana).Return("http://pay/o-1", nil)

		receipt, err := uc.Checkout(context.Background(), "u-1", "", "k-1")
		if err != nil || receipt.OrderID != "o-1" {
			t.Fatalf("expected replay of o-1, got %+v %v", receipt, err)
		}
	})

	t.Run("same key committed while the cart was read", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		winner := entities.Order{ID: "o-1", UserID: "u-1", CartID: "c-1", Total: 300, PaymentStatus: "pending"}
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		gomock.InOrder(
			m.orders.EXPECT().GetByIdempotencyKey(gomock.Any(), "u-1", "k-1").Return(entities.Order{}, nil),
			m.orders.EXPECT().GetByIdempotencyKey(gomock.Any(), "u-1", "k-1").Return(winner, nil),
		)
		expectSnapshot(m)
		m.orders.EXPECT().CreateFromCart(gomock.Any(), gomock.Any()).Return(entities.Order{}, interfaces.ErrCartNotOpen)
		m.links.EXPECT().PaymentURL(gomock.Any(), winner, ana).Return("http://pay/o-1", nil)

		receipt, err := uc.Checkout(context.Background(), "u-1", "", "k-1")
		if err != nil || receipt.OrderID != "o-1" {
			t.Fatalf("expected winner o-1, got %+v %v", receipt, err)
		}
	})

	t.Run("same key committed before the cart was read", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		winner := entities.Order{ID: "o-1", UserID: "u-1", CartID: "c-1", Total: 300, PaymentStatus: "pending"}
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		gomock.InOrder(
			m.orders.EXPECT().GetByIdempotencyKey(gomock.Any(), "u-1", "k-1").Return(entities.Order{}, nil),
			m.orders.EXPECT().GetByIdempotencyKey(gomock.Any(), "u-1", "k-1").Return(winner, nil),
		)
		m.carts.EXPECT().GetOpenCart(gomock.Any(), "u-1").Return(entities.Cart{}, nil)
		m.links.EXPECT().PaymentURL(gomock.Any(), winner, ana).Return("http://pay/o-1", nil)

		receipt, err := uc.Checkout(context.Background(), "u-1", "", "k-1")
		if err != nil || receipt.OrderID != "o-1" {
			t.Fatalf("expected winner o-1, got %+v %v", receipt, err)
		}
	})

	t.Run("keyed checkout without a cart or prior order", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		m.orders.EXPECT().GetByIdempotencyKey(gomock.Any(), "u-1", "k-1").Return(entities.Order{}, nil).Times(2)
		m.carts.EXPECT().GetOpenCart(gomock.Any(), "u-1").Return(entities.Cart{}, nil)

		if _, err := uc.Checkout(context.Background(), "u-1", "", "k-1"); !errors.Is(err, ErrNoOpenCart) {
			t.Fatalf("expected ErrNoOpenCart, got %v", err)
		}
	})

	t.Run("store failure is a checkout failure", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		expectSnapshot(m)
		m.orders.EXPECT().CreateFromCart(gomock.Any(), gomock.Any()).Return(entities.Order{}, errors.New("disk full"))

		if _, err := uc.Checkout(context.Background(), "u-1", "", ""); !errors.Is(err, ErrCheckoutFailed) {
			t.Fatalf("expected ErrCheckoutFailed, got %v", err)
		}
	})

	t.Run("concurrent cart change is retried once", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		m.carts.EXPECT().GetOpenCart(gomock.Any(), "u-1").Return(openCart, nil).Times(2)
		m.carts.EXPECT().ListItems(gomock.Any(), "c-1").Return(cartRows, nil).Times(2)
		m.products.EXPECT().GetByIDs(gomock.Any(), []string{"p-1"}).Return(map[string]entities.Product{"p-1": yerba}, nil).Times(2)
		gomock.InOrder(
			m.orders.EXPECT().CreateFromCart(gomock.Any(), gomock.Any()).Return(entities.Order{}, interfaces.ErrConcurrentUpdate),
			m.orders.EXPECT().CreateFromCart(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, cmd entities.CheckoutCommand) (entities.Order, error) { return cmd.Order, nil },
			),
		)
		m.links.EXPECT().PaymentURL(gomock.Any(), gomock.Any(), ana).Return("http://pay/x", nil)

		if _, err := uc.Checkout(context.Background(), "u-1", "", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("link failure keeps the order", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		expectSnapshot(m)
		m.orders.EXPECT().CreateFromCart(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd entities.CheckoutCommand) (entities.Order, error) { return cmd.Order, nil },
		)
		m.links.EXPECT().PaymentURL(gomock.Any(), gomock.Any(), ana).Return("", errors.New("provider down"))

		receipt, err := uc.Checkout(context.Background(), "u-1", "", "")
		if err != nil || receipt.OrderID == "" || receipt.PaymentURL != "" {
			t.Fatalf("expected committed order without url, got %+v %v", receipt, err)
		}
	})
}

func TestOrderUseCase_ListOrdersByUser(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: DefaultOrdersByUserLimit},
		{name: "explicit", limit: 7, want: 7},
		{name: "clamped", limit: 500, want: MaxOrdersByUserLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, m := newOrderUseCase(t)
			m.orders.EXPECT().ListByUserID(gomock.Any(), "u-1", tc.want).Return(nil, nil)

			orders, err := uc.ListOrdersByUser(context.Background(), "u-1", tc.limit)
			if err != nil || orders == nil {
				t.Fatalf("expected empty non-nil list, got %v %v", orders, err)
			}
		})
	}
}

func TestOrderUseCase_GetLastOrder(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.orders.EXPECT().ListByUserID(gomock.Any(), "u-1", 1).Return([]entities.Order{}, nil)

		if _, err := uc.GetLastOrder(context.Background(), "u-1"); !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("newest", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.orders.EXPECT().ListByUserID(gomock.Any(), "u-1", 1).Return([]entities.Order{{ID: "o-2"}}, nil)

		order, err := uc.GetLastOrder(context.Background(), "u-1")
		if err != nil || order.ID != "o-2" {
			t.Fatalf("expected o-2, got %+v %v", order, err)
		}
	})
}

func TestOrderUseCase_PaymentLinks(t *testing.T) {
	order := entities.Order{ID: "o-1", UserID: "u-1", Total: 300}

	t.Run("payment link uses the configured provider", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.orders.EXPECT().GetByID(gomock.Any(), "o-1").Return(order, nil)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		m.links.EXPECT().PaymentURL(gomock.Any(), order, ana).Return("http://api/checkout/o-1", nil)

		_, url, err := uc.GetOrderPaymentLink(context.Background(), "o-1")
		if err != nil || url != "http://api/checkout/o-1" {
			t.Fatalf("unexpected link: %q %v", url, err)
		}
	})

	t.Run("redirect uses the expanded builder", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.orders.EXPECT().GetByID(gomock.Any(), "o-1").Return(order, nil)
		m.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(ana, nil)
		m.redirect.EXPECT().PaymentURL(gomock.Any(), order, ana).Return("http://front/?user_id=u-1", nil)

		url, err := uc.CheckoutRedirectURL(context.Background(), "o-1")
		if err != nil || url != "http://front/?user_id=u-1" {
			t.Fatalf("unexpected redirect: %q %v", url, err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.orders.EXPECT().GetByID(gomock.Any(), "o-9").Return(entities.Order{}, nil)

		if _, _, err := uc.GetOrderPaymentLink(context.Background(), "o-9"); !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestOrderUseCase_UpdatePaymentStatus(t *testing.T) {
	t.Run("blank status", func(t *testing.T) {
		uc, _ := newOrderUseCase(t)
		if _, err := uc.UpdatePaymentStatus(context.Background(), "o-1", " "); !errors.Is(err, ErrInvalidPaymentStatus) {
			t.Fatalf("expected ErrInvalidPaymentStatus, got %v", err)
		}
	})

	t.Run("free-form status", func(t *testing.T) {
		uc, m := newOrderUseCase(t)
		m.orders.EXPECT().GetByID(gomock.Any(), "o-1").Return(entities.Order{ID: "o-1"}, nil)
		m.orders.EXPECT().UpdatePaymentStatus(gomock.Any(), "o-1", "approved").Return(entities.Order{ID: "o-1", PaymentStatus: "approved"}, nil)

		order, err := uc.UpdatePaymentStatus(context.Background(), "o-1", "approved")
		if err != nil || order.PaymentStatus != "approved" {
			t.Fatalf("unexpected result: %+v %v", order, err)
		}
	})
}
