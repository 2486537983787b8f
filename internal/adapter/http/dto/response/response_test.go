package response

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"retail_backoffice/internal/domain/entities"
)

func TestFromCartSummary_NoCartSerializesNullID(t *testing.T) {
	res := FromCartSummary(entities.CartSummary{UserID: "u-1"})
	if res.CartID != nil {
		t.Fatalf("expected nil cart id, got %v", *res.CartID)
	}
	if res.Items == nil {
		t.Fatalf("expected empty items slice")
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"cart_id":null`) || !strings.Contains(body, `"items":[]`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestFromCartSummary_RoundTripsLines(t *testing.T) {
	s := entities.CartSummary{
		CartID: "c-1",
		UserID: "u-1",
		Items: []entities.CartLine{
			{ProductID: "p-1", Name: "Mate", Quantity: 2, UnitPrice: 10.5, LineTotal: 21},
		},
		Total: 21,
	}

	res := FromCartSummary(s)
	if res.CartID == nil || *res.CartID != "c-1" {
		t.Fatalf("unexpected cart id: %+v", res)
	}
	if len(res.Items) != 1 || res.Items[0].LineTotal != 21 {
		t.Fatalf("unexpected lines: %+v", res.Items)
	}

	back := res.ToEntity()
	if back.CartID != "c-1" || back.Total != 21 || back.Items[0].Name != "Mate" {
		t.Fatalf("unexpected entity: %+v", back)
	}
}

func TestFromOrder(t *testing.T) {
	now := time.Now().UTC()
	o := entities.Order{
		ID:            "o-1",
		UserID:        "u-1",
		CartID:        "c-1",
		Total:         30,
		PaymentStatus: entities.PaymentStatusPending,
		Items: []entities.OrderLine{
			{ProductID: "p-1", SKU: "SKU-1", Name: "Yerba", Quantity: 3, UnitPrice: 10, LineTotal: 30},
		},
		CreatedAt: now,
	}

	res := FromOrder(o)
	if res.ID != "o-1" || res.PaymentStatus != "pending" || !res.CreatedAt.Equal(now) {
		t.Fatalf("unexpected order: %+v", res)
	}
	if len(res.Items) != 1 || res.Items[0].SKU != "SKU-1" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}

	empty := FromOrder(entities.Order{ID: "o-2"})
	if empty.Items == nil {
		t.Fatalf("expected empty items slice")
	}
	if back := empty.ToEntity(); back.Items == nil {
		t.Fatalf("expected entity items to be non-nil")
	}
}

func TestFromCartWithSummary(t *testing.T) {
	c := entities.Cart{ID: "c-1", UserID: "u-1", Status: entities.CartStatusCheckedOut}
	res := FromCartWithSummary(c, entities.CartSummary{CartID: "c-1", UserID: "u-1"})
	if res.Status != "checked_out" || res.Summary == nil || *res.Summary.CartID != "c-1" {
		t.Fatalf("unexpected cart: %+v", res)
	}
	if FromCart(c).Summary != nil {
		t.Fatalf("expected summary omitted")
	}
}

func TestFromUsersAndProducts(t *testing.T) {
	if got := FromUsers(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty user list, got %v", got)
	}
	products := FromProducts([]entities.Product{{ID: "p-1", SKU: "S", Price: 9.99, IsOffer: true}})
	if len(products) != 1 || !products[0].IsOffer || products[0].Price != 9.99 {
		t.Fatalf("unexpected products: %+v", products)
	}
}
