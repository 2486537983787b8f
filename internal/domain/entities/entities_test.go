package entities

import (
	"testing"
	"time"
)

func TestNormalizeEmailAndPhone(t *testing.T) {
	if got := NormalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Fatalf("unexpected email %q", got)
	}
	cases := map[string]string{
		"whatsapp:+54 9 11 6014-9123": "5491160149123",
		"+5491160149123":              "5491160149123",
		"(011) 4444-5555":             "01144445555",
		"+54 ١١ 4444-5555":            "5444445555",
		"１２３":                         "",
		"":                            "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUserSearch_Matches(t *testing.T) {
	u := User{Name: "Sergio Test", Email: "sergio@example.com", Phone: "5491160149123"}

	if !(UserSearch{Name: "serg"}).Normalize().Matches(u) {
		t.Fatalf("expected partial name match")
	}
	if !(UserSearch{Email: " SERGIO@example.com"}).Normalize().Matches(u) {
		t.Fatalf("expected exact email match")
	}
	if (UserSearch{Email: "sergio@"}).Normalize().Matches(u) {
		t.Fatalf("email must match exactly")
	}
	if !(UserSearch{Name: "nobody", Phone: "whatsapp:+5491160149123"}).Normalize().Matches(u) {
		t.Fatalf("expected OR semantics on phone")
	}
	if !(UserSearch{}).IsEmpty() {
		t.Fatalf("expected empty search")
	}
}

func TestCatalogFilter_Apply(t *testing.T) {
	products := []Product{
		{ID: "1", SKU: "P001", Name: "Leche entera 1L", Category: "Lácteos", IsOffer: false},
		{ID: "2", SKU: "P041", Name: "Papel higiénico", Category: "Limpieza", IsOffer: true},
		{ID: "3", SKU: "P092", Name: "Tapa para empanadas", Category: "Almacén", Description: "Tapas de hojaldre", IsOffer: true},
		{ID: "4", SKU: "P050", Name: "Mayonesa", Category: "Almacén"},
	}

	t.Run("query matches sku and description", func(t *testing.T) {
		if got := (CatalogFilter{Query: "p041"}).Apply(products); len(got) != 1 || got[0].ID != "2" {
			t.Fatalf("unexpected result %+v", got)
		}
		if got := (CatalogFilter{Query: "HOJALDRE"}).Apply(products); len(got) != 1 || got[0].ID != "3" {
			t.Fatalf("unexpected result %+v", got)
		}
	})

	t.Run("category and offers", func(t *testing.T) {
		got := (CatalogFilter{Category: "almacén", OnlyOffers: true}).Apply(products)
		if len(got) != 1 || got[0].ID != "3" {
			t.Fatalf("unexpected result %+v", got)
		}
	})

	t.Run("limit", func(t *testing.T) {
		if got := (CatalogFilter{Limit: 2}).Apply(products); len(got) != 2 {
			t.Fatalf("expected 2 products, got %d", len(got))
		}
	})
}

func TestBuildCartSummary(t *testing.T) {
	cart := Cart{ID: "c1", UserID: "u1", Status: CartStatusOpen, CreatedAt: time.Now()}
	items := []CartItem{
		{CartID: "c1", ProductID: "p2", Quantity: 3, UnitPrice: 0.1},
		{CartID: "c1", ProductID: "p1", Quantity: 2, UnitPrice: 100},
	}
	products := map[string]Product{
		"p1": {ID: "p1", Name: "Alfajor"},
		"p2": {ID: "p2", Name: "Bizcocho"},
	}

	s := BuildCartSummary(cart, items, products)
	if s.CartID != "c1" || s.UserID != "u1" {
		t.Fatalf("unexpected ids %+v", s)
	}
	if len(s.Items) != 2 || s.Items[0].Name != "Alfajor" {
		t.Fatalf("expected lines ordered by name: %+v", s.Items)
	}
	if s.Items[0].LineTotal != 200 || s.Items[1].LineTotal != 0.3 {
		t.Fatalf("unexpected line totals: %+v", s.Items)
	}
	if s.Total != 200.3 {
		t.Fatalf("expected total 200.3, got %v", s.Total)
	}
}

func TestSnapshotOrderLines(t *testing.T) {
	items := []CartItem{{ProductID: "p1", Quantity: 3, UnitPrice: 100}}
	products := map[string]Product{"p1": {ID: "p1", SKU: "P001", Name: "Leche", Price: 999}}

	lines, total := SnapshotOrderLines(items, products)
	if total != 300 {
		t.Fatalf("total must use the stored unit price, got %v", total)
	}
	if len(lines) != 1 || lines[0].SKU != "P001" || lines[0].LineTotal != 300 {
		t.Fatalf("unexpected lines %+v", lines)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(300); got != "300.00" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatAmount(0.1 + 0.2); got != "0.30" {
		t.Fatalf("unexpected %q", got)
	}
}
