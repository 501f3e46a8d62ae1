package services_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shopbot/internal/domain"
	"shopbot/internal/services"
	"shopbot/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), "data.json"))
	st.AddProduct(domain.Product{
		ID:    1,
		Title: "Hoodie",
		Price: 500,
		Sizes: []domain.SizeVariant{
			{Size: "S", Quantity: 3},
			{Size: "M", Quantity: 5},
		},
		Photos: []string{"f1"},
	})
	st.AddProduct(domain.Product{
		ID:       2,
		Title:    "Mug",
		Price:    120,
		Quantity: 4,
		Photos:   []string{"f2"},
	})
	return st
}

func newOrderService(st *store.Store) *services.OrderService {
	svc := services.NewOrderService(st)
	svc.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestPlaceDecrementsAndRecords(t *testing.T) {
	st := seededStore(t)
	svc := newOrderService(st)

	order, err := svc.Place(services.OrderRequest{
		Name:    "Olena",
		Contact: "@olena",
		Items: []services.OrderLine{
			{ProductID: 1, Title: "Hoodie", Size: "M", Qty: 2},
			{ProductID: 2, Title: "Mug", Qty: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if order.ID == 0 || order.Name != "Olena" || len(order.Items) != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.Items[0].Title != "Hoodie" || order.Items[0].Size != "M" || order.Items[0].Qty != 2 {
		t.Fatalf("line items must match the request: %+v", order.Items)
	}

	hoodie, _ := st.Product(1)
	if hoodie.Variant("M").Quantity != 3 || hoodie.Variant("S").Quantity != 3 {
		t.Fatalf("want M decremented to 3 and S untouched, got %+v", hoodie.Sizes)
	}
	mug, _ := st.Product(2)
	if mug.Quantity != 3 {
		t.Fatalf("want flat stock decremented to 3, got %d", mug.Quantity)
	}
	if st.OrderCount() != 1 {
		t.Fatalf("want 1 recorded order, got %d", st.OrderCount())
	}
}

func TestPlaceRejectsWholeOrderOnAnyBadLine(t *testing.T) {
	cases := []struct {
		name    string
		line    services.OrderLine
		wantErr string
	}{
		{"unknown product", services.OrderLine{ProductID: 99, Title: "Ghost", Qty: 1}, "no longer available"},
		{"unknown size", services.OrderLine{ProductID: 1, Title: "Hoodie", Size: "XXL", Qty: 1}, "no size"},
		{"insufficient stock", services.OrderLine{ProductID: 1, Title: "Hoodie", Size: "S", Qty: 10}, "not enough stock"},
		{"missing size on sized product", services.OrderLine{ProductID: 1, Title: "Hoodie", Qty: 1}, "no size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := seededStore(t)
			svc := newOrderService(st)

			// a perfectly valid line first: it must not be committed either
			_, err := svc.Place(services.OrderRequest{
				Name:    "Olena",
				Contact: "@olena",
				Items: []services.OrderLine{
					{ProductID: 2, Title: "Mug", Qty: 1},
					tc.line,
				},
			})
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
			}

			mug, _ := st.Product(2)
			if mug.Quantity != 4 {
				t.Fatalf("rejection must decrement nothing, mug stock = %d", mug.Quantity)
			}
			if st.OrderCount() != 0 {
				t.Fatalf("rejection must record nothing, orders = %d", st.OrderCount())
			}
		})
	}
}

func TestPlaceRejectsEmptyAndInvalidQuantities(t *testing.T) {
	st := seededStore(t)
	svc := newOrderService(st)

	if _, err := svc.Place(services.OrderRequest{Name: "A", Contact: "B"}); err == nil {
		t.Fatal("empty item list must be rejected")
	}
	_, err := svc.Place(services.OrderRequest{
		Name: "A", Contact: "B",
		Items: []services.OrderLine{{ProductID: 2, Title: "Mug", Qty: 0}},
	})
	if err == nil {
		t.Fatal("zero quantity must be rejected")
	}
}

func TestPlaceDrainsStockExactly(t *testing.T) {
	st := seededStore(t)
	svc := newOrderService(st)

	for i := 0; i < 4; i++ {
		if _, err := svc.Place(services.OrderRequest{
			Name: "A", Contact: "B",
			Items: []services.OrderLine{{ProductID: 2, Title: "Mug", Qty: 1}},
		}); err != nil {
			t.Fatalf("order %d: %v", i, err)
		}
	}
	mug, _ := st.Product(2)
	if mug.Quantity != 0 {
		t.Fatalf("want stock drained to 0, got %d", mug.Quantity)
	}
	if _, err := svc.Place(services.OrderRequest{
		Name: "A", Contact: "B",
		Items: []services.OrderLine{{ProductID: 2, Title: "Mug", Qty: 1}},
	}); err == nil {
		t.Fatal("order beyond stock must be rejected")
	}
	if st.OrderCount() != 4 {
		t.Fatalf("want exactly 4 orders, got %d", st.OrderCount())
	}
}
