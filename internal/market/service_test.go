package market

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// capturePublisher records published envelopes in order.
type capturePublisher struct {
	topics []string
	envs   []Envelope
}

func (p *capturePublisher) Publish(topic string, _ []byte, env Envelope) {
	p.topics = append(p.topics, topic)
	p.envs = append(p.envs, env)
}

func newCaptureService() (*Service, *capturePublisher) {
	pub := &capturePublisher{}
	return NewService(storage.NewMemory(), pub, "test"), pub
}

func TestMakeReservation(t *testing.T) {
	ctx := context.Background()
	svc, pub := newCaptureService()
	p, _ := svc.Plants.Create(ctx, Plant{Name: "Neem", Price: 299, Stock: 12})
	_, _ = svc.Customers.Create(ctx, Customer{ID: "c1", Name: "Alice", Email: "a@x", Password: "pw"})

	rec, err := svc.MakeReservation(ctx, "c1", p.ID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != ReservationPending || rec.PlantName != "Neem" || rec.Qty != 5 {
		t.Fatalf("reservation: %+v", rec)
	}
	after, _ := svc.Plants.Find(ctx, p.ID)
	if after.Stock != 7 {
		t.Fatalf("stock after reserve: %d", after.Stock)
	}
	if len(pub.topics) != 1 || pub.topics[0] != TopicReservationCreated {
		t.Fatalf("topics: %v", pub.topics)
	}
	pl, err := UnwrapPayload[ReservationCreatedPayload](pub.envs[0].Payload)
	if err != nil || pl.StockLeft != 7 || pl.ReservationID != rec.ID {
		t.Fatalf("payload: %+v %v", pl, err)
	}

	// failure leaves no record and no event
	if _, err := svc.MakeReservation(ctx, "c1", p.ID, 100); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("over-reserve: got %v", err)
	}
	if got := svc.Reservations.List(ctx); len(got) != 1 {
		t.Fatalf("reservations after failure: %+v", got)
	}
	if len(pub.topics) != 1 {
		t.Fatalf("failed reserve should not publish: %v", pub.topics)
	}
	if _, err := svc.MakeReservation(ctx, "c1", "nope", 1); !errors.Is(err, ErrPlantNotFound) {
		t.Fatalf("missing plant: got %v", err)
	}
}

func TestCancelReservationKeepsStockSpent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCaptureService()
	p, _ := svc.Plants.Create(ctx, Plant{Name: "Basil", Price: 39, Stock: 10})
	rec, _ := svc.MakeReservation(ctx, "c1", p.ID, 3)

	removed, err := svc.CancelReservation(ctx, rec.ID)
	if err != nil || !removed {
		t.Fatalf("cancel: removed=%v err=%v", removed, err)
	}
	if got := svc.Reservations.List(ctx); len(got) != 0 {
		t.Fatalf("reservations after cancel: %+v", got)
	}
	// the hold stays spent
	after, _ := svc.Plants.Find(ctx, p.ID)
	if after.Stock != 7 {
		t.Fatalf("cancel must not restock, got %d", after.Stock)
	}
	if removed, _ := svc.CancelReservation(ctx, rec.ID); removed {
		t.Fatal("second cancel should report false")
	}
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	svc, pub := newCaptureService()
	p, _ := svc.Plants.Create(ctx, Plant{Name: "Neem", Price: 299, Stock: 7})

	// empty cart refuses checkout
	if _, err := svc.Checkout(ctx, "c1"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("empty cart: got %v", err)
	}

	_ = svc.Cart.Add(ctx, CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Qty: 2})
	o, err := svc.Checkout(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Total != 598 || o.Status != StatusCompleted || len(o.Items) != 1 {
		t.Fatalf("order: %+v", o)
	}
	if o.Items[0].PlantID != p.ID || o.Items[0].Quantity != 2 {
		t.Fatalf("order item: %+v", o.Items[0])
	}
	// cart is cleared, stock untouched (only reservations move stock)
	if items := svc.Cart.Items(ctx); len(items) != 0 {
		t.Fatalf("cart after checkout: %+v", items)
	}
	after, _ := svc.Plants.Find(ctx, p.ID)
	if after.Stock != 7 {
		t.Fatalf("checkout must not touch stock, got %d", after.Stock)
	}
	if len(pub.topics) != 1 || pub.topics[0] != TopicOrderCreated {
		t.Fatalf("topics: %v", pub.topics)
	}

	// later plant edits never rewrite the order snapshot
	newPrice := 999.0
	_, _ = svc.Plants.Update(ctx, p.ID, PlantPatch{Price: &newPrice})
	got, _ := svc.Orders.Find(ctx, o.ID)
	if got.Items[0].Price != 299 {
		t.Fatalf("snapshot price changed: %v", got.Items[0].Price)
	}
}

func TestUpdateOrderStatusAndStats(t *testing.T) {
	ctx := context.Background()
	svc, pub := newCaptureService()
	o1, _ := svc.Orders.Create(ctx, "c1", []CartItem{{ID: "p1", Name: "x", Price: 100, Qty: 1}}, 100)
	_, _ = svc.Orders.Create(ctx, "c1", []CartItem{{ID: "p1", Name: "x", Price: 50.555, Qty: 1}}, 50.555)

	st := svc.Orders.Stats(ctx)
	if st.TotalOrders != 2 || st.CompletedOrders != 2 || st.TotalRevenue != 150.56 {
		t.Fatalf("stats: %+v", st)
	}

	upd, err := svc.UpdateOrderStatus(ctx, o1.ID, StatusShipped)
	if err != nil || upd.Status != StatusShipped {
		t.Fatalf("update: %+v %v", upd, err)
	}
	if last := pub.topics[len(pub.topics)-1]; last != TopicOrderStatus {
		t.Fatalf("topics: %v", pub.topics)
	}
	// shipped orders drop out of completed revenue
	st = svc.Orders.Stats(ctx)
	if st.CompletedOrders != 1 || st.TotalRevenue != 50.56 {
		t.Fatalf("stats after ship: %+v", st)
	}

	if _, err := svc.UpdateOrderStatus(ctx, "nope", StatusShipped); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order: got %v", err)
	}
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCaptureService()
	mine, _ := svc.AddSellerPlant(ctx, "s1", Plant{Name: "Neem", Price: 299, Stock: 3}) // below low-stock threshold
	_, _ = svc.AddSellerPlant(ctx, "s1", Plant{Name: "Basil", Price: 39, Stock: 50})
	other, _ := svc.AddSellerPlant(ctx, "s2", Plant{Name: "Fern", Price: 150, Stock: 10})

	_, _ = svc.Orders.Create(ctx, "c1", []CartItem{
		{ID: mine.ID, Name: mine.Name, Price: mine.Price, Qty: 2},
		{ID: other.ID, Name: other.Name, Price: other.Price, Qty: 1},
	}, 299*2+150)

	a := svc.Analytics(ctx, "s1")
	if a.TotalProducts != 2 || a.LowStockCount != 1 {
		t.Fatalf("analytics products: %+v", a)
	}
	if a.SalesCount != 2 || a.TotalSales != 598 {
		t.Fatalf("analytics sales: %+v", a)
	}

	// seller with no plants and no sales
	empty := svc.Analytics(ctx, "s9")
	if empty != (SellerAnalytics{}) {
		t.Fatalf("empty analytics: %+v", empty)
	}
}

func TestCascadeDeletePlant(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCaptureService()
	p, _ := svc.AddSellerPlant(ctx, "s1", Plant{Name: "Neem", Price: 299, Stock: 10})
	keep, _ := svc.AddSellerPlant(ctx, "s1", Plant{Name: "Basil", Price: 39, Stock: 50})

	c, _ := svc.Customers.Create(ctx, Customer{Name: "Alice", Email: "a@x", Password: "pw"})
	_ = svc.Customers.SavePlant(ctx, c.ID, p.ID)
	_ = svc.Customers.SavePlant(ctx, c.ID, keep.ID)
	_, _ = svc.MakeReservation(ctx, c.ID, p.ID, 1)
	_, _ = svc.Reviews.Add(ctx, p.ID, "Bob", "nice")

	removed, err := svc.CascadeDeletePlant(ctx, p.ID)
	if err != nil || !removed {
		t.Fatalf("cascade: removed=%v err=%v", removed, err)
	}
	if _, err := svc.Plants.Find(ctx, p.ID); !errors.Is(err, ErrPlantNotFound) {
		t.Fatal("plant should be gone")
	}
	if got := svc.Reservations.List(ctx); len(got) != 0 {
		t.Fatalf("reservations: %+v", got)
	}
	if got := svc.Reviews.List(ctx, p.ID); len(got) != 0 {
		t.Fatalf("reviews: %+v", got)
	}
	after, _ := svc.Customers.Find(ctx, c.ID)
	if len(after.Saved) != 1 || after.Saved[0] != keep.ID {
		t.Fatalf("wishlist refs: %v", after.Saved)
	}

	if removed, _ := svc.CascadeDeletePlant(ctx, p.ID); removed {
		t.Fatal("second cascade should report false")
	}
}

func TestCascadeDeleteSeller(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCaptureService()
	s, _ := svc.Sellers.Create(ctx, Seller{Name: "GreenLeaf", Email: "g@x", Password: "pw"})
	p1, _ := svc.AddSellerPlant(ctx, s.ID, Plant{Name: "Neem", Price: 299, Stock: 10})
	p2, _ := svc.AddSellerPlant(ctx, s.ID, Plant{Name: "Basil", Price: 39, Stock: 50})
	foreign, _ := svc.AddSellerPlant(ctx, "s2", Plant{Name: "Fern", Price: 150, Stock: 10})

	removed, err := svc.DeleteUser(ctx, s.ID, RoleSeller)
	if err != nil || !removed {
		t.Fatalf("delete seller: removed=%v err=%v", removed, err)
	}
	if _, err := svc.Sellers.Find(ctx, s.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatal("seller should be gone")
	}
	for _, id := range []string{p1.ID, p2.ID} {
		if _, err := svc.Plants.Find(ctx, id); !errors.Is(err, ErrPlantNotFound) {
			t.Fatalf("plant %s should be gone", id)
		}
	}
	if _, err := svc.Plants.Find(ctx, foreign.ID); err != nil {
		t.Fatal("other seller's plant should survive")
	}
}

func TestSellerPlantOwnership(t *testing.T) {
	ctx := context.Background()
	svc, pub := newCaptureService()
	p, _ := svc.AddSellerPlant(ctx, "s1", Plant{Name: "Neem", Price: 299, Stock: 10})
	if p.VendorID != "s1" {
		t.Fatalf("vendor id not stamped: %+v", p)
	}

	price := 349.0
	if _, err := svc.UpdateSellerPlant(ctx, "s2", p.ID, PlantPatch{Price: &price}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign update: got %v", err)
	}
	upd, err := svc.UpdateSellerPlant(ctx, "s1", p.ID, PlantPatch{Price: &price})
	if err != nil || upd.Price != 349 {
		t.Fatalf("own update: %+v %v", upd, err)
	}
	if last := pub.topics[len(pub.topics)-1]; last != TopicPlantUpdated {
		t.Fatalf("topics: %v", pub.topics)
	}

	if removed, _ := svc.DeleteSellerPlant(ctx, "s2", p.ID); removed {
		t.Fatal("foreign delete should report false")
	}
	if removed, _ := svc.DeleteSellerPlant(ctx, "s1", p.ID); !removed {
		t.Fatal("own delete should succeed")
	}
}

func TestNotifySavedCustomers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCaptureService()
	a, _ := svc.Customers.Create(ctx, Customer{Name: "Alice", Email: "a@x", Password: "pw"})
	b, _ := svc.Customers.Create(ctx, Customer{Name: "Bob", Email: "b@x", Password: "pw"})
	_ = svc.Customers.SavePlant(ctx, a.ID, "p1")

	n, err := svc.NotifySavedCustomers(ctx, PlantUpdatedPayload{PlantID: "p1", Name: "Neem", Price: 349, Stock: 7})
	if err != nil || n != 1 {
		t.Fatalf("fanout: n=%d err=%v", n, err)
	}
	got, _ := svc.Customers.Find(ctx, a.ID)
	if len(got.Notifications) != 1 {
		t.Fatalf("notifications: %+v", got.Notifications)
	}
	note := got.Notifications[0]
	if note.Type != "plant_update" || note.PlantID != "p1" {
		t.Fatalf("notification: %+v", note)
	}
	if note.Text != "Neem updated: price ₹349, stock 7" {
		t.Fatalf("text: %q", note.Text)
	}
	other, _ := svc.Customers.Find(ctx, b.ID)
	if len(other.Notifications) != 0 {
		t.Fatal("non-saver should not be notified")
	}
}

func TestNotifyOrderStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCaptureService()
	c, _ := svc.Customers.Create(ctx, Customer{Name: "Alice", Email: "a@x", Password: "pw"})

	n, err := svc.NotifyOrderStatus(ctx, OrderStatusChangedPayload{
		OrderID: "abcdef123456", CustomerID: c.ID, Status: StatusShipped,
	})
	if err != nil || n != 1 {
		t.Fatalf("notify: n=%d err=%v", n, err)
	}
	got, _ := svc.Customers.Find(ctx, c.ID)
	if got.Notifications[0].Text != "Order #123456 is now shipped" {
		t.Fatalf("text: %q", got.Notifications[0].Text)
	}
}

func TestSearchPlants(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCaptureService()
	_, _ = svc.Plants.Create(ctx, Plant{Name: "Neem", Species: "Azadirachta indica", Price: 299, Stock: 12, Type: "trees", Tags: []string{"medicinal"}})
	_, _ = svc.Plants.Create(ctx, Plant{Name: "Snake Plant", Species: "Sansevieria", Price: 249, Stock: 6, Type: "indoor", Tags: []string{"air-purifying"}})
	_, _ = svc.Plants.Create(ctx, Plant{Name: "Basil", Species: "Ocimum basilicum", Price: 39, Stock: 50, Type: "herbs"})

	// free text matches name, species and tags, case-insensitive
	for _, q := range []string{"neem", "AZADIRACHTA", "medicinal"} {
		got := svc.SearchPlants(ctx, CatalogQuery{Text: q})
		if len(got) != 1 || got[0].Name != "Neem" {
			t.Fatalf("q=%q got %+v", q, got)
		}
	}

	// type filter; "all" means no filter
	if got := svc.SearchPlants(ctx, CatalogQuery{Type: "indoor"}); len(got) != 1 {
		t.Fatalf("type filter: %+v", got)
	}
	if got := svc.SearchPlants(ctx, CatalogQuery{Type: "all"}); len(got) != 3 {
		t.Fatalf("type all: %+v", got)
	}

	// price bounds
	if got := svc.SearchPlants(ctx, CatalogQuery{MinPrice: 100, MaxPrice: 260}); len(got) != 1 || got[0].Name != "Snake Plant" {
		t.Fatalf("price bounds: %+v", got)
	}

	// sorts
	byName := svc.SearchPlants(ctx, CatalogQuery{})
	if byName[0].Name != "Basil" || byName[2].Name != "Snake Plant" {
		t.Fatalf("name sort: %+v", byName)
	}
	byPrice := svc.SearchPlants(ctx, CatalogQuery{Sort: "price"})
	if byPrice[0].Price != 39 || byPrice[2].Price != 299 {
		t.Fatalf("price sort: %+v", byPrice)
	}
	byStock := svc.SearchPlants(ctx, CatalogQuery{Sort: "stock"})
	if byStock[0].Stock != 50 {
		t.Fatalf("stock sort: %+v", byStock)
	}

	types := svc.PlantTypes(ctx)
	if strings.Join(types, ",") != "herbs,indoor,trees" {
		t.Fatalf("types: %v", types)
	}
}
