package market

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// Plants with stock below this show up in the seller's low-stock counter.
const lowStockThreshold = 5

// Service runs the cross-entity workflows. It holds no state of its own:
// every call re-reads the store, which stays the single source of truth.
type Service struct {
	Plants       *PlantRepo
	Sellers      *SellerRepo
	Customers    *CustomerRepo
	Orders       *OrderRepo
	Reservations *ReservationRepo
	Reviews      *ReviewRepo
	Cart         *CartRepo
	Vendors      *VendorRepo

	Events      Publisher
	ServiceName string
}

func NewService(store storage.Store, events Publisher, serviceName string) *Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &Service{
		Plants:       &PlantRepo{Store: store},
		Sellers:      &SellerRepo{Store: store},
		Customers:    &CustomerRepo{Store: store},
		Orders:       &OrderRepo{Store: store},
		Reservations: &ReservationRepo{Store: store},
		Reviews:      &ReviewRepo{Store: store},
		Cart:         &CartRepo{Store: store},
		Vendors:      &VendorRepo{Store: store},
		Events:       events,
		ServiceName:  serviceName,
	}
}

func (s *Service) publish(topic, eventType, correlationID string, payload any) {
	s.Events.Publish(topic, PartitionKey(correlationID),
		NewEnvelope(eventType, s.ServiceName, correlationID, payload))
}

// MakeReservation decrements plant stock and appends a pending reservation.
// Qty must be positive (caller-validated at the edge; guarded here too).
// Fails with ErrPlantNotFound or ErrInsufficientStock, leaving stock
// untouched on failure.
func (s *Service) MakeReservation(ctx context.Context, customerID, plantID string, qty int) (Reservation, error) {
	p, err := s.Plants.ReserveStock(ctx, plantID, qty)
	if err != nil {
		return Reservation{}, err
	}
	rec, err := s.Reservations.Create(ctx, customerID, p, qty)
	if err != nil {
		return Reservation{}, err
	}
	s.publish(TopicReservationCreated, EventReservationCreated, rec.ID, ReservationCreatedPayload{
		ReservationID: rec.ID,
		CustomerID:    customerID,
		PlantID:       p.ID,
		PlantName:     p.Name,
		Qty:           qty,
		StockLeft:     p.Stock,
	})
	return rec, nil
}

// CancelReservation removes the record. Stock is not restored: the hold was
// spent at reservation time.
func (s *Service) CancelReservation(ctx context.Context, id string) (bool, error) {
	return s.Reservations.Delete(ctx, id)
}

// CreateOrder snapshots cart lines into an order. It does NOT clear the
// cart; the caller must do that after a successful return (see Checkout).
func (s *Service) CreateOrder(ctx context.Context, customerID string, items []CartItem, total float64) (Order, error) {
	o, err := s.Orders.Create(ctx, customerID, items, total)
	if err != nil {
		return Order{}, err
	}
	s.publish(TopicOrderCreated, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Items:      o.Items,
		Total:      o.Total,
	})
	return o, nil
}

// Checkout is the presentation-flow sequence: order from the live cart, then
// clear the cart. Stock is untouched; only reservations move stock.
func (s *Service) Checkout(ctx context.Context, customerID string) (Order, error) {
	items := s.Cart.Items(ctx)
	if len(items) == 0 {
		return Order{}, ErrMissingFields
	}
	o, err := s.CreateOrder(ctx, customerID, items, s.Cart.Total(ctx))
	if err != nil {
		return Order{}, err
	}
	if err := s.Cart.Clear(ctx); err != nil {
		log.Warn().Err(err).Str("order", o.ID).Msg("market: cart clear after checkout failed")
	}
	return o, nil
}

// UpdateOrderStatus overwrites the status unconditionally. Forward-only
// gating (CanTransition) is left to the calling layer.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status Status) (Order, error) {
	o, err := s.Orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return Order{}, err
	}
	s.publish(TopicOrderStatus, EventOrderStatusChanged, o.ID, OrderStatusChangedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
	})
	return o, nil
}

type SellerAnalytics struct {
	TotalProducts int     `json:"totalProducts"`
	TotalSales    float64 `json:"totalSales"`
	SalesCount    int     `json:"salesCount"`
	LowStockCount int     `json:"lowStockCount"`
}

// Analytics recomputes from scratch on every call by scanning all orders and
// matching line items to the seller's plants. No cached aggregate.
func (s *Service) Analytics(ctx context.Context, sellerID string) SellerAnalytics {
	vendorOf := map[string]string{}
	for _, p := range s.Plants.List(ctx) {
		vendorOf[p.ID] = p.VendorID
	}

	a := SellerAnalytics{}
	for _, p := range s.Plants.ByVendor(ctx, sellerID) {
		a.TotalProducts++
		if p.Stock < lowStockThreshold {
			a.LowStockCount++
		}
	}
	for _, o := range s.Orders.List(ctx) {
		for _, it := range o.Items {
			if vendorOf[it.PlantID] == sellerID {
				a.TotalSales += it.Price * float64(it.Quantity)
				a.SalesCount += it.Quantity
			}
		}
	}
	a.TotalSales = math.Round(a.TotalSales*100) / 100
	return a
}

// CascadeDeletePlant removes the plant and everything that exists only in
// reference to it: reservations, the review partition, and wishlist refs.
// All steps run even if one fails, so a single bad write cannot strand the
// rest of the cascade; errors are joined.
func (s *Service) CascadeDeletePlant(ctx context.Context, plantID string) (bool, error) {
	removed, err := s.Plants.Delete(ctx, plantID)
	if !removed {
		return false, err
	}
	err = errors.Join(err,
		s.Reservations.DeleteByPlant(ctx, plantID),
		s.Reviews.DeleteAll(ctx, plantID),
		s.Customers.StripSavedRefs(ctx, plantID),
	)
	return true, err
}

// CascadeDeleteSeller removes the seller and every plant they own, each via
// the full plant cascade.
func (s *Service) CascadeDeleteSeller(ctx context.Context, sellerID string) (bool, error) {
	plants := s.Plants.ByVendor(ctx, sellerID)
	removed, err := s.Sellers.Delete(ctx, sellerID)
	if !removed {
		return false, err
	}
	for _, p := range plants {
		_, cerr := s.CascadeDeletePlant(ctx, p.ID)
		err = errors.Join(err, cerr)
	}
	return true, err
}

// DeleteUser is the admin removal: sellers cascade, customers are shallow.
func (s *Service) DeleteUser(ctx context.Context, id string, role Role) (bool, error) {
	if role == RoleSeller {
		return s.CascadeDeleteSeller(ctx, id)
	}
	return s.Customers.Delete(ctx, id)
}

// AddSellerPlant creates a listing owned by the seller.
func (s *Service) AddSellerPlant(ctx context.Context, sellerID string, p Plant) (Plant, error) {
	p.VendorID = sellerID
	return s.Plants.Create(ctx, p)
}

// UpdateSellerPlant patches a listing after checking ownership, then emits
// PlantUpdated so the notifier can fan out to customers who saved it.
func (s *Service) UpdateSellerPlant(ctx context.Context, sellerID, plantID string, patch PlantPatch) (Plant, error) {
	existing, err := s.Plants.Find(ctx, plantID)
	if err != nil {
		return Plant{}, err
	}
	if existing.VendorID != sellerID {
		return Plant{}, ErrNotFound
	}
	p, err := s.Plants.Update(ctx, plantID, patch)
	if err != nil {
		return Plant{}, err
	}
	s.publish(TopicPlantUpdated, EventPlantUpdated, p.ID, PlantUpdatedPayload{
		PlantID: p.ID,
		Name:    p.Name,
		Price:   p.Price,
		Stock:   p.Stock,
	})
	return p, nil
}

// DeleteSellerPlant checks ownership, then runs the full cascade.
func (s *Service) DeleteSellerPlant(ctx context.Context, sellerID, plantID string) (bool, error) {
	existing, err := s.Plants.Find(ctx, plantID)
	if err != nil || existing.VendorID != sellerID {
		return false, nil
	}
	return s.CascadeDeletePlant(ctx, plantID)
}

// NotifySavedCustomers appends a plant_update notification to every customer
// whose wishlist holds the plant. Returns how many were notified.
func (s *Service) NotifySavedCustomers(ctx context.Context, p PlantUpdatedPayload) (int, error) {
	text := fmt.Sprintf("%s updated: price ₹%v, stock %d", p.Name, p.Price, p.Stock)
	return s.Customers.Notify(ctx, func(c Customer) bool {
		for _, pid := range c.Saved {
			if pid == p.PlantID {
				return true
			}
		}
		return false
	}, Notification{Type: "plant_update", PlantID: p.PlantID, Text: text})
}

// NotifyOrderStatus appends an order_status notification to the order's
// customer.
func (s *Service) NotifyOrderStatus(ctx context.Context, p OrderStatusChangedPayload) (int, error) {
	text := fmt.Sprintf("Order #%s is now %s", shortID(p.OrderID), p.Status)
	return s.Customers.Notify(ctx, func(c Customer) bool {
		return c.ID == p.CustomerID
	}, Notification{Type: "order_status", Text: text})
}

// shortID is the display label for an order: last 6 chars of the id.
func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
