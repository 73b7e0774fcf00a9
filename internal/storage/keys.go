package storage

import "time"

const (
	KeyCustomers    = "ns_customers"
	KeySellers      = "ns_sellers"
	KeyPlants       = "ns_plants"
	KeyVendors      = "ns_vendors"
	KeySession      = "ns_session"
	KeyReservations = "ns_reservations"
	KeyOrders       = "ns_orders"
	KeyCart         = "ns_cart"

	// Review partition per plant: ns_reviews_{plant_id}
	KeyReviews = "ns_reviews_%s"

	// Raw cart snapshot per order: ns_order_items_{order_id}. Write-only;
	// nothing in the core reads it back.
	KeyOrderItems = "ns_order_items_%s"

	// Dedup event processing di notifier: ns_dedup:{service}:{event_id}
	KeyDedup = "ns_dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour
