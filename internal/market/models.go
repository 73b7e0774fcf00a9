// Package market holds the nursery marketplace records and the repositories
// and workflows over them. JSON field names follow the persisted ns_* layout,
// so existing data exports stay readable.
package market

import "time"

type Plant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Species   string    `json:"species,omitempty"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Type      string    `json:"type,omitempty"`
	Tags      []string  `json:"tags"`
	Image     string    `json:"image,omitempty"`
	Info      string    `json:"info,omitempty"`
	VendorID  string    `json:"vendor_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Seller struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"` // base64 of plaintext, demo only
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Customer struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Password      string         `json:"password"` // base64 of plaintext, demo only
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	Saved         []string       `json:"saved"`  // plant ids (wishlist)
	Orders        []string       `json:"orders"` // legacy; canonical records live under ns_orders
	Notifications []Notification `json:"notifications,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type Notification struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	PlantID string    `json:"plantId,omitempty"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

type Reservation struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	PlantID    string    `json:"plantId"`
	PlantName  string    `json:"plantName"` // snapshot at reservation time
	Qty        int       `json:"qty"`
	Status     string    `json:"status"` // starts "pending"
	CreatedAt  time.Time `json:"createdAt"`
}

const ReservationPending = "pending"

type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customerId"`
	Items      []OrderItem `json:"items"`
	Total      float64     `json:"total"`
	Status     Status      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// OrderItem is a denormalized snapshot: later plant edits never rewrite
// order history.
type OrderItem struct {
	PlantID  string  `json:"plantId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Review struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartItem id doubles as the plant id. The cart is one shared collection,
// not scoped per customer.
type CartItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// Vendor is the curated directory shown on plant detail pages, separate from
// seller accounts.
type Vendor struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Rating   float64 `json:"rating"`
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Session is the singleton under ns_session. The admin session carries a
// fixed sentinel id and matches no stored record.
type Session struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
}

const AdminSessionID = "admin_1"
