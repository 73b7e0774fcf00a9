package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
	"github.com/greenleaf/nursery-market/internal/storage"
)

func newTestRouter() *chi.Mux {
	store := storage.NewMemory()
	m := market.NewService(store, nil, "test")
	a := auth.NewService(m, &auth.SessionStore{Store: store}, "")

	r := NewRouter()
	(&AuthHandler{Auth: a}).Register(r)
	(&CatalogHandler{Market: m, Auth: a}).Register(r)
	(&CartHandler{Market: m, Auth: a}).Register(r)
	(&SellerHandler{Market: m, Auth: a}).Register(r)
	(&AdminHandler{Market: m, Auth: a}).Register(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestMarketplaceFlow(t *testing.T) {
	r := newTestRouter()

	// seller lists a plant
	var seller auth.Account
	if code := do(t, r, "POST", "/auth/register", map[string]string{
		"role": "seller", "email": "g@x", "password": "pw", "name": "GreenLeaf",
	}, &seller); code != http.StatusCreated {
		t.Fatalf("seller register: %d", code)
	}
	var plant market.Plant
	if code := do(t, r, "POST", "/seller/plants", map[string]any{
		"name": "Neem", "species": "Azadirachta indica", "price": 299, "stock": 12, "type": "trees",
	}, &plant); code != http.StatusCreated {
		t.Fatalf("add plant: %d", code)
	}
	if plant.VendorID != seller.ID {
		t.Fatalf("vendor id: %+v", plant)
	}

	// storefront is public
	var list []market.Plant
	if code := do(t, r, "GET", "/plants?q=neem", nil, &list); code != http.StatusOK || len(list) != 1 {
		t.Fatalf("search: %d %+v", code, list)
	}

	// customer takes over the singleton session
	var cust auth.Account
	if code := do(t, r, "POST", "/auth/register", map[string]string{
		"role": "customer", "email": "a@x", "password": "pw", "name": "Alice",
	}, &cust); code != http.StatusCreated {
		t.Fatalf("customer register: %d", code)
	}

	// reserve 5: stock 12 -> 7
	var res market.Reservation
	if code := do(t, r, "POST", "/plants/"+plant.ID+"/reserve", map[string]int{"qty": 5}, &res); code != http.StatusCreated {
		t.Fatalf("reserve: %d", code)
	}
	var after market.Plant
	do(t, r, "GET", "/plants/"+plant.ID, nil, &after)
	if after.Stock != 7 {
		t.Fatalf("stock after reserve: %d", after.Stock)
	}
	// over-reserve conflicts
	if code := do(t, r, "POST", "/plants/"+plant.ID+"/reserve", map[string]int{"qty": 100}, nil); code != http.StatusConflict {
		t.Fatalf("over-reserve: %d", code)
	}

	// cart + checkout; stock stays at 7
	if code := do(t, r, "POST", "/cart", map[string]any{"plantId": plant.ID, "qty": 2}, nil); code != http.StatusOK {
		t.Fatalf("cart add: %d", code)
	}
	var order market.Order
	if code := do(t, r, "POST", "/checkout", nil, &order); code != http.StatusCreated {
		t.Fatalf("checkout: %d", code)
	}
	if order.Total != 598 || order.Status != market.StatusCompleted {
		t.Fatalf("order: %+v", order)
	}
	var cart struct {
		Count int `json:"count"`
	}
	do(t, r, "GET", "/cart", nil, &cart)
	if cart.Count != 0 {
		t.Fatalf("cart after checkout: %+v", cart)
	}
	do(t, r, "GET", "/plants/"+plant.ID, nil, &after)
	if after.Stock != 7 {
		t.Fatalf("checkout must not touch stock: %d", after.Stock)
	}

	// admin moves the order forward; skipping a step conflicts
	if code := do(t, r, "POST", "/auth/login", map[string]string{
		"role": "admin", "password": auth.DefaultAdminSecret,
	}, nil); code != http.StatusOK {
		t.Fatalf("admin login: %d", code)
	}
	if code := do(t, r, "POST", "/admin/orders/"+order.ID+"/status", map[string]string{"status": "delivered"}, nil); code != http.StatusConflict {
		t.Fatalf("skip transition: %d", code)
	}
	var shipped market.Order
	if code := do(t, r, "POST", "/admin/orders/"+order.ID+"/status", map[string]string{"status": "shipped"}, &shipped); code != http.StatusOK {
		t.Fatalf("ship: %d", code)
	}
	if shipped.Status != market.StatusShipped {
		t.Fatalf("order after ship: %+v", shipped)
	}

	// role gating: the admin session is not a seller
	if code := do(t, r, "GET", "/seller/analytics", nil, nil); code != http.StatusForbidden {
		t.Fatalf("analytics as admin: %d", code)
	}
}

func TestAuthEndpoints(t *testing.T) {
	r := newTestRouter()

	// no session yet
	if code := do(t, r, "GET", "/auth/me", nil, nil); code != http.StatusNotFound {
		t.Fatalf("me without session: %d", code)
	}
	// wrong credentials map to 401
	if code := do(t, r, "POST", "/auth/login", map[string]string{
		"role": "customer", "email": "ghost@x", "password": "pw",
	}, nil); code != http.StatusUnauthorized {
		t.Fatalf("unknown login: %d", code)
	}
	// admin registration maps to 403
	if code := do(t, r, "POST", "/auth/register", map[string]string{
		"role": "admin", "email": "a@x", "password": "pw", "name": "X",
	}, nil); code != http.StatusForbidden {
		t.Fatalf("admin register: %d", code)
	}
	// missing fields map to 400
	if code := do(t, r, "POST", "/auth/register", map[string]string{
		"role": "customer", "email": "a@x",
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d", code)
	}

	var acct auth.Account
	if code := do(t, r, "POST", "/auth/register", map[string]string{
		"role": "customer", "email": "a@x", "password": "pw", "name": "Alice",
	}, &acct); code != http.StatusCreated {
		t.Fatalf("register: %d", code)
	}
	// duplicate email maps to 409
	if code := do(t, r, "POST", "/auth/register", map[string]string{
		"role": "customer", "email": "a@x", "password": "pw", "name": "Alice2",
	}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate: %d", code)
	}

	var me auth.Account
	if code := do(t, r, "GET", "/auth/me", nil, &me); code != http.StatusOK || me.ID != acct.ID {
		t.Fatalf("me: %d %+v", code, me)
	}

	// profile patch touches only the sent fields
	var prof map[string]string
	if code := do(t, r, "PUT", "/profile", map[string]string{"phone": "+91 123"}, &prof); code != http.StatusOK {
		t.Fatalf("profile: %d", code)
	}
	if prof["phone"] != "+91 123" || prof["name"] != "Alice" {
		t.Fatalf("profile: %+v", prof)
	}
	if code := do(t, r, "POST", "/auth/logout", nil, nil); code != http.StatusOK {
		t.Fatal("logout failed")
	}
	if code := do(t, r, "GET", "/auth/me", nil, nil); code != http.StatusNotFound {
		t.Fatal("session should be gone")
	}
}

func TestAdminUserManagement(t *testing.T) {
	r := newTestRouter()

	var seller auth.Account
	do(t, r, "POST", "/auth/register", map[string]string{
		"role": "seller", "email": "g@x", "password": "pw", "name": "GreenLeaf",
	}, &seller)
	var plant market.Plant
	do(t, r, "POST", "/seller/plants", map[string]any{"name": "Neem", "price": 299, "stock": 12}, &plant)

	do(t, r, "POST", "/auth/login", map[string]string{"role": "admin", "password": auth.DefaultAdminSecret}, nil)

	var users []struct {
		ID   string      `json:"id"`
		Role market.Role `json:"role"`
	}
	if code := do(t, r, "GET", "/admin/users", nil, &users); code != http.StatusOK || len(users) != 1 {
		t.Fatalf("users: %d %+v", code, users)
	}

	// deleting the seller cascades to their plants
	if code := do(t, r, "DELETE", "/admin/users/"+seller.ID+"?role=seller", nil, nil); code != http.StatusOK {
		t.Fatalf("delete seller: %d", code)
	}
	if code := do(t, r, "GET", "/plants/"+plant.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("plant should be gone: %d", code)
	}
	if code := do(t, r, "DELETE", "/admin/users/"+seller.ID+"?role=seller", nil, nil); code != http.StatusNotFound {
		t.Fatalf("second delete: %d", code)
	}
	if code := do(t, r, "DELETE", "/admin/users/x?role=bogus", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bogus role: %d", code)
	}

	// vendor directory replace is wholesale
	if code := do(t, r, "PUT", "/admin/vendors", []market.Vendor{
		{ID: "v1", Name: "GreenLeaf Nursery", Location: "Pune", Rating: 4.5},
	}, nil); code != http.StatusOK {
		t.Fatal("vendor replace failed")
	}
	var vendors []market.Vendor
	if code := do(t, r, "GET", "/vendors", nil, &vendors); code != http.StatusOK || len(vendors) != 1 {
		t.Fatalf("vendors: %d %+v", code, vendors)
	}
}
