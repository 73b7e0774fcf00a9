package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/greenleaf/nursery-market/internal/market"
	"github.com/greenleaf/nursery-market/internal/storage"
)

func newTestAuth() *Service {
	store := storage.NewMemory()
	m := market.NewService(store, nil, "test")
	return NewService(m, &SessionStore{Store: store}, "")
}

func TestEncodePasswordRoundTrip(t *testing.T) {
	enc := EncodePassword("hunter2")
	if enc == "hunter2" {
		t.Fatal("password should not be stored verbatim")
	}
	dec, err := DecodePassword(enc)
	if err != nil || dec != "hunter2" {
		t.Fatalf("decode: %q %v", dec, err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth()

	acct, err := svc.Register(ctx, market.RoleCustomer, " alice@x ", " pw ", " Alice ")
	if err != nil {
		t.Fatal(err)
	}
	if acct.Email != "alice@x" || acct.Name != "Alice" || acct.Role != market.RoleCustomer {
		t.Fatalf("account: %+v", acct)
	}
	// registration establishes the session
	sess, ok := svc.Current(ctx)
	if !ok || sess.ID != acct.ID || sess.Role != market.RoleCustomer {
		t.Fatalf("session after register: %+v ok=%v", sess, ok)
	}

	// stored record carries the encoded password, never the plaintext
	rec, _ := svc.Customers.Find(ctx, acct.ID)
	if rec.Password != EncodePassword("pw") {
		t.Fatalf("stored password: %q", rec.Password)
	}

	if _, err := svc.Register(ctx, market.RoleCustomer, "alice@x", "other", "Alice2"); !errors.Is(err, market.ErrDuplicateEmail) {
		t.Fatalf("duplicate email: got %v", err)
	}
	if _, err := svc.Register(ctx, market.RoleCustomer, "", "pw", "X"); !errors.Is(err, market.ErrMissingFields) {
		t.Fatalf("missing email: got %v", err)
	}
	if _, err := svc.Register(ctx, market.RoleAdmin, "a@x", "pw", "X"); !errors.Is(err, market.ErrAdminRegistration) {
		t.Fatalf("admin register: got %v", err)
	}

	_ = svc.Logout(ctx)
	if _, ok := svc.Current(ctx); ok {
		t.Fatal("session should be gone after logout")
	}
	// logout is idempotent
	if err := svc.Logout(ctx); err != nil {
		t.Fatal(err)
	}

	sess, err = svc.Login(ctx, market.RoleCustomer, "alice@x", "pw")
	if err != nil || sess.ID != acct.ID {
		t.Fatalf("login: %+v %v", sess, err)
	}
	if _, err := svc.Login(ctx, market.RoleCustomer, "alice@x", "wrong"); !errors.Is(err, market.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, market.RoleCustomer, "ghost@x", "pw"); !errors.Is(err, market.ErrInvalidCredentials) {
		t.Fatalf("unknown email should fail identically: got %v", err)
	}
}

func TestSellerLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth()
	acct, err := svc.Register(ctx, market.RoleSeller, "g@x", "pw", "GreenLeaf")
	if err != nil {
		t.Fatal(err)
	}
	sess, err := svc.Login(ctx, market.RoleSeller, "g@x", "pw")
	if err != nil || sess.Role != market.RoleSeller || sess.ID != acct.ID {
		t.Fatalf("seller login: %+v %v", sess, err)
	}
	// a seller's credentials do not work for the customer role
	if _, err := svc.Login(ctx, market.RoleCustomer, "g@x", "pw"); !errors.Is(err, market.ErrInvalidCredentials) {
		t.Fatalf("cross-role login: got %v", err)
	}
}

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth()

	sess, err := svc.Login(ctx, market.RoleAdmin, "", DefaultAdminSecret)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Role != market.RoleAdmin || sess.ID != market.AdminSessionID {
		t.Fatalf("admin session: %+v", sess)
	}
	acct, err := svc.CurrentAccount(ctx)
	if err != nil || acct.Name != "Admin" || acct.ID != market.AdminSessionID {
		t.Fatalf("admin account: %+v %v", acct, err)
	}

	if _, err := svc.Login(ctx, market.RoleAdmin, "", "wrong"); !errors.Is(err, market.ErrInvalidCredentials) {
		t.Fatalf("wrong secret: got %v", err)
	}
	if _, err := svc.Login(ctx, market.RoleAdmin, "", ""); !errors.Is(err, market.ErrMissingFields) {
		t.Fatalf("empty secret: got %v", err)
	}
}

func TestCurrentAccountResolvesRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth()

	if _, err := svc.CurrentAccount(ctx); !errors.Is(err, market.ErrUserNotFound) {
		t.Fatalf("no session: got %v", err)
	}

	reg, _ := svc.Register(ctx, market.RoleCustomer, "a@x", "pw", "Alice")
	acct, err := svc.CurrentAccount(ctx)
	if err != nil || acct.ID != reg.ID || acct.Email != "a@x" {
		t.Fatalf("resolved: %+v %v", acct, err)
	}
}
