// Package auth manages the singleton session and credential checks over the
// customer/seller repositories.
package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/greenleaf/nursery-market/internal/market"
	"github.com/greenleaf/nursery-market/internal/storage"
)

// DefaultAdminSecret gates the fixed admin identity. There is no stored
// admin record; the session carries the sentinel id only.
const DefaultAdminSecret = "DT2025"

// EncodePassword applies reversible base64 obfuscation, not a hash. A demo
// property kept on purpose, not a security mechanism.
func EncodePassword(pw string) string {
	return base64.StdEncoding.EncodeToString([]byte(pw))
}

func DecodePassword(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	return string(b), err
}

// SessionStore persists the at-most-one active session under ns_session.
type SessionStore struct{ Store storage.Store }

func (s *SessionStore) Get(ctx context.Context) (market.Session, bool) {
	var sess market.Session
	storage.LoadJSON(ctx, s.Store, storage.KeySession, &sess)
	if sess.Role == "" || sess.ID == "" {
		return market.Session{}, false
	}
	return sess, true
}

func (s *SessionStore) Set(ctx context.Context, sess market.Session) error {
	return storage.SaveJSON(ctx, s.Store, storage.KeySession, sess)
}

// Clear is idempotent: clearing a missing session is fine.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.Store.Delete(ctx, storage.KeySession)
}

// Account is the outward projection of a customer or seller record; it never
// carries the stored password.
type Account struct {
	ID        string      `json:"id"`
	Role      market.Role `json:"role"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Service struct {
	Customers   *market.CustomerRepo
	Sellers     *market.SellerRepo
	Sessions    *SessionStore
	AdminSecret string
}

func NewService(m *market.Service, sessions *SessionStore, adminSecret string) *Service {
	if adminSecret == "" {
		adminSecret = DefaultAdminSecret
	}
	return &Service{
		Customers:   m.Customers,
		Sellers:     m.Sellers,
		Sessions:    sessions,
		AdminSecret: adminSecret,
	}
}

// Register creates the customer/seller record, establishes the session and
// returns the new account. Admin registration is always refused.
func (s *Service) Register(ctx context.Context, role market.Role, email, pw, name string) (Account, error) {
	email = strings.TrimSpace(email)
	pw = strings.TrimSpace(pw)
	name = strings.TrimSpace(name)
	if email == "" || pw == "" || name == "" {
		return Account{}, market.ErrMissingFields
	}
	if role == market.RoleAdmin {
		return Account{}, market.ErrAdminRegistration
	}

	var acct Account
	switch role {
	case market.RoleSeller:
		rec, err := s.Sellers.Create(ctx, market.Seller{
			Name:     name,
			Email:    email,
			Password: EncodePassword(pw),
		})
		if err != nil {
			return Account{}, err
		}
		acct = Account{ID: rec.ID, Role: role, Name: rec.Name, Email: rec.Email, CreatedAt: rec.CreatedAt}
	case market.RoleCustomer:
		rec, err := s.Customers.Create(ctx, market.Customer{
			Name:     name,
			Email:    email,
			Password: EncodePassword(pw),
		})
		if err != nil {
			return Account{}, err
		}
		acct = Account{ID: rec.ID, Role: role, Name: rec.Name, Email: rec.Email, CreatedAt: rec.CreatedAt}
	default:
		return Account{}, market.ErrInvalidInput
	}

	if err := s.Sessions.Set(ctx, market.Session{Role: role, ID: acct.ID}); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Login checks credentials and establishes the session. A missing account
// and a wrong password both come back as ErrInvalidCredentials; the caller
// cannot enumerate emails.
func (s *Service) Login(ctx context.Context, role market.Role, email, pw string) (market.Session, error) {
	email = strings.TrimSpace(email)
	pw = strings.TrimSpace(pw)
	if email == "" && role != market.RoleAdmin {
		return market.Session{}, market.ErrMissingFields
	}
	if pw == "" {
		return market.Session{}, market.ErrMissingFields
	}

	var sess market.Session
	switch role {
	case market.RoleAdmin:
		if pw != s.AdminSecret {
			return market.Session{}, market.ErrInvalidCredentials
		}
		sess = market.Session{Role: market.RoleAdmin, ID: market.AdminSessionID}
	case market.RoleSeller:
		rec, err := s.Sellers.FindByCredentials(ctx, email, EncodePassword(pw))
		if err != nil {
			return market.Session{}, err
		}
		sess = market.Session{Role: role, ID: rec.ID}
	case market.RoleCustomer:
		rec, err := s.Customers.FindByCredentials(ctx, email, EncodePassword(pw))
		if err != nil {
			return market.Session{}, err
		}
		sess = market.Session{Role: role, ID: rec.ID}
	default:
		return market.Session{}, market.ErrInvalidInput
	}

	if err := s.Sessions.Set(ctx, sess); err != nil {
		return market.Session{}, err
	}
	return sess, nil
}

// Logout clears the session unconditionally.
func (s *Service) Logout(ctx context.Context) error {
	return s.Sessions.Clear(ctx)
}

func (s *Service) Current(ctx context.Context) (market.Session, bool) {
	return s.Sessions.Get(ctx)
}

// CurrentAccount resolves the session to its stored record. The admin
// session resolves to a synthetic account with no backing record.
func (s *Service) CurrentAccount(ctx context.Context) (Account, error) {
	sess, ok := s.Sessions.Get(ctx)
	if !ok {
		return Account{}, market.ErrUserNotFound
	}
	switch sess.Role {
	case market.RoleAdmin:
		return Account{ID: sess.ID, Role: market.RoleAdmin, Name: "Admin"}, nil
	case market.RoleSeller:
		rec, err := s.Sellers.Find(ctx, sess.ID)
		if err != nil {
			return Account{}, err
		}
		return Account{ID: rec.ID, Role: sess.Role, Name: rec.Name, Email: rec.Email, CreatedAt: rec.CreatedAt}, nil
	default:
		rec, err := s.Customers.Find(ctx, sess.ID)
		if err != nil {
			return Account{}, err
		}
		return Account{ID: rec.ID, Role: sess.Role, Name: rec.Name, Email: rec.Email, CreatedAt: rec.CreatedAt}, nil
	}
}
