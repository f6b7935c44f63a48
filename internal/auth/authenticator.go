package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/netbank-dashboard/internal/models"
)

// RejectionMessage is shown to the user on any mismatch, whichever field was
// wrong.
const RejectionMessage = "Invalid User ID or Password. Please try again."

var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is the authenticated principal.
type Identity struct {
	Subject     string `json:"subject"`
	LoginID     string `json:"login_id"`
	DisplayName string `json:"display_name,omitempty"`
}

type Authenticator interface {
	Authenticate(ctx context.Context, id, secret string) (Identity, error)
}

// NormalizeID is the canonical form of a login identifier: upper case,
// nothing else changed. Surrounding whitespace does not match.
func NormalizeID(id string) string { return strings.ToUpper(id) }

// StaticAuthenticator accepts exactly one identifier/secret pair.
type StaticAuthenticator struct {
	id     string
	secret string
	name   string
}

func NewStaticAuthenticator(id, secret, displayName string) *StaticAuthenticator {
	return &StaticAuthenticator{id: NormalizeID(id), secret: secret, name: displayName}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, id, secret string) (Identity, error) {
	idOK := subtle.ConstantTimeCompare([]byte(NormalizeID(id)), []byte(a.id)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(a.secret)) == 1
	if !idOK || !secretOK {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Subject: a.id, LoginID: a.id, DisplayName: a.name}, nil
}

// UserFinder is the slice of the user repository the store authenticator needs.
type UserFinder interface {
	GetByLoginID(ctx context.Context, loginID string) (models.User, error)
}

// StoreAuthenticator checks credentials against bcrypt hashes held in the
// user store.
type StoreAuthenticator struct {
	users UserFinder
}

func NewStoreAuthenticator(users UserFinder) *StoreAuthenticator {
	return &StoreAuthenticator{users: users}
}

func (a *StoreAuthenticator) Authenticate(ctx context.Context, id, secret string) (Identity, error) {
	u, err := a.users.GetByLoginID(ctx, NormalizeID(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := VerifyPassword(secret, u.PasswordHash); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Subject: u.ID, LoginID: u.LoginID, DisplayName: u.DisplayName}, nil
}
