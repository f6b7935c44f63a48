package services

import (
	"context"
	"errors"
	"strings"

	"github.com/baharkarakas/netbank-dashboard/internal/auth"
	"github.com/baharkarakas/netbank-dashboard/internal/models"
	repo "github.com/baharkarakas/netbank-dashboard/internal/repository"
)

var ErrWeakPassword = errors.New("password must be at least 8 characters")

type UserService struct {
	r repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

// Register stores a login for the store-backed authenticator.
func (s *UserService) Register(ctx context.Context, loginID, displayName, password string) (models.User, error) {
	u := models.User{LoginID: loginID, DisplayName: strings.TrimSpace(displayName)}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if len(password) < 8 {
		return models.User{}, ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.r.Create(ctx, u.LoginID, u.DisplayName, hash)
}
