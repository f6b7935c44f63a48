package models

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID           string    `json:"id"`
	LoginID      string    `json:"login_id"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Validate() error {
	u.LoginID = strings.ToUpper(strings.TrimSpace(u.LoginID))
	if len(u.LoginID) < 3 {
		return errors.New("login id too short")
	}
	if strings.ContainsAny(u.LoginID, " \t\n") {
		return errors.New("login id must not contain spaces")
	}
	return nil
}
