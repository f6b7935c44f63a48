package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/baharkarakas/netbank-dashboard/internal/auth"
	"github.com/baharkarakas/netbank-dashboard/internal/metrics"
	"github.com/baharkarakas/netbank-dashboard/internal/models"
	repo "github.com/baharkarakas/netbank-dashboard/internal/repository"
)

type Submitter interface {
	Submit(f func()) bool
}

type LoginService struct {
	gate  *auth.Gate
	tm    *auth.TokenManager
	audit repo.AuditLogs
	wp    Submitter
	log   *slog.Logger
}

func NewLoginService(g *auth.Gate, tm *auth.TokenManager, audit repo.AuditLogs, wp Submitter, log *slog.Logger) *LoginService {
	if log == nil {
		log = slog.Default()
	}
	return &LoginService{gate: g, tm: tm, audit: audit, wp: wp, log: log}
}

// Login runs the credential gate and, on a match, issues a token pair.
func (s *LoginService) Login(ctx context.Context, id, secret string) (auth.TokenPair, auth.Identity, error) {
	var (
		pair   auth.TokenPair
		issErr error
	)
	ident, err := s.gate.Login(ctx, id, secret, func(i auth.Identity) {
		pair, issErr = s.tm.GeneratePair(i)
	})
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		s.record(auth.NormalizeID(id), "login_rejected")
		return auth.TokenPair{}, auth.Identity{}, err
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return auth.TokenPair{}, auth.Identity{}, err
	case issErr != nil:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return auth.TokenPair{}, auth.Identity{}, issErr
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.record(ident.LoginID, "login_succeeded")
	return pair, ident, nil
}

// Refresh rotates a token pair from a valid refresh token.
func (s *LoginService) Refresh(refreshToken string) (auth.TokenPair, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return s.tm.GeneratePair(claims.Identity())
}

func (s *LoginService) Logout(subject string) {
	s.record(subject, "logout")
}

// record writes the audit entry off the request path.
func (s *LoginService) record(loginID, action string) {
	if s.audit == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: "login",
		EntityID:   &loginID,
		Action:     action,
		Details:    map[string]any{"at": time.Now().UTC().Format(time.RFC3339)},
	}
	write := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.Create(ctx, entry); err != nil {
			s.log.Warn("audit log write failed", "action", action, "err", err)
		}
	}
	if s.wp == nil || !s.wp.Submit(write) {
		write()
	}
}
