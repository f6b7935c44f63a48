package repository

import (
	"context"

	"github.com/baharkarakas/netbank-dashboard/internal/models"
)

type Users interface {
	Create(ctx context.Context, loginID, displayName, passwordHash string) (models.User, error)
	GetByLoginID(ctx context.Context, loginID string) (models.User, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
