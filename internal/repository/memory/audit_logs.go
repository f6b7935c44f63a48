// Package memory holds in-process repositories for running without a
// database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/netbank-dashboard/internal/models"
)

// AuditLogs keeps the most recent entries in a bounded ring.
type AuditLogs struct {
	mu   sync.Mutex
	max  int
	next int64
	logs []models.AuditLog
}

func NewAuditLogs(max int) *AuditLogs {
	if max <= 0 {
		max = 1000
	}
	return &AuditLogs{max: max}
}

func (r *AuditLogs) Create(_ context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	l.ID = r.next
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, l)
	if len(r.logs) > r.max {
		r.logs = r.logs[len(r.logs)-r.max:]
	}
	return nil
}

// List returns a copy of the retained entries, oldest first.
func (r *AuditLogs) List() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, len(r.logs))
	copy(out, r.logs)
	return out
}
