package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/baharkarakas/netbank-dashboard/internal/dashboard"
	"github.com/baharkarakas/netbank-dashboard/internal/metrics"
)

// Reporter periodically logs the balance mirror state and refreshes the
// loaded gauge.
type Reporter struct {
	Cron *cron.Cron
	src  dashboard.BalanceSource
	log  *slog.Logger
}

func NewReporter(src dashboard.BalanceSource, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{Cron: cron.New(), src: src, log: log.With("component", "reporter")}
}

// Register schedules the report on spec, e.g. "@every 1m" or "*/5 * * * *".
func (r *Reporter) Register(spec string) error {
	if _, err := r.Cron.AddFunc(spec, r.Report); err != nil {
		return fmt.Errorf("register mirror report: %w", err)
	}
	return nil
}

func (r *Reporter) Start() {
	r.Cron.Start()
	r.log.Info("reporter started")
}

// Stop stops the schedule and waits for a running report to finish.
func (r *Reporter) Stop() {
	<-r.Cron.Stop().Done()
	r.log.Info("reporter stopped")
}

// Report logs one snapshot of the mirror.
func (r *Reporter) Report() {
	v, ok := r.src.Balance()
	if !ok {
		metrics.BalanceLoaded.Set(0)
		r.log.Warn("balance mirror still loading")
		return
	}
	metrics.BalanceLoaded.Set(1)
	r.log.Info("balance mirror", "value", v.String())
}
