package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Login
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"}, // success|rejected|error
	)

	// Balance mirror
	BalanceNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_notifications_total",
			Help: "Change notifications received for the balance row",
		},
		[]string{"result"}, // applied|ignored|dropped
	)
	BalanceLoadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "balance_initial_load_failures_total",
			Help: "Failed initial balance reads",
		},
	)
	BalanceLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "balance_mirror_loaded",
			Help: "1 when the balance mirror holds a value, 0 while loading",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(LoginAttempts)
		prometheus.MustRegister(BalanceNotifications)
		prometheus.MustRegister(BalanceLoadFailures)
		prometheus.MustRegister(BalanceLoaded)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
