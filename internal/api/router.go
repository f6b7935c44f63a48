package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/netbank-dashboard/internal/api/handlers"
	"github.com/baharkarakas/netbank-dashboard/internal/auth"
	"github.com/baharkarakas/netbank-dashboard/internal/config"
	"github.com/baharkarakas/netbank-dashboard/internal/metrics"
	"github.com/baharkarakas/netbank-dashboard/internal/middleware"
	"github.com/baharkarakas/netbank-dashboard/internal/services"
)

type RouterDeps struct {
	Cfg          config.Config
	Tokens       *auth.TokenManager
	LoginSvc     *services.LoginService
	DashboardSvc *services.DashboardService
	// Ready gates /health, e.g. on the initial balance read; nil means always.
	Ready func() bool
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil && !d.Ready() {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	ah := handlers.NewAuthHandler(d.LoginSvc, d.DashboardSvc)
	dh := handlers.NewDashboardHandler(d.DashboardSvc)
	am := middleware.NewAuthMiddleware(d.Tokens)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/refresh", ah.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(am.Auth)

			r.Post("/auth/logout", ah.Logout)

			// ---------- dashboard ----------
			r.Get("/dashboard", dh.Get)
			r.Put("/dashboard/tab", dh.SetTab)
			r.Post("/dashboard/balance/toggle", dh.ToggleBalance)

			// ---------- balance ----------
			r.Get("/balance", dh.Balance)
			r.Get("/balance/stream", dh.BalanceStream)
		})
	})

	return r
}
