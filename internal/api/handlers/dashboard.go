package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/baharkarakas/netbank-dashboard/internal/api/httpx"
	"github.com/baharkarakas/netbank-dashboard/internal/api/validate"
	"github.com/baharkarakas/netbank-dashboard/internal/dashboard"
	"github.com/baharkarakas/netbank-dashboard/internal/middleware"
	"github.com/baharkarakas/netbank-dashboard/internal/services"
)

type DashboardHandler struct {
	Svc *services.DashboardService
}

func NewDashboardHandler(s *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Svc: s}
}

func subject(r *http.Request) string {
	u, _ := middleware.FromCtx(r.Context())
	return u.Subject
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Svc.Page(subject(r)))
}

func (h *DashboardHandler) SetTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab string `json:"tab"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("tab", req.Tab),
		validate.MaxLen("tab", req.Tab, 32),
	); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request", errs)
		return
	}
	page, err := h.Svc.SetTab(subject(r), req.Tab)
	if errors.Is(err, dashboard.ErrUnknownTab) {
		httpx.WriteError(w, http.StatusBadRequest, "unknown_tab", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *DashboardHandler) ToggleBalance(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Svc.ToggleBalance(subject(r)))
}

func (h *DashboardHandler) Balance(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Svc.Balance(subject(r)))
}

// BalanceStream pushes the caller's balance status as Server-Sent Events.
func (h *DashboardHandler) BalanceStream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for st := range h.Svc.Stream(r.Context(), subject(r)) {
		b, err := json.Marshal(st)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "event: balance\ndata: %s\n\n", b); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
