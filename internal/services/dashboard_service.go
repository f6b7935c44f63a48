package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/netbank-dashboard/internal/dashboard"
)

// Watcher streams balance updates. *balancesync.Synchronizer satisfies it.
type Watcher interface {
	Watch(ctx context.Context) <-chan decimal.Decimal
}

type BalanceStatus struct {
	Loaded  bool             `json:"loaded"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Display string           `json:"display"`
	Visible bool             `json:"visible"`
}

// DashboardService renders the dashboard and owns per-subject view state.
type DashboardService struct {
	acct dashboard.Account
	src  dashboard.BalanceSource

	mu    sync.Mutex
	views map[string]dashboard.View
}

func NewDashboardService(acct dashboard.Account, src dashboard.BalanceSource) *DashboardService {
	return &DashboardService{acct: acct, src: src, views: map[string]dashboard.View{}}
}

func (s *DashboardService) view(subject string) dashboard.View {
	v, ok := s.views[subject]
	if !ok {
		v = dashboard.NewView()
	}
	return v
}

func (s *DashboardService) Page(subject string) dashboard.Page {
	s.mu.Lock()
	v := s.view(subject)
	s.mu.Unlock()
	return dashboard.Render(v, s.acct, s.src)
}

func (s *DashboardService) SetTab(subject, tab string) (dashboard.Page, error) {
	s.mu.Lock()
	v := s.view(subject)
	if err := v.SetTab(tab); err != nil {
		s.mu.Unlock()
		return dashboard.Page{}, err
	}
	s.views[subject] = v
	s.mu.Unlock()
	return dashboard.Render(v, s.acct, s.src), nil
}

func (s *DashboardService) ToggleBalance(subject string) BalanceStatus {
	s.mu.Lock()
	v := s.view(subject)
	v.ToggleBalance()
	s.views[subject] = v
	s.mu.Unlock()
	return s.status(v)
}

func (s *DashboardService) Balance(subject string) BalanceStatus {
	s.mu.Lock()
	v := s.view(subject)
	s.mu.Unlock()
	return s.status(v)
}

// Forget drops the subject's view state.
func (s *DashboardService) Forget(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, subject)
}

func (s *DashboardService) status(v dashboard.View) BalanceStatus {
	st := BalanceStatus{Display: v.DisplayBalance(s.src), Visible: v.ShowBalance}
	if b, ok := s.src.Balance(); ok {
		st.Loaded = true
		if v.ShowBalance {
			st.Amount = &b
		}
	}
	return st
}

// Stream sends the subject's balance status now and after every balance
// change, until ctx ends. With a static source only the first status is sent.
func (s *DashboardService) Stream(ctx context.Context, subject string) <-chan BalanceStatus {
	out := make(chan BalanceStatus, 1)
	out <- s.Balance(subject)

	w, ok := s.src.(Watcher)
	if !ok {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out
	}

	updates := w.Watch(ctx)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, open := <-updates:
				if !open {
					return
				}
				select {
				case out <- s.Balance(subject):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
