package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/netbank-dashboard/internal/auth"
	"github.com/baharkarakas/netbank-dashboard/internal/backend/memory"
	"github.com/baharkarakas/netbank-dashboard/internal/balancesync"
	"github.com/baharkarakas/netbank-dashboard/internal/dashboard"
	"github.com/baharkarakas/netbank-dashboard/internal/models"
	memrepo "github.com/baharkarakas/netbank-dashboard/internal/repository/memory"
)

func newLoginService(audit *memrepo.AuditLogs) *LoginService {
	g := auth.NewGate(auth.NewStaticAuthenticator("DEMOUSER00", "pw", "Demo"), 0)
	tm := auth.NewTokenManager("a", "r", time.Minute, time.Hour, "test")
	return NewLoginService(g, tm, audit, nil, nil)
}

func TestLoginService_Success(t *testing.T) {
	audit := memrepo.NewAuditLogs(10)
	s := newLoginService(audit)

	pair, ident, err := s.Login(context.Background(), "demouser00", "pw")
	require.NoError(t, err)
	assert.Equal(t, "DEMOUSER00", ident.Subject)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	logs := audit.List()
	require.Len(t, logs, 1)
	assert.Equal(t, "login_succeeded", logs[0].Action)

	rotated, err := s.Refresh(pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.Access)

	_, err = s.Refresh(pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLoginService_Rejected(t *testing.T) {
	audit := memrepo.NewAuditLogs(10)
	s := newLoginService(audit)

	_, _, err := s.Login(context.Background(), "DEMOUSER00", "PW")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	logs := audit.List()
	require.Len(t, logs, 1)
	assert.Equal(t, "login_rejected", logs[0].Action)
	assert.Equal(t, "DEMOUSER00", *logs[0].EntityID)
}

type memUsers struct{ byLogin map[string]models.User }

func (m *memUsers) Create(_ context.Context, loginID, name, hash string) (models.User, error) {
	u := models.User{ID: "id-" + loginID, LoginID: loginID, DisplayName: name, PasswordHash: hash}
	m.byLogin[loginID] = u
	return u, nil
}

func (m *memUsers) GetByLoginID(_ context.Context, loginID string) (models.User, error) {
	u, ok := m.byLogin[loginID]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func TestUserService_RegisterThenAuthenticate(t *testing.T) {
	users := &memUsers{byLogin: map[string]models.User{}}
	s := NewUserService(users)

	_, err := s.Register(context.Background(), "alice01", "Alice", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	u, err := s.Register(context.Background(), "alice01", " Alice ", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, "ALICE01", u.LoginID)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.NotEqual(t, "long-enough", u.PasswordHash)

	ident, err := auth.NewStoreAuthenticator(users).Authenticate(context.Background(), "Alice01", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, "id-ALICE01", ident.Subject)
}

var acct = dashboard.Account{Holder: "Demo", AccountType: "Savings Account", UPIID: "demo@upi"}

func TestDashboardService_ViewsArePerSubject(t *testing.T) {
	s := NewDashboardService(acct, dashboard.StaticSource{Value: decimal.NewFromInt(85158)})

	st := s.ToggleBalance("alice")
	assert.Equal(t, dashboard.Masked, st.Display)
	assert.Nil(t, st.Amount)
	assert.True(t, st.Loaded)

	assert.Equal(t, "₹85,158", s.Balance("bob").Display)

	p, err := s.SetTab("alice", "details")
	require.NoError(t, err)
	assert.Equal(t, dashboard.TabDetails, p.ActiveTab)
	assert.Equal(t, dashboard.Masked, p.Balance.Display)

	_, err = s.SetTab("alice", "nope")
	assert.ErrorIs(t, err, dashboard.ErrUnknownTab)

	s.Forget("alice")
	assert.Equal(t, dashboard.TabOverview, s.Page("alice").ActiveTab)
	assert.Equal(t, "₹85,158", s.Balance("alice").Display)
}

func TestDashboardService_StreamLive(t *testing.T) {
	c := memory.New("")
	c.Seed("accounts", "balance", decimal.NewFromInt(100))
	syncer := balancesync.New(c, balancesync.Options{Table: "accounts", Field: "balance"})
	require.NoError(t, syncer.Start(context.Background()))
	defer syncer.Stop()
	<-syncer.InitialLoadDone()

	s := NewDashboardService(acct, syncer)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := s.Stream(ctx, "alice")

	assert.Equal(t, "₹100", (<-out).Display)
	c.Put("accounts", "balance", decimal.NewFromInt(2500))
	select {
	case st := <-out:
		assert.Equal(t, "₹2,500", st.Display)
	case <-time.After(2 * time.Second):
		t.Fatal("no update streamed")
	}

	cancel()
	for range out {
	}
}

func TestDashboardService_StreamStatic(t *testing.T) {
	s := NewDashboardService(acct, dashboard.StaticSource{Value: decimal.NewFromInt(1)})
	ctx, cancel := context.WithCancel(context.Background())
	out := s.Stream(ctx, "bob")
	assert.Equal(t, "₹1", (<-out).Display)
	cancel()
	_, open := <-out
	assert.False(t, open)
}
