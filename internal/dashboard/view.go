package dashboard

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	Masked  = "••••••"
	Loading = "Loading..."
)

var ErrUnknownTab = errors.New("unknown tab")

type Tab string

const (
	TabOverview Tab = "overview"
	TabDetails  Tab = "details"
	TabQR       Tab = "qr"
)

var tabLabels = []struct {
	Tab   Tab
	Label string
}{
	{TabOverview, "Overview"},
	{TabDetails, "Details"},
	{TabQR, "QR Code"},
}

func ParseTab(s string) (Tab, error) {
	for _, t := range tabLabels {
		if string(t.Tab) == s {
			return t.Tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// BalanceSource yields the balance to display. ok is false while it has not
// been loaded.
type BalanceSource interface {
	Balance() (v decimal.Decimal, ok bool)
}

// StaticSource is the mock-data dashboard: a fixed, always-loaded balance.
type StaticSource struct {
	Value decimal.Decimal
}

func (s StaticSource) Balance() (decimal.Decimal, bool) { return s.Value, true }

// View is the per-session presentation state. It never touches the balance
// itself.
type View struct {
	ShowBalance bool `json:"show_balance"`
	ActiveTab   Tab  `json:"active_tab"`
}

func NewView() View {
	return View{ShowBalance: true, ActiveTab: TabOverview}
}

// ToggleBalance flips balance visibility and returns the new setting.
func (v *View) ToggleBalance() bool {
	v.ShowBalance = !v.ShowBalance
	return v.ShowBalance
}

func (v *View) SetTab(s string) error {
	t, err := ParseTab(s)
	if err != nil {
		return err
	}
	v.ActiveTab = t
	return nil
}

func (v View) DisplayBalance(src BalanceSource) string {
	if !v.ShowBalance {
		return Masked
	}
	b, ok := src.Balance()
	if !ok {
		return Loading
	}
	return FormatINR(b)
}
