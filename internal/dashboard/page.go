package dashboard

import "net/url"

type Page struct {
	Holder      string       `json:"holder"`
	AccountType string       `json:"account_type"`
	Balance     BalanceBlock `json:"balance"`
	Tabs        []TabItem    `json:"tabs"`
	ActiveTab   Tab          `json:"active_tab"`
	Overview    *Overview    `json:"overview,omitempty"`
	Details     []Detail     `json:"details,omitempty"`
	QR          *QR          `json:"qr,omitempty"`
}

type BalanceBlock struct {
	Display string `json:"display"`
	Visible bool   `json:"visible"`
	Loaded  bool   `json:"loaded"`
}

type TabItem struct {
	Key    Tab    `json:"key"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

type Overview struct {
	QuickActions []string  `json:"quick_actions"`
	Services     []Service `json:"services"`
}

type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type QR struct {
	UPIID   string `json:"upi_id"`
	Payload string `json:"payload"`
}

// Render builds the dashboard for v. Only the active tab's content is filled.
func Render(v View, acct Account, src BalanceSource) Page {
	_, loaded := src.Balance()
	p := Page{
		Holder:      acct.Holder,
		AccountType: acct.AccountType,
		Balance: BalanceBlock{
			Display: v.DisplayBalance(src),
			Visible: v.ShowBalance,
			Loaded:  loaded,
		},
		ActiveTab: v.ActiveTab,
	}
	for _, t := range tabLabels {
		p.Tabs = append(p.Tabs, TabItem{Key: t.Tab, Label: t.Label, Active: t.Tab == v.ActiveTab})
	}

	switch v.ActiveTab {
	case TabDetails:
		p.Details = []Detail{
			{"Account Number", acct.Number},
			{"IFSC Code", acct.IFSC},
			{"UPI ID", acct.UPIID},
			{"Account Holder", acct.Holder},
			{"Account Type", acct.AccountType},
		}
	case TabQR:
		p.QR = &QR{UPIID: acct.UPIID, Payload: UPIPayload(acct)}
	default:
		p.Overview = &Overview{QuickActions: QuickActions, Services: BankingServices}
	}
	return p
}

// UPIPayload is the pay-to URI a QR code for the account encodes.
func UPIPayload(acct Account) string {
	return "upi://pay?pa=" + url.QueryEscape(acct.UPIID) +
		"&pn=" + url.QueryEscape(acct.Holder) +
		"&cu=INR"
}
