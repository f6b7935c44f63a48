package dashboard

// Account holds the static fields shown on the dashboard.
type Account struct {
	Holder      string `json:"holder"`
	AccountType string `json:"account_type"`
	Number      string `json:"account_number"`
	IFSC        string `json:"ifsc"`
	UPIID       string `json:"upi_id"`
}

type Service struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var QuickActions = []string{"Send Money", "Request Money"}

var BankingServices = []Service{
	{Title: "Mobile Recharge", Description: "Recharge your mobile instantly"},
	{Title: "Bill Payments", Description: "Pay utility bills easily"},
	{Title: "Fixed Deposits", Description: "Invest in FDs online"},
	{Title: "Statements", Description: "Download account statements"},
	{Title: "Account Settings", Description: "Manage your account"},
	{Title: "Customer Support", Description: "24/7 help & support"},
}
