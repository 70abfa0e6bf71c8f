package entities

import "github.com/shopspring/decimal"

// Balance is the read-time aggregation of a user's earning
// transactions. Nothing is cached: every read folds the ledger anew.
type Balance struct {
	Currency string `json:"currency"`
	// Sum of completed earnings.
	Available decimal.Decimal `json:"available_balance"`
	// Sum of pending earnings.
	Pending decimal.Decimal `json:"pending_balance"`
	// Sum over all earning rows regardless of status.
	TotalEarned decimal.Decimal `json:"total_earned"`
}

func ZeroBalance() *Balance {
	return &Balance{Currency: "USD"}
}
