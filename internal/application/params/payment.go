package params

import "github.com/shopspring/decimal"

// CreateWithdrawal carries input for withdrawal creation. The amount
// is deliberately not checked against the available balance: pending
// withdrawals are the admin review queue.
type CreateWithdrawal struct {
	Method  string
	Details string
	Amount  decimal.Decimal
}

// AddPaymentMethod carries input for registering a payout destination.
type AddPaymentMethod struct {
	Method    string
	Details   string
	IsDefault bool
}
