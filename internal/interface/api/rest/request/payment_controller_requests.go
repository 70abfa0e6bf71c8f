package request

import "github.com/shopspring/decimal"

type CreateWithdrawal struct {
	Method  string          `json:"method"`
	Details string          `json:"details"`
	Amount  decimal.Decimal `json:"amount"`
}

type AddPaymentMethod struct {
	Method    string `json:"method"`
	Details   string `json:"details"`
	IsDefault bool   `json:"is_default"`
}

type UpdatePaymentMethod struct {
	Details string `json:"details"`
}

type RejectWithdrawal struct {
	Reason string `json:"reason"`
}
