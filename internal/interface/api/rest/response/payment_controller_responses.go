package response

import (
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/shopspring/decimal"
)

type GetBalance struct {
	Currency    string          `json:"currency"`
	Available   decimal.Decimal `json:"available"`
	Pending     decimal.Decimal `json:"pending"`
	TotalEarned decimal.Decimal `json:"total_earned"`
}

func NewGetBalance(e *entities.Balance) GetBalance {
	return GetBalance{
		Available:   e.Available,
		Pending:     e.Pending,
		TotalEarned: e.TotalEarned,
		Currency:    e.Currency,
	}
}

type GetTransaction struct {
	CreatedAt       time.Time                  `json:"created_at"`
	ID              string                     `json:"id"`
	UserID          user.ID                    `json:"user_id"`
	Type            entities.TransactionType   `json:"type"`
	Description     string                     `json:"description"`
	Status          entities.TransactionStatus `json:"status"`
	OrderID         string                     `json:"order_id,omitempty"`
	PaymentMethodID string                     `json:"payment_method_id,omitempty"`
	Amount          decimal.Decimal            `json:"amount"`
}

func NewGetTransaction(e *entities.Transaction) *GetTransaction {
	return &GetTransaction{
		ID:              e.ID,
		UserID:          e.UserID,
		Type:            e.Type,
		Amount:          e.Amount,
		Description:     e.Description,
		Status:          e.Status,
		OrderID:         e.OrderID,
		PaymentMethodID: e.PaymentMethodID,
		CreatedAt:       e.CreatedAt,
	}
}

func NewGetTransactions(txns []*entities.Transaction) []*GetTransaction {
	res := make([]*GetTransaction, len(txns))
	for i, t := range txns {
		res[i] = NewGetTransaction(t)
	}
	return res
}

type GetPaymentMethod struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Method    string    `json:"method"`
	Details   string    `json:"details"`
	IsDefault bool      `json:"is_default"`
}

func NewGetPaymentMethod(e *entities.PaymentMethod) *GetPaymentMethod {
	return &GetPaymentMethod{
		ID:        e.ID,
		Method:    e.Method,
		Details:   e.Details,
		IsDefault: e.IsDefault,
		CreatedAt: e.CreatedAt,
	}
}

func NewGetPaymentMethods(methods []*entities.PaymentMethod) []*GetPaymentMethod {
	res := make([]*GetPaymentMethod, len(methods))
	for i, m := range methods {
		res[i] = NewGetPaymentMethod(m)
	}
	return res
}
