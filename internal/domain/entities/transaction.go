package entities

import (
	"fmt"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/pkg/ident"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Earning    TransactionType = "earning"
	Withdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnApproved  TransactionStatus = "approved"
	TxnRejected  TransactionStatus = "rejected"
)

// Transaction is an append-only ledger record. The sign of the amount
// is implied by the type; balances are folds over these rows.
type Transaction struct {
	CreatedAt   time.Time         `db:"created_at"`
	ID          string            `db:"id"`
	UserID      user.ID           `db:"user_id"`
	Type        TransactionType   `db:"type"`
	Description string            `db:"description"`
	Status      TransactionStatus `db:"status"`
	// Earning rows reference the order that produced them; withdrawal
	// rows reference the payment method they pay out to.
	OrderID         string          `db:"order_id"`
	PaymentMethodID string          `db:"payment_method_id"`
	Amount          decimal.Decimal `db:"amount"`
}

// NewWithdrawal creates a pending withdrawal transaction paying out to
// the given payment method.
func NewWithdrawal(userID user.ID, amount decimal.Decimal, method *PaymentMethod) *Transaction {
	return &Transaction{
		ID:              ident.New(ident.TransactionPrefix),
		UserID:          userID,
		Type:            Withdrawal,
		Amount:          amount,
		Description:     fmt.Sprintf("Withdrawal via %s", method.Method),
		Status:          TxnPending,
		PaymentMethodID: method.ID,
		CreatedAt:       time.Now().UTC(),
	}
}

// NewEarning creates a pending earning transaction for a completed order.
func NewEarning(userID user.ID, orderID string, amount decimal.Decimal, description string) *Transaction {
	return &Transaction{
		ID:          ident.New(ident.TransactionPrefix),
		UserID:      userID,
		Type:        Earning,
		Amount:      amount,
		Description: description,
		Status:      TxnPending,
		OrderID:     orderID,
		CreatedAt:   time.Now().UTC(),
	}
}
