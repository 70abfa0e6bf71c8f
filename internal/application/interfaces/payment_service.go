package interfaces

import (
	"context"

	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
)

// PaymentService owns the transaction ledger and payout destinations.
type PaymentService interface {
	GetBalance(ctx context.Context, userID user.ID) (*entities.Balance, error)
	CreateWithdrawal(ctx context.Context, userID user.ID, p *params.CreateWithdrawal) (*entities.Transaction, error)

	// ApproveWithdrawal and RejectWithdrawal require the admin role and
	// are only valid from the pending state.
	ApproveWithdrawal(ctx context.Context, admin *user.User, txnID string) (*entities.Transaction, error)
	RejectWithdrawal(ctx context.Context, admin *user.User, txnID, reason string) (*entities.Transaction, error)

	ListTransactions(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error)
	ListWithdrawals(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error)
	ListAllWithdrawals(ctx context.Context, admin *user.User, filter params.TransactionFilter) ([]*entities.Transaction, int, error)

	AddPaymentMethod(ctx context.Context, userID user.ID, p *params.AddPaymentMethod) (*entities.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, userID user.ID, id string) error
	UpdatePaymentMethodDetails(ctx context.Context, userID user.ID, id, details string) error
	ListPaymentMethods(ctx context.Context, userID user.ID) ([]*entities.PaymentMethod, error)
}
