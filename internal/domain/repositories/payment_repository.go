package repositories

import (
	"context"

	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
)

type PaymentRepository interface {
	// GetBalance folds the user's earning transactions into the three
	// balance aggregates. Missing rows fold to zero.
	GetBalance(ctx context.Context, userID user.ID) (*entities.Balance, error)

	CreateTransaction(context.Context, *entities.Transaction) error

	// GetWithdrawalForUpdate loads a withdrawal transaction with its
	// row locked for the duration of the ambient transaction.
	GetWithdrawalForUpdate(ctx context.Context, txnID string) (*entities.Transaction, error)

	// SetTransactionStatus sets the status and, when given, replaces
	// the description (rejection reason).
	SetTransactionStatus(ctx context.Context, txnID string, status entities.TransactionStatus, description string) error

	ListTransactions(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error)
	ListWithdrawals(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error)

	// ListAllWithdrawals is the admin review queue across users.
	ListAllWithdrawals(ctx context.Context, filter params.TransactionFilter) ([]*entities.Transaction, int, error)

	// FindPaymentMethod finds an exact (user, method, details) match.
	FindPaymentMethod(ctx context.Context, userID user.ID, method, details string) (*entities.PaymentMethod, error)
	CreatePaymentMethod(context.Context, *entities.PaymentMethod) error
	GetPaymentMethod(ctx context.Context, id string, userID user.ID) (*entities.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID user.ID) ([]*entities.PaymentMethod, error)

	// ClearDefaultPaymentMethods unsets the default flag on all of the
	// user's methods. Run before setting a new default.
	ClearDefaultPaymentMethods(ctx context.Context, userID user.ID) error
	SetDefaultPaymentMethod(ctx context.Context, id string, userID user.ID) error
	UpdatePaymentMethodDetails(ctx context.Context, id string, userID user.ID, details string) error
}
