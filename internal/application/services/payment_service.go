package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/repositories"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	userRepo    repositories.UserRepository
	trm         trm.Manager
	notifier    interfaces.Notifier
	logger      logger.Logger
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	trm trm.Manager,
	notifier interfaces.Notifier,
	logger logger.Logger,
) (*PaymentService, error) {
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		trm:         trm,
		notifier:    notifier,
		logger:      logger,
	}, nil
}

var _ interfaces.PaymentService = (*PaymentService)(nil)

func (s *PaymentService) GetBalance(ctx context.Context, userID user.ID) (*entities.Balance, error) {
	return s.paymentRepo.GetBalance(ctx, userID)
}

// CreateWithdrawal records a pending withdrawal request, registering
// the payout destination on first use. The amount is deliberately not
// checked against the available balance: pending requests are the
// admin review queue, and the admin sees the balance when deciding.
func (s *PaymentService) CreateWithdrawal(ctx context.Context, userID user.ID, p *params.CreateWithdrawal) (*entities.Transaction, error) {
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrValidation)
	}
	if strings.TrimSpace(p.Method) == "" {
		return nil, &errs.RequiredParamError{ParamName: "method"}
	}
	if strings.TrimSpace(p.Details) == "" {
		return nil, &errs.RequiredParamError{ParamName: "details"}
	}

	var txn *entities.Transaction

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		method, err := s.paymentRepo.FindPaymentMethod(ctx, userID, p.Method, p.Details)
		if err != nil {
			if !errors.Is(err, errs.ErrNotFound) {
				return err
			}
			method = entities.NewPaymentMethod(userID, p.Method, p.Details, false)
			if err = s.paymentRepo.CreatePaymentMethod(ctx, method); err != nil {
				return err
			}
		}

		txn = entities.NewWithdrawal(userID, p.Amount, method)

		return s.paymentRepo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// ApproveWithdrawal finalizes a pending withdrawal. Only valid from
// the pending state; the row lock serializes concurrent decisions.
func (s *PaymentService) ApproveWithdrawal(ctx context.Context, admin *user.User, txnID string) (*entities.Transaction, error) {
	return s.decideWithdrawal(ctx, admin, txnID, entities.TxnApproved, "")
}

// RejectWithdrawal declines a pending withdrawal with a reason the
// requester gets to see.
func (s *PaymentService) RejectWithdrawal(ctx context.Context, admin *user.User, txnID, reason string) (*entities.Transaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &errs.RequiredParamError{ParamName: "reason"}
	}
	return s.decideWithdrawal(ctx, admin, txnID, entities.TxnRejected, reason)
}

func (s *PaymentService) decideWithdrawal(ctx context.Context, admin *user.User, txnID string, status entities.TransactionStatus, reason string) (*entities.Transaction, error) {
	if admin == nil || admin.Role != user.Admin {
		return nil, errs.ErrForbidden
	}

	var txn *entities.Transaction

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error

		txn, err = s.paymentRepo.GetWithdrawalForUpdate(ctx, txnID)
		if err != nil {
			return err
		}

		if txn.Status != entities.TxnPending {
			return fmt.Errorf("%w: withdrawal is already %s", errs.ErrInvalidState, txn.Status)
		}

		description := ""
		if status == entities.TxnRejected {
			description = fmt.Sprintf("%s (rejected: %s)", txn.Description, reason)
		}

		if err = s.paymentRepo.SetTransactionStatus(ctx, txnID, status, description); err != nil {
			return err
		}

		txn.Status = status
		if description != "" {
			txn.Description = description
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyWithdrawalDecided(ctx, txn, reason)

	return txn, nil
}

func (s *PaymentService) ListTransactions(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error) {
	return s.paymentRepo.ListTransactions(ctx, userID, filter)
}

func (s *PaymentService) ListWithdrawals(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error) {
	return s.paymentRepo.ListWithdrawals(ctx, userID, filter)
}

func (s *PaymentService) ListAllWithdrawals(ctx context.Context, admin *user.User, filter params.TransactionFilter) ([]*entities.Transaction, int, error) {
	if admin == nil || admin.Role != user.Admin {
		return nil, 0, errs.ErrForbidden
	}
	return s.paymentRepo.ListAllWithdrawals(ctx, filter)
}

// AddPaymentMethod registers a payout destination. Adding an already
// registered (method, details) pair returns the existing record, only
// applying the default flag.
func (s *PaymentService) AddPaymentMethod(ctx context.Context, userID user.ID, p *params.AddPaymentMethod) (*entities.PaymentMethod, error) {
	if strings.TrimSpace(p.Method) == "" {
		return nil, &errs.RequiredParamError{ParamName: "method"}
	}
	if strings.TrimSpace(p.Details) == "" {
		return nil, &errs.RequiredParamError{ParamName: "details"}
	}

	var method *entities.PaymentMethod

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		existing, err := s.paymentRepo.FindPaymentMethod(ctx, userID, p.Method, p.Details)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}

		if p.IsDefault {
			if err := s.paymentRepo.ClearDefaultPaymentMethods(ctx, userID); err != nil {
				return err
			}
		}

		if existing != nil {
			method = existing
			if p.IsDefault {
				if err := s.paymentRepo.SetDefaultPaymentMethod(ctx, existing.ID, userID); err != nil {
					return err
				}
				method.IsDefault = true
			}
			return nil
		}

		method = entities.NewPaymentMethod(userID, p.Method, p.Details, p.IsDefault)

		return s.paymentRepo.CreatePaymentMethod(ctx, method)
	})
	if err != nil {
		return nil, err
	}

	return method, nil
}

func (s *PaymentService) SetDefaultPaymentMethod(ctx context.Context, userID user.ID, id string) error {
	return s.trm.Do(ctx, func(ctx context.Context) error {
		if _, err := s.paymentRepo.GetPaymentMethod(ctx, id, userID); err != nil {
			return err
		}
		if err := s.paymentRepo.ClearDefaultPaymentMethods(ctx, userID); err != nil {
			return err
		}
		return s.paymentRepo.SetDefaultPaymentMethod(ctx, id, userID)
	})
}

func (s *PaymentService) UpdatePaymentMethodDetails(ctx context.Context, userID user.ID, id, details string) error {
	if strings.TrimSpace(details) == "" {
		return &errs.RequiredParamError{ParamName: "details"}
	}
	return s.paymentRepo.UpdatePaymentMethodDetails(ctx, id, userID, details)
}

func (s *PaymentService) ListPaymentMethods(ctx context.Context, userID user.ID) ([]*entities.PaymentMethod, error) {
	return s.paymentRepo.ListPaymentMethods(ctx, userID)
}

func (s *PaymentService) notifyWithdrawalDecided(ctx context.Context, txn *entities.Transaction, reason string) {
	if s.notifier == nil {
		return
	}

	u, err := s.userRepo.GetUserByID(ctx, txn.UserID)
	if err != nil {
		s.logger.Errorf("withdrawal %s: resolve user: %s", txn.ID, err)
		return
	}

	title := "Withdrawal approved"
	kind := "withdrawal_approved"
	message := fmt.Sprintf("Your withdrawal of %s was approved.", txn.Amount)
	if txn.Status == entities.TxnRejected {
		title = "Withdrawal rejected"
		kind = "withdrawal_rejected"
		message = fmt.Sprintf("Your withdrawal of %s was rejected: %s", txn.Amount, reason)
	}

	s.notifier.Notify(ctx, &interfaces.Notification{
		Email:   u.Email,
		Title:   title,
		Message: message,
		Kind:    kind,
		Details: map[string]string{"transaction_id": txn.ID},
	})
}
