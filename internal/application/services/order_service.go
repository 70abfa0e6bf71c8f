package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/repositories"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	orderRepo   repositories.OrderRepository
	bidRepo     repositories.BidRepository
	paymentRepo repositories.PaymentRepository
	userRepo    repositories.UserRepository
	trm         trm.Manager
	pricer      interfaces.Pricer
	notifier    interfaces.Notifier
	files       interfaces.FileStore
	logger      logger.Logger
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	bidRepo repositories.BidRepository,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	trm trm.Manager,
	pricer interfaces.Pricer,
	notifier interfaces.Notifier,
	files interfaces.FileStore,
	logger logger.Logger,
) (*OrderService, error) {
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	return &OrderService{
		orderRepo:   orderRepo,
		bidRepo:     bidRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		trm:         trm,
		pricer:      pricer,
		notifier:    notifier,
		files:       files,
		logger:      logger,
	}, nil
}

var _ interfaces.OrderService = (*OrderService)(nil)

// CreateOrder posts a new pending order. The budget must clear the
// minimum the pricing collaborator quotes for the order's parameters.
func (s *OrderService) CreateOrder(ctx context.Context, clientID user.ID, p *params.CreateOrder) (*entities.Order, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, &errs.RequiredParamError{ParamName: "title"}
	}
	if strings.TrimSpace(p.Description) == "" {
		return nil, &errs.RequiredParamError{ParamName: "description"}
	}
	if p.Pages < 1 {
		return nil, fmt.Errorf("%w: pages must be at least 1", errs.ErrValidation)
	}
	if !p.Budget.IsPositive() {
		return nil, fmt.Errorf("%w: budget must be positive", errs.ErrValidation)
	}
	now := time.Now().UTC()
	if !p.Deadline.After(now) {
		return nil, fmt.Errorf("%w: deadline must be in the future", errs.ErrInvalidDeadline)
	}

	minimum, err := s.minimumPrice(ctx, p.Subject, p.Type, p.Pages, p.Deadline, now)
	if err != nil {
		return nil, err
	}
	if p.Budget.LessThan(minimum) {
		return nil, fmt.Errorf("%w: budget %s is below the minimum %s",
			errs.ErrBudgetExceeded, p.Budget, minimum)
	}

	order := entities.NewOrder(clientID)
	order.Title = p.Title
	order.Subject = p.Subject
	order.Type = p.Type
	order.Pages = p.Pages
	order.Deadline = p.Deadline
	order.Budget = p.Budget
	order.MinimumBudget = minimum
	order.Description = p.Description
	order.Requirements = p.Requirements
	order.AdditionalNotes = p.AdditionalNotes
	order.CreatedAt = now

	if err = s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateOrder applies the client's edits to an unassigned order. The
// repository stamps updated_at, which flips every still-open bid into
// the unconfirmed derived state until its writer re-confirms.
func (s *OrderService) UpdateOrder(ctx context.Context, clientID user.ID, p *params.UpdateOrder) (*entities.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, errs.ErrForbidden
	}
	if order.Assigned() {
		return nil, fmt.Errorf("%w: assigned orders cannot be edited", errs.ErrInvalidOperation)
	}
	if order.Status != entities.OrderPending {
		return nil, fmt.Errorf("%w: order is %s", errs.ErrInvalidOperation, order.Status)
	}

	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return nil, &errs.RequiredParamError{ParamName: "title"}
		}
		order.Title = *p.Title
	}
	if p.Subject != nil {
		order.Subject = *p.Subject
	}
	if p.Type != nil {
		order.Type = *p.Type
	}
	if p.Description != nil {
		order.Description = *p.Description
	}
	if p.Requirements != nil {
		order.Requirements = *p.Requirements
	}
	if p.AdditionalNotes != nil {
		order.AdditionalNotes = *p.AdditionalNotes
	}
	if p.Pages != nil {
		if *p.Pages < 1 {
			return nil, fmt.Errorf("%w: pages must be at least 1", errs.ErrValidation)
		}
		order.Pages = *p.Pages
	}
	if p.Deadline != nil {
		if !p.Deadline.After(time.Now().UTC()) {
			return nil, fmt.Errorf("%w: deadline must be in the future", errs.ErrInvalidDeadline)
		}
		order.Deadline = *p.Deadline
	}
	if p.Budget != nil {
		if !p.Budget.IsPositive() {
			return nil, fmt.Errorf("%w: budget must be positive", errs.ErrValidation)
		}
		order.Budget = *p.Budget
	}

	// Changed scope changes the floor.
	if p.Budget != nil || p.Pages != nil || p.Deadline != nil || p.Subject != nil || p.Type != nil {
		minimum, err := s.minimumPrice(ctx, order.Subject, order.Type, order.Pages, order.Deadline, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if order.Budget.LessThan(minimum) {
			return nil, fmt.Errorf("%w: budget %s is below the minimum %s",
				errs.ErrBudgetExceeded, order.Budget, minimum)
		}
		order.MinimumBudget = minimum
	}

	updatedAt, err := s.orderRepo.UpdateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	order.UpdatedAt = &updatedAt

	s.notifyOpenBidders(ctx, order)

	return order, nil
}

// CancelOrder closes the order out. Cancelling an assigned order
// requires a reason, which is passed on to the writer.
func (s *OrderService) CancelOrder(ctx context.Context, clientID user.ID, orderID, reason string) (*entities.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, errs.ErrForbidden
	}

	switch order.Status {
	case entities.OrderCompleted, entities.OrderCancelled:
		return nil, fmt.Errorf("%w: order is already %s", errs.ErrInvalidOperation, order.Status)
	}

	if order.Assigned() && strings.TrimSpace(reason) == "" {
		return nil, &errs.RequiredParamError{ParamName: "reason"}
	}

	if err = s.orderRepo.SetOrderStatus(ctx, order.ID, entities.OrderCancelled); err != nil {
		return nil, err
	}
	order.Status = entities.OrderCancelled

	if order.Assigned() {
		s.notifyWriter(ctx, order, "Order cancelled",
			fmt.Sprintf("Order %q was cancelled by the client. Reason: %s", order.Title, reason),
			"order_cancelled")
	}

	return order, nil
}

// CompleteOrder marks an assigned order completed and records a
// pending earning for the writer at the accepted bid's amount. Both
// writes commit atomically.
func (s *OrderService) CompleteOrder(ctx context.Context, clientID user.ID, orderID string) (*entities.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, errs.ErrForbidden
	}
	if !order.Assigned() {
		return nil, fmt.Errorf("%w: order has no assigned writer", errs.ErrInvalidOperation)
	}

	switch order.Status {
	case entities.OrderInProgress, entities.OrderSubmittedForReview, entities.OrderRevisionRequested:
	default:
		return nil, fmt.Errorf("%w: order is %s", errs.ErrInvalidOperation, order.Status)
	}

	bids, _, err := s.bidRepo.ListOrderBids(ctx, order.ID, params.BidFilter{
		Status: string(entities.BidAccepted),
		Page:   params.NewPage(1, 1),
	})
	if err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("%w: no accepted bid on assigned order %s", errs.ErrInvalidOperation, order.ID)
	}
	amount := bids[0].Bid.Amount

	err = s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.SetOrderStatus(ctx, order.ID, entities.OrderCompleted); err != nil {
			return err
		}

		earning := entities.NewEarning(order.WriterID, order.ID, amount,
			fmt.Sprintf("Payment for order %q", order.Title))

		return s.paymentRepo.CreateTransaction(ctx, earning)
	})
	if err != nil {
		return nil, err
	}
	order.Status = entities.OrderCompleted

	s.notifyWriter(ctx, order, "Order completed",
		fmt.Sprintf("Order %q was marked completed. A payment of %s is pending.", order.Title, amount),
		"order_completed")

	return order, nil
}

// GetOrder enforces visibility: the client owner, the assigned writer
// and admins see any order; other writers only see orders still open
// for bidding.
func (s *OrderService) GetOrder(ctx context.Context, caller *user.User, orderID string) (*entities.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch {
	case caller.Role == user.Admin:
	case order.ClientID == caller.ID:
	case order.WriterID == caller.ID:
	case caller.Role == user.Writer && !order.Assigned() && order.Status == entities.OrderPending:
	default:
		return nil, errs.ErrNotFound
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, caller *user.User, filter params.OrderFilter) ([]*entities.Order, int, error) {
	switch caller.Role {
	case user.Writer:
		return s.orderRepo.ListWriterOrders(ctx, caller.ID, filter)
	default:
		return s.orderRepo.ListClientOrders(ctx, caller.ID, filter)
	}
}

func (s *OrderService) ListAvailableOrders(ctx context.Context, filter params.OrderFilter) ([]*entities.Order, int, error) {
	return s.orderRepo.ListAvailableOrders(ctx, filter)
}

// AddAttachment stores an order file. Attachments belong to the client
// owner and are frozen together with the rest of the order once it
// leaves the pending state.
func (s *OrderService) AddAttachment(ctx context.Context, clientID user.ID, orderID, filename string, data []byte) error {
	if s.files == nil {
		return fmt.Errorf("%w: attachments are not enabled", errs.ErrInvalidOperation)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", errs.ErrValidation)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ClientID != clientID {
		return errs.ErrForbidden
	}
	if order.Status != entities.OrderPending {
		return fmt.Errorf("%w: order is %s", errs.ErrInvalidOperation, order.Status)
	}

	if s.files.Exists(ctx, order.ClientID, order.ID, filename) {
		return fmt.Errorf("%w: attachment %q already exists", errs.ErrValidation, filename)
	}

	return s.files.Save(ctx, order.ClientID, order.ID, filename, data)
}

// ListAttachments follows the same visibility rules as GetOrder.
func (s *OrderService) ListAttachments(ctx context.Context, caller *user.User, orderID string) ([]string, error) {
	if s.files == nil {
		return []string{}, nil
	}

	order, err := s.GetOrder(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}

	return s.files.List(ctx, order.ClientID, order.ID)
}

func (s *OrderService) RemoveAttachment(ctx context.Context, clientID user.ID, orderID, filename string) error {
	if s.files == nil {
		return errs.ErrNotFound
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ClientID != clientID {
		return errs.ErrForbidden
	}
	if order.Status != entities.OrderPending {
		return fmt.Errorf("%w: order is %s", errs.ErrInvalidOperation, order.Status)
	}

	return s.files.Remove(ctx, order.ClientID, order.ID, filename)
}

func (s *OrderService) PreviewPricing(ctx context.Context, q *params.PricingQuery) (decimal.Decimal, error) {
	if q.Pages < 1 {
		return decimal.Zero, fmt.Errorf("%w: pages must be at least 1", errs.ErrValidation)
	}
	return s.minimumPrice(ctx, q.Category, q.OrderType, q.Pages, q.Deadline, time.Now().UTC())
}

func (s *OrderService) minimumPrice(ctx context.Context, category, orderType string, pages int, deadline, now time.Time) (decimal.Decimal, error) {
	if s.pricer == nil {
		return decimal.Zero, nil
	}

	minimum, err := s.pricer.MinimumPrice(ctx, category, orderType, pages, deadline, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricing: %w", err)
	}

	return minimum, nil
}

func (s *OrderService) notifyOpenBidders(ctx context.Context, order *entities.Order) {
	if s.notifier == nil {
		return
	}

	bids, _, err := s.bidRepo.ListOrderBids(ctx, order.ID, params.BidFilter{
		Status: string(entities.BidOpen),
		Page:   params.NewPage(1, 100),
	})
	if err != nil {
		s.logger.Errorf("order %s: list open bids: %s", order.ID, err)
		return
	}

	for _, bwo := range bids {
		writer, err := s.userRepo.GetUserByID(ctx, bwo.Bid.WriterID)
		if err != nil {
			s.logger.Errorf("order %s: resolve writer %s: %s", order.ID, bwo.Bid.WriterID, err)
			continue
		}

		s.notifier.Notify(ctx, &interfaces.Notification{
			Email:    writer.Email,
			Title:    "Order updated",
			Message:  fmt.Sprintf("Order %q was edited. Please review and confirm your bid.", order.Title),
			Kind:     "order_updated",
			SenderID: order.ClientID,
			Details: map[string]string{
				"order_id": order.ID,
				"bid_id":   bwo.Bid.ID,
			},
		})
	}
}

func (s *OrderService) notifyWriter(ctx context.Context, order *entities.Order, title, message, kind string) {
	if s.notifier == nil {
		return
	}

	writer, err := s.userRepo.GetUserByID(ctx, order.WriterID)
	if err != nil {
		s.logger.Errorf("order %s: resolve writer: %s", order.ID, err)
		return
	}

	s.notifier.Notify(ctx, &interfaces.Notification{
		Email:    writer.Email,
		Title:    title,
		Message:  message,
		Kind:     kind,
		SenderID: order.ClientID,
		Details:  map[string]string{"order_id": order.ID},
	})
}
