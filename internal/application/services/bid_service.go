package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/repositories"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type BidService struct {
	bidRepo   repositories.BidRepository
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	trm       trm.Manager
	messenger interfaces.Messenger
	notifier  interfaces.Notifier
	logger    logger.Logger
}

func NewBidService(
	bidRepo repositories.BidRepository,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	trm trm.Manager,
	messenger interfaces.Messenger,
	notifier interfaces.Notifier,
	logger logger.Logger,
) (*BidService, error) {
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	return &BidService{
		bidRepo:   bidRepo,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		trm:       trm,
		messenger: messenger,
		notifier:  notifier,
		logger:    logger,
	}, nil
}

var _ interfaces.BidService = (*BidService)(nil)

// PlaceBid creates an open bid on a pending, unassigned order. The
// chat conversation and the client notification are best-effort and
// never fail the placement.
func (s *BidService) PlaceBid(ctx context.Context, writerID user.ID, p *params.PlaceBid) (*entities.BidWithOrder, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	if order.ClientID == writerID {
		return nil, fmt.Errorf("%w: cannot bid on your own order", errs.ErrForbidden)
	}
	if err = s.checkOrderOpenForBidding(ctx, order); err != nil {
		return nil, err
	}

	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrValidation)
	}
	if p.Amount.GreaterThan(order.Budget) {
		return nil, fmt.Errorf("%w: bid %s exceeds order budget %s",
			errs.ErrBudgetExceeded, p.Amount, order.Budget)
	}
	if p.ProposedDeadline != nil {
		if p.ProposedDeadline.Before(time.Now().UTC()) {
			return nil, fmt.Errorf("%w: proposed completion date is in the past", errs.ErrInvalidDeadline)
		}
		if p.ProposedDeadline.After(order.Deadline) {
			return nil, fmt.Errorf("%w: proposed completion date is after the order deadline", errs.ErrInvalidDeadline)
		}
	}

	open, err := s.bidRepo.HasOpenBid(ctx, order.ID, writerID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, errs.ErrDuplicateBid
	}

	bid := entities.NewBid(order, writerID, p.Amount, p.Message, p.ProposedDeadline)

	if err = s.bidRepo.CreateBid(ctx, bid); err != nil {
		return nil, err
	}

	s.startConversation(ctx, bid, order)
	s.notifyBidPlaced(ctx, bid, order)

	return &entities.BidWithOrder{Bid: bid, Order: order}, nil
}

// UpdateBid mutates an open bid's amount and message. The submission
// timestamp is reset, which also clears the unconfirmed derived state.
func (s *BidService) UpdateBid(ctx context.Context, writerID user.ID, p *params.UpdateBid) (*entities.BidWithOrder, error) {
	bwo, err := s.bidRepo.GetWriterBid(ctx, p.BidID, writerID)
	if err != nil {
		return nil, err
	}

	if bwo.Bid.Status != entities.BidOpen {
		return nil, fmt.Errorf("%w: only open bids can be edited", errs.ErrInvalidOperation)
	}
	if err = s.checkOrderOpenForBidding(ctx, bwo.Order); err != nil {
		return nil, err
	}

	if p.Amount != nil {
		if !p.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", errs.ErrValidation)
		}
		if p.Amount.GreaterThan(bwo.Order.Budget) {
			return nil, fmt.Errorf("%w: bid %s exceeds order budget %s",
				errs.ErrBudgetExceeded, p.Amount, bwo.Order.Budget)
		}
		bwo.Bid.Amount = *p.Amount
	}
	if p.Message != nil {
		bwo.Bid.Message = *p.Message
	}
	bwo.Bid.SubmittedAt = time.Now().UTC()

	if err = s.bidRepo.UpdateBid(ctx, bwo.Bid); err != nil {
		return nil, err
	}

	return bwo, nil
}

// ConfirmBid re-submits an unconfirmed bid against the edited order.
func (s *BidService) ConfirmBid(ctx context.Context, writerID user.ID, bidID string) (*entities.BidWithOrder, error) {
	bwo, err := s.bidRepo.GetWriterBid(ctx, bidID, writerID)
	if err != nil {
		return nil, err
	}

	if bwo.EffectiveStatus() != entities.BidUnconfirmed {
		return nil, fmt.Errorf("%w: bid does not need confirmation", errs.ErrInvalidOperation)
	}
	if err = s.checkOrderOpenForBidding(ctx, bwo.Order); err != nil {
		return nil, err
	}

	// Confirming against a budget cut below the bid amount is a
	// disagreement the writer has to resolve by editing the bid.
	if bwo.Bid.Amount.GreaterThan(bwo.Order.Budget) {
		return nil, fmt.Errorf("%w: bid %s exceeds updated order budget %s",
			errs.ErrBudgetExceeded, bwo.Bid.Amount, bwo.Order.Budget)
	}

	bwo.Bid.SubmittedAt = time.Now().UTC()

	if err = s.bidRepo.UpdateBid(ctx, bwo.Bid); err != nil {
		return nil, err
	}

	return bwo, nil
}

// WithdrawBid cancels the writer's own open bid.
func (s *BidService) WithdrawBid(ctx context.Context, writerID user.ID, bidID string) error {
	bwo, err := s.bidRepo.GetWriterBid(ctx, bidID, writerID)
	if err != nil {
		return err
	}

	if bwo.Bid.Status.Terminal() {
		return fmt.Errorf("%w: bid is already %s", errs.ErrInvalidOperation, bwo.Bid.Status)
	}

	return s.bidRepo.UpdateBidStatus(ctx, bidID, entities.BidCancelled)
}

// DecideBid applies the client's accept or reject decision. Accepting
// runs inside a single transaction holding row locks on the bid and
// its order: the winner is marked accepted, the writer is assigned and
// every other open bid on the order is rejected. Exactly one bid per
// order can ever win.
func (s *BidService) DecideBid(ctx context.Context, clientID user.ID, p *params.DecideBid) (*entities.BidWithOrder, error) {
	if !params.ValidDecideAction(p.Action) {
		return nil, fmt.Errorf("%w: unknown action %q", errs.ErrValidation, p.Action)
	}

	var bwo *entities.BidWithOrder

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error

		bwo, err = s.bidRepo.GetClientBidForUpdate(ctx, p.BidID, clientID)
		if err != nil {
			return err
		}

		if bwo.Bid.Status.Terminal() {
			return fmt.Errorf("%w: bid is already %s", errs.ErrAlreadyProcessed, bwo.Bid.Status)
		}

		if p.Action == params.ActionReject {
			if err = s.bidRepo.UpdateBidStatus(ctx, bwo.Bid.ID, entities.BidRejected); err != nil {
				return err
			}
			bwo.Bid.Status = entities.BidRejected
			return nil
		}

		// An order edit after submission puts the bid in the
		// unconfirmed state; the writer has to confirm it against
		// the new terms before it can win.
		if bwo.EffectiveStatus() == entities.BidUnconfirmed {
			return fmt.Errorf("%w: bid must be confirmed against the updated order",
				errs.ErrInvalidOperation)
		}

		if bwo.Order.Assigned() {
			return errs.ErrAlreadyAssigned
		}
		if bwo.Order.Status != entities.OrderPending {
			return fmt.Errorf("%w: order is %s", errs.ErrInvalidOperation, bwo.Order.Status)
		}

		// The row lock makes this check authoritative; the partial
		// unique index backstops it anyway.
		accepted, err := s.bidRepo.HasOtherAcceptedBid(ctx, bwo.Order.ID, bwo.Bid.ID)
		if err != nil {
			return err
		}
		if accepted {
			return errs.ErrAlreadyAssigned
		}

		if err = s.bidRepo.UpdateBidStatus(ctx, bwo.Bid.ID, entities.BidAccepted); err != nil {
			return err
		}
		if err = s.orderRepo.AssignWriter(ctx, bwo.Order.ID, bwo.Bid.WriterID); err != nil {
			return err
		}

		rejected, err := s.bidRepo.RejectOtherOpenBids(ctx, bwo.Order.ID, bwo.Bid.ID)
		if err != nil {
			return err
		}
		if rejected > 0 {
			s.logger.Infof("order %s: rejected %d competing bids", bwo.Order.ID, rejected)
		}

		bwo.Bid.Status = entities.BidAccepted
		bwo.Order.WriterID = bwo.Bid.WriterID
		bwo.Order.Status = entities.OrderInProgress

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBidDecided(ctx, bwo)

	return bwo, nil
}

func (s *BidService) GetWriterBid(ctx context.Context, writerID user.ID, bidID string) (*entities.BidWithOrder, error) {
	return s.bidRepo.GetWriterBid(ctx, bidID, writerID)
}

func (s *BidService) ListWriterBids(ctx context.Context, writerID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	return s.bidRepo.ListWriterBids(ctx, writerID, filter)
}

func (s *BidService) ListClientBids(ctx context.Context, clientID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	return s.bidRepo.ListClientBids(ctx, clientID, filter)
}

func (s *BidService) ListOrderBids(ctx context.Context, clientID user.ID, orderID string, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	if order.ClientID != clientID {
		return nil, 0, errs.ErrNotFound
	}

	return s.bidRepo.ListOrderBids(ctx, orderID, filter)
}

// checkOrderOpenForBidding guards every bid mutation: the order must
// still be pending and have no assigned writer.
func (s *BidService) checkOrderOpenForBidding(ctx context.Context, order *entities.Order) error {
	if order.Assigned() {
		return errs.ErrAlreadyAssigned
	}

	accepted, err := s.bidRepo.HasAcceptedBid(ctx, order.ID)
	if err != nil {
		return err
	}
	if accepted {
		return errs.ErrAlreadyAssigned
	}

	if order.Status != entities.OrderPending {
		return fmt.Errorf("%w: order is %s", errs.ErrInvalidOperation, order.Status)
	}

	return nil
}

func (s *BidService) startConversation(ctx context.Context, bid *entities.Bid, order *entities.Order) {
	if s.messenger == nil {
		return
	}

	convID, err := s.messenger.GetOrCreateConversation(ctx, order.ID, order.ClientID, bid.WriterID)
	if err != nil {
		s.logger.Errorf("bid %s: create conversation: %s", bid.ID, err)
		return
	}
	if bid.Message == "" {
		return
	}
	if err = s.messenger.PostMessage(ctx, convID, bid.WriterID, bid.Message); err != nil {
		s.logger.Errorf("bid %s: post message: %s", bid.ID, err)
	}
}

func (s *BidService) notifyBidPlaced(ctx context.Context, bid *entities.Bid, order *entities.Order) {
	if s.notifier == nil {
		return
	}

	client, err := s.userRepo.GetUserByID(ctx, order.ClientID)
	if err != nil {
		s.logger.Errorf("bid %s: resolve client: %s", bid.ID, err)
		return
	}

	s.notifier.Notify(ctx, &interfaces.Notification{
		Email:    client.Email,
		Title:    "New bid on your order",
		Message:  fmt.Sprintf("A writer placed a bid of %s on order %q.", bid.Amount, order.Title),
		Kind:     "bid_placed",
		SenderID: bid.WriterID,
		Details: map[string]string{
			"order_id": order.ID,
			"bid_id":   bid.ID,
		},
	})
}

func (s *BidService) notifyBidDecided(ctx context.Context, bwo *entities.BidWithOrder) {
	if s.notifier == nil {
		return
	}

	writer, err := s.userRepo.GetUserByID(ctx, bwo.Bid.WriterID)
	if err != nil {
		s.logger.Errorf("bid %s: resolve writer: %s", bwo.Bid.ID, err)
		return
	}

	title := "Your bid was accepted"
	kind := "bid_accepted"
	if bwo.Bid.Status == entities.BidRejected {
		title = "Your bid was declined"
		kind = "bid_rejected"
	}

	s.notifier.Notify(ctx, &interfaces.Notification{
		Email:    writer.Email,
		Title:    title,
		Message:  fmt.Sprintf("Your bid of %s on order %q was %s.", bwo.Bid.Amount, bwo.Order.Title, bwo.Bid.Status),
		Kind:     kind,
		SenderID: bwo.Order.ClientID,
		Details: map[string]string{
			"order_id": bwo.Order.ID,
			"bid_id":   bwo.Bid.ID,
		},
	})
}
