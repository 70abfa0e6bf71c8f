package entities

import (
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/pkg/ident"
	"github.com/shopspring/decimal"
)

type BidStatus string

// Stored bid statuses. BidUnconfirmed is never persisted: it exists
// only as a derived view (see EffectiveStatus).
const (
	BidOpen        BidStatus = "open"
	BidAccepted    BidStatus = "accepted"
	BidRejected    BidStatus = "rejected"
	BidCancelled   BidStatus = "cancelled"
	BidUnconfirmed BidStatus = "unconfirmed"
)

func ValidStoredBidStatus(s BidStatus) bool {
	switch s {
	case BidOpen, BidAccepted, BidRejected, BidCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is final and passes through the
// derived-status computation unchanged.
func (s BidStatus) Terminal() bool {
	switch s {
	case BidAccepted, BidRejected, BidCancelled:
		return true
	default:
		return false
	}
}

// Default window the client has to respond before the writer may
// reconsider the offer.
const DefaultResponseWindow = 72 * time.Hour

// Bid is a writer's offer to fulfill an order at a given amount.
type Bid struct {
	SubmittedAt      time.Time       `db:"submitted_at"`
	ResponseDeadline time.Time       `db:"response_deadline"`
	ID               string          `db:"id"`
	OrderID          string          `db:"order_id"`
	WriterID         user.ID         `db:"user_id"`
	Message          string          `db:"message"`
	Status           BidStatus       `db:"status"`
	Amount           decimal.Decimal `db:"amount"`
	// Order budget snapshot taken at placement time.
	OriginalBudget decimal.Decimal `db:"original_budget"`
}

// NewBid creates an open bid against the given order. The response
// deadline is the proposed completion date when supplied, otherwise
// the submission time plus the default response window.
func NewBid(order *Order, writerID user.ID, amount decimal.Decimal, message string, proposedDeadline *time.Time) *Bid {
	now := time.Now().UTC()

	responseDeadline := now.Add(DefaultResponseWindow)
	if proposedDeadline != nil {
		responseDeadline = *proposedDeadline
	}

	return &Bid{
		ID:               ident.New(ident.BidPrefix),
		OrderID:          order.ID,
		WriterID:         writerID,
		Amount:           amount,
		OriginalBudget:   order.Budget,
		Message:          message,
		Status:           BidOpen,
		SubmittedAt:      now,
		ResponseDeadline: responseDeadline,
	}
}

// EffectiveStatus reconciles the stored status against the order's
// edit recency. Terminal statuses pass through unchanged; otherwise an
// order edited after the bid was submitted renders the bid unconfirmed
// until the writer re-confirms. Pure: no side effects, stable for the
// same inputs.
func (b *Bid) EffectiveStatus(o *Order) BidStatus {
	if b.Status.Terminal() {
		return b.Status
	}
	if o != nil && o.UpdatedAt != nil && o.UpdatedAt.After(b.SubmittedAt) {
		return BidUnconfirmed
	}
	return b.Status
}
