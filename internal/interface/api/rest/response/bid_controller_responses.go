package response

import (
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/shopspring/decimal"
)

// GetBid always carries the effective status, never the raw stored one.
type GetBid struct {
	SubmittedAt      time.Time          `json:"submitted_at"`
	ResponseDeadline time.Time          `json:"response_deadline"`
	ID               string             `json:"id"`
	OrderID          string             `json:"order_id"`
	Message          string             `json:"message"`
	Status           entities.BidStatus `json:"status"`
	Order            OrderSummary       `json:"order"`
	Amount           decimal.Decimal    `json:"amount"`
	OriginalBudget   decimal.Decimal    `json:"original_budget"`
}

// OrderSummary is the slice of the order a bid listing needs.
type OrderSummary struct {
	Deadline time.Time            `json:"deadline"`
	ID       string               `json:"id"`
	Title    string               `json:"title"`
	Subject  string               `json:"subject"`
	Status   entities.OrderStatus `json:"status"`
	Budget   decimal.Decimal      `json:"budget"`
	Assigned bool                 `json:"assigned"`
}

func NewGetBid(e *entities.BidWithOrder) *GetBid {
	return &GetBid{
		ID:               e.Bid.ID,
		OrderID:          e.Bid.OrderID,
		Amount:           e.Bid.Amount,
		OriginalBudget:   e.Bid.OriginalBudget,
		Message:          e.Bid.Message,
		Status:           e.EffectiveStatus(),
		SubmittedAt:      e.Bid.SubmittedAt,
		ResponseDeadline: e.Bid.ResponseDeadline,
		Order: OrderSummary{
			ID:       e.Order.ID,
			Title:    e.Order.Title,
			Subject:  e.Order.Subject,
			Status:   e.Order.Status,
			Budget:   e.Order.Budget,
			Deadline: e.Order.Deadline,
			Assigned: e.Order.Assigned(),
		},
	}
}

func NewGetBids(bids []*entities.BidWithOrder) []*GetBid {
	res := make([]*GetBid, len(bids))
	for i, b := range bids {
		res[i] = NewGetBid(b)
	}
	return res
}
