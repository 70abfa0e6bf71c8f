package entities

import (
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/pkg/ident"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending            OrderStatus = "pending"
	OrderInProgress         OrderStatus = "in_progress"
	OrderSubmittedForReview OrderStatus = "submitted_for_review"
	OrderRevisionRequested  OrderStatus = "revision_requested"
	OrderCompleted          OrderStatus = "completed"
	OrderCancelled          OrderStatus = "cancelled"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderInProgress, OrderSubmittedForReview,
		OrderRevisionRequested, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

// Order is a job posted by a client and assigned to at most one writer.
// WriterID is non-empty iff exactly one bid on the order is accepted.
type Order struct {
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       *time.Time      `db:"updated_at"`
	Deadline        time.Time       `db:"deadline"`
	ID              string          `db:"id"`
	Title           string          `db:"title"`
	Subject         string          `db:"subject"`
	Type            string          `db:"type"`
	Description     string          `db:"description"`
	Requirements    string          `db:"requirements"`
	AdditionalNotes string          `db:"additional_notes"`
	Status          OrderStatus     `db:"status"`
	ClientID        user.ID         `db:"client_id"`
	WriterID        user.ID         `db:"writer_id"`
	Budget          decimal.Decimal `db:"budget"`
	MinimumBudget   decimal.Decimal `db:"minimum_budget"`
	Pages           int             `db:"pages"`
}

func NewOrder(clientID user.ID) *Order {
	return &Order{
		ID:       ident.New(ident.OrderPrefix),
		ClientID: clientID,
		Status:   OrderPending,
		Pages:    1,
	}
}

// Assigned reports whether a writer has been assigned to the order.
func (o *Order) Assigned() bool {
	return o.WriterID != ""
}
