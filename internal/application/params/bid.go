package params

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceBid carries validated input for the bid placement operation.
type PlaceBid struct {
	ProposedDeadline *time.Time
	OrderID          string
	Message          string
	Amount           decimal.Decimal
}

// UpdateBid carries the mutable fields of an open bid. Nil means
// "leave unchanged"; the submission timestamp is reset regardless.
type UpdateBid struct {
	Amount  *decimal.Decimal
	Message *string
	BidID   string
}

// DecideAction is the client's decision over a bid.
type DecideAction string

const (
	ActionAccept DecideAction = "accept"
	ActionReject DecideAction = "reject"
)

func ValidDecideAction(a DecideAction) bool {
	return a == ActionAccept || a == ActionReject
}

// DecideBid carries input for the accept/reject transition.
type DecideBid struct {
	BidID  string
	Action DecideAction
}
