package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlaceBid struct {
	ProposedCompletionDate *time.Time      `json:"proposed_completion_date"`
	Message                string          `json:"message"`
	Amount                 decimal.Decimal `json:"amount"`
}

// UpdateBid fields are pointers: absent means "leave unchanged".
type UpdateBid struct {
	Amount  *decimal.Decimal `json:"amount"`
	Message *string          `json:"message"`
}

type DecideBid struct {
	Status string `json:"status"`
}
