package params

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrder carries validated input for order creation.
type CreateOrder struct {
	Deadline        time.Time
	Title           string
	Subject         string
	Type            string
	Description     string
	Requirements    string
	AdditionalNotes string
	Budget          decimal.Decimal
	Pages           int
}

// UpdateOrder carries the client-editable order fields. Nil means
// "leave unchanged". Any applied update bumps the order's updated_at,
// flipping open bids to the unconfirmed derived state.
type UpdateOrder struct {
	Deadline        *time.Time
	Title           *string
	Subject         *string
	Type            *string
	Description     *string
	Requirements    *string
	AdditionalNotes *string
	Budget          *decimal.Decimal
	Pages           *int
	OrderID         string
}

// PricingQuery is the input of the minimum-price calculation.
type PricingQuery struct {
	Deadline  time.Time
	Category  string
	OrderType string
	Pages     int
}
