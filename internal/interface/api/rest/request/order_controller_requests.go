package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	Deadline        time.Time       `json:"deadline"`
	Title           string          `json:"title"`
	Subject         string          `json:"subject"`
	Type            string          `json:"type"`
	Description     string          `json:"description"`
	Requirements    string          `json:"requirements"`
	AdditionalNotes string          `json:"additional_notes"`
	Budget          decimal.Decimal `json:"budget"`
	Pages           int             `json:"pages"`
}

// UpdateOrder fields are pointers: absent means "leave unchanged".
type UpdateOrder struct {
	Deadline        *time.Time       `json:"deadline"`
	Title           *string          `json:"title"`
	Subject         *string          `json:"subject"`
	Type            *string          `json:"type"`
	Description     *string          `json:"description"`
	Requirements    *string          `json:"requirements"`
	AdditionalNotes *string          `json:"additional_notes"`
	Budget          *decimal.Decimal `json:"budget"`
	Pages           *int             `json:"pages"`
}

type CancelOrder struct {
	Reason string `json:"reason"`
}

type PricingPreview struct {
	Deadline time.Time `json:"deadline"`
	Category string    `json:"category"`
	Type     string    `json:"type"`
	Pages    int       `json:"pages"`
}
