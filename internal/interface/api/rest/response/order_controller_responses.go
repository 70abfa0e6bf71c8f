package response

import (
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/shopspring/decimal"
)

type GetOrder struct {
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       *time.Time           `json:"updated_at"`
	Deadline        time.Time            `json:"deadline"`
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Subject         string               `json:"subject"`
	Type            string               `json:"type"`
	Description     string               `json:"description"`
	Requirements    string               `json:"requirements"`
	AdditionalNotes string               `json:"additional_notes"`
	Status          entities.OrderStatus `json:"status"`
	ClientID        user.ID              `json:"client_id"`
	WriterID        user.ID              `json:"writer_id,omitempty"`
	Budget          decimal.Decimal      `json:"budget"`
	MinimumBudget   decimal.Decimal      `json:"minimum_budget"`
	Pages           int                  `json:"pages"`
}

func NewGetOrder(e *entities.Order) *GetOrder {
	return &GetOrder{
		ID:              e.ID,
		Title:           e.Title,
		Subject:         e.Subject,
		Type:            e.Type,
		Pages:           e.Pages,
		Deadline:        e.Deadline,
		Budget:          e.Budget,
		MinimumBudget:   e.MinimumBudget,
		Status:          e.Status,
		ClientID:        e.ClientID,
		WriterID:        e.WriterID,
		Description:     e.Description,
		Requirements:    e.Requirements,
		AdditionalNotes: e.AdditionalNotes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func NewGetOrders(orders []*entities.Order) []*GetOrder {
	res := make([]*GetOrder, len(orders))
	for i, o := range orders {
		res[i] = NewGetOrder(o)
	}
	return res
}

// GetAttachments lists an order's attachment filenames.
type GetAttachments struct {
	Files []string `json:"files"`
}

type PricingPreview struct {
	MinimumPrice decimal.Decimal `json:"minimum_price"`
}
