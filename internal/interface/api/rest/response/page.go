package response

import "github.com/Stephen-Muteti/writing-backend/internal/application/params"

// Page is the envelope for every paginated listing.
type Page struct {
	Items      any `json:"items"`
	Total      int `json:"total"`
	PageNumber int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

func NewPage(items any, total int, p params.Page) Page {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	return Page{
		Items:      items,
		Total:      total,
		PageNumber: p.Number,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}
