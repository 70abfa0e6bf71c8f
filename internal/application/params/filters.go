package params

import "time"

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Page is a normalized pagination request.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps raw pagination input to sane bounds.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// BidFilter narrows bid listings. Status accepts stored statuses plus
// the derived "unconfirmed" and the "declined" alias for rejected.
type BidFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
	Page   Page
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	MinBudget *float64
	MaxBudget *float64
	Status    string
	Search    string
	Subject   string
	// AssignedOnly restricts a writer's listing to orders assigned to them.
	AssignedOnly bool
	Page         Page
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	From   *time.Time
	To     *time.Time
	Type   string
	Status string
	Page   Page
}
