package entities

import (
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/pkg/ident"
)

// PaymentMethod is a payout destination, e.g. a Payoneer account.
// At most one method per user may be the default at any time.
type PaymentMethod struct {
	CreatedAt time.Time `db:"created_at"`
	ID        string    `db:"id"`
	UserID    user.ID   `db:"user_id"`
	Method    string    `db:"method"`
	Details   string    `db:"details"`
	IsDefault bool      `db:"is_default"`
}

func NewPaymentMethod(userID user.ID, method, details string, isDefault bool) *PaymentMethod {
	return &PaymentMethod{
		ID:        ident.New(ident.PaymentMethodPrefix),
		UserID:    userID,
		Method:    method,
		Details:   details,
		IsDefault: isDefault,
		CreatedAt: time.Now().UTC(),
	}
}
