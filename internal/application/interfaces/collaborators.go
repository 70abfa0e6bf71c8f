package interfaces

import (
	"context"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/shopspring/decimal"
)

// Messenger is the chat collaborator. Invoked after a successful bid
// placement; failure here never rolls the bid back.
type Messenger interface {
	GetOrCreateConversation(ctx context.Context, orderID string, clientID, writerID user.ID) (string, error)
	PostMessage(ctx context.Context, conversationID string, senderID user.ID, text string) error
}

// Notification is a message for the notification collaborator.
type Notification struct {
	Details  map[string]string `json:"details,omitempty"`
	Email    string            `json:"email"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Kind     string            `json:"kind"`
	SenderID user.ID           `json:"sender_id,omitempty"`
}

// Notifier delivers notifications. Fire-and-forget from the core's
// perspective: delivery failure is not part of any transactional
// outcome.
type Notifier interface {
	Notify(ctx context.Context, n *Notification)
}

// Pricer is the pricing collaborator consulted at order creation and
// edit time to enforce the minimum budget.
type Pricer interface {
	MinimumPrice(ctx context.Context, category, orderType string, pages int, deadline, now time.Time) (decimal.Decimal, error)
}

// FileStore keeps order attachments and submission files. The core
// only depends on existence checks when serializing payloads.
type FileStore interface {
	Save(ctx context.Context, ownerID user.ID, orderID, filename string, data []byte) error
	List(ctx context.Context, ownerID user.ID, orderID string) ([]string, error)
	Exists(ctx context.Context, ownerID user.ID, orderID, filename string) bool
	Remove(ctx context.Context, ownerID user.ID, orderID, filename string) error
}

// AuthService resolves a bearer token into a user.
type AuthService interface {
	GetUserFromToken(ctx context.Context, token string) (*user.User, error)
}
