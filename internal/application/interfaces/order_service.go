package interfaces

import (
	"context"

	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/shopspring/decimal"
)

// OrderService owns order creation and the mutations that feed the
// bid lifecycle: edits bump updated_at, cancellation and completion
// close orders out.
type OrderService interface {
	CreateOrder(ctx context.Context, clientID user.ID, p *params.CreateOrder) (*entities.Order, error)
	UpdateOrder(ctx context.Context, clientID user.ID, p *params.UpdateOrder) (*entities.Order, error)
	CancelOrder(ctx context.Context, clientID user.ID, orderID, reason string) (*entities.Order, error)
	CompleteOrder(ctx context.Context, clientID user.ID, orderID string) (*entities.Order, error)

	AddAttachment(ctx context.Context, clientID user.ID, orderID, filename string, data []byte) error
	ListAttachments(ctx context.Context, caller *user.User, orderID string) ([]string, error)
	RemoveAttachment(ctx context.Context, clientID user.ID, orderID, filename string) error

	GetOrder(ctx context.Context, caller *user.User, orderID string) (*entities.Order, error)
	ListOrders(ctx context.Context, caller *user.User, filter params.OrderFilter) ([]*entities.Order, int, error)
	ListAvailableOrders(ctx context.Context, filter params.OrderFilter) ([]*entities.Order, int, error)

	PreviewPricing(ctx context.Context, q *params.PricingQuery) (decimal.Decimal, error)
}
