package repositories

import (
	"context"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
)

type OrderRepository interface {
	CreateOrder(context.Context, *entities.Order) error
	GetOrderByID(ctx context.Context, id string) (*entities.Order, error)

	// UpdateOrder persists the client-editable fields and stamps
	// updated_at; the returned time is the stamp applied.
	UpdateOrder(context.Context, *entities.Order) (time.Time, error)

	// AssignWriter records the winning writer and moves the order to
	// in_progress. Part of the accept-gate transaction.
	AssignWriter(ctx context.Context, orderID string, writerID user.ID) error

	// SetOrderStatus transitions the order and stamps updated_at.
	SetOrderStatus(ctx context.Context, orderID string, status entities.OrderStatus) error

	ListClientOrders(ctx context.Context, clientID user.ID, filter params.OrderFilter) ([]*entities.Order, int, error)
	ListWriterOrders(ctx context.Context, writerID user.ID, filter params.OrderFilter) ([]*entities.Order, int, error)

	// ListAvailableOrders returns pending, unassigned orders open for
	// bidding.
	ListAvailableOrders(ctx context.Context, filter params.OrderFilter) ([]*entities.Order, int, error)
}
