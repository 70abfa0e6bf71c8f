package repositories

import (
	"context"

	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
)

// BidRepository persists bids. Methods that participate in the accept
// gate must honor an ambient transaction carried in the context.
type BidRepository interface {
	CreateBid(context.Context, *entities.Bid) error

	// GetWriterBid loads a bid joined with its (still unassigned)
	// order, scoped to the owning writer.
	GetWriterBid(ctx context.Context, bidID string, writerID user.ID) (*entities.BidWithOrder, error)

	// GetClientBid loads a bid joined with its order, scoped to the
	// order's client.
	GetClientBid(ctx context.Context, bidID string, clientID user.ID) (*entities.BidWithOrder, error)

	// GetClientBidForUpdate is GetClientBid with the order row locked
	// for the duration of the ambient transaction. The lock serializes
	// concurrent accept attempts on the same order.
	GetClientBidForUpdate(ctx context.Context, bidID string, clientID user.ID) (*entities.BidWithOrder, error)

	// HasAcceptedBid reports whether any bid on the order is accepted.
	HasAcceptedBid(ctx context.Context, orderID string) (bool, error)

	// HasOtherAcceptedBid reports whether a bid other than the given
	// one is accepted on the order.
	HasOtherAcceptedBid(ctx context.Context, orderID, bidID string) (bool, error)

	// HasOpenBid reports whether the writer already has an open bid on
	// the order.
	HasOpenBid(ctx context.Context, orderID string, writerID user.ID) (bool, error)

	// UpdateBid persists amount, message and submitted_at.
	UpdateBid(context.Context, *entities.Bid) error

	// UpdateBidStatus sets the stored status unconditionally.
	UpdateBidStatus(ctx context.Context, bidID string, status entities.BidStatus) error

	// RejectOtherOpenBids bulk-rejects every other open bid on the
	// order and returns the number of bids rejected.
	RejectOtherOpenBids(ctx context.Context, orderID, winnerBidID string) (int64, error)

	ListWriterBids(ctx context.Context, writerID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error)
	ListClientBids(ctx context.Context, clientID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error)
	ListOrderBids(ctx context.Context, orderID string, filter params.BidFilter) ([]*entities.BidWithOrder, int, error)
}
