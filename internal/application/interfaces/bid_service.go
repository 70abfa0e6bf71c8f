package interfaces

import (
	"context"

	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
)

// BidService owns the bid lifecycle: placement, mutation, withdrawal,
// confirmation and the accept/reject transition. The caller identity
// is always an explicit parameter.
type BidService interface {
	PlaceBid(ctx context.Context, writerID user.ID, p *params.PlaceBid) (*entities.BidWithOrder, error)
	UpdateBid(ctx context.Context, writerID user.ID, p *params.UpdateBid) (*entities.BidWithOrder, error)
	ConfirmBid(ctx context.Context, writerID user.ID, bidID string) (*entities.BidWithOrder, error)
	WithdrawBid(ctx context.Context, writerID user.ID, bidID string) error
	DecideBid(ctx context.Context, clientID user.ID, p *params.DecideBid) (*entities.BidWithOrder, error)

	GetWriterBid(ctx context.Context, writerID user.ID, bidID string) (*entities.BidWithOrder, error)
	ListWriterBids(ctx context.Context, writerID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error)
	ListClientBids(ctx context.Context, clientID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error)
	ListOrderBids(ctx context.Context, clientID user.ID, orderID string, filter params.BidFilter) ([]*entities.BidWithOrder, int, error)
}
