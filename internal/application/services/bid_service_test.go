package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bidFixture struct {
	orders    *mockOrderRepo
	bids      *mockBidRepo
	users     *mockUserRepo
	notifier  *stubNotifier
	messenger *stubMessenger
	service   *BidService
}

func newBidFixture(t *testing.T) *bidFixture {
	t.Helper()

	orders := &mockOrderRepo{}
	f := &bidFixture{
		orders: orders,
		bids:   &mockBidRepo{orders: orders},
		users: &mockUserRepo{items: []*user.User{
			{ID: "client-1", Email: "client@example.com", Role: user.Client},
			{ID: "writer-1", Email: "writer1@example.com", Role: user.Writer},
			{ID: "writer-2", Email: "writer2@example.com", Role: user.Writer},
		}},
		notifier:  &stubNotifier{},
		messenger: &stubMessenger{},
	}

	service, err := NewBidService(
		f.bids, f.orders, f.users, &stubTrManager{}, f.messenger, f.notifier, logger.NewNop())
	require.NoError(t, err)
	f.service = service

	return f
}

func (f *bidFixture) addOrder(t *testing.T, id string, budget int64) *entities.Order {
	t.Helper()

	order := &entities.Order{
		ID:        id,
		ClientID:  "client-1",
		Status:    entities.OrderPending,
		Budget:    decimal.NewFromInt(budget),
		Deadline:  time.Now().Add(240 * time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.orders.CreateOrder(context.Background(), order))

	return order
}

func TestBidService_PlaceBid(t *testing.T) {
	f := newBidFixture(t)
	f.addOrder(t, "ORD-1", 100)

	bid, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: "ORD-1",
		Amount:  decimal.NewFromInt(80),
		Message: "I can do this",
	})
	require.NoError(t, err)

	assert.Equal(t, entities.BidOpen, bid.Bid.Status)
	assert.Equal(t, "ORD-1", bid.Bid.OrderID)
	assert.True(t, bid.Bid.OriginalBudget.Equal(decimal.NewFromInt(100)))

	// The bid message lands in the order's conversation and the client
	// gets notified.
	assert.True(t, contains(f.messenger.posted, "I can do this"))
	assert.Contains(t, f.notifier.kinds(), "bid_placed")
}

func TestBidService_PlaceBid_Validation(t *testing.T) {
	f := newBidFixture(t)
	f.addOrder(t, "ORD-1", 100)

	assigned := f.addOrder(t, "ORD-2", 100)
	require.NoError(t, f.orders.AssignWriter(context.Background(), assigned.ID, "writer-2"))

	cancelled := f.addOrder(t, "ORD-3", 100)
	require.NoError(t, f.orders.SetOrderStatus(context.Background(), cancelled.ID, entities.OrderCancelled))

	past := time.Now().Add(-time.Hour)
	tooLate := time.Now().Add(360 * time.Hour)

	tests := []struct {
		name    string
		writer  user.ID
		p       *params.PlaceBid
		wantErr error
	}{
		{
			name:    "own order",
			writer:  "client-1",
			p:       &params.PlaceBid{OrderID: "ORD-1", Amount: decimal.NewFromInt(10)},
			wantErr: errs.ErrForbidden,
		},
		{
			name:    "unknown order",
			writer:  "writer-1",
			p:       &params.PlaceBid{OrderID: "ORD-404", Amount: decimal.NewFromInt(10)},
			wantErr: errs.ErrNotFound,
		},
		{
			name:    "zero amount",
			writer:  "writer-1",
			p:       &params.PlaceBid{OrderID: "ORD-1", Amount: decimal.Zero},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "amount over budget",
			writer:  "writer-1",
			p:       &params.PlaceBid{OrderID: "ORD-1", Amount: decimal.NewFromInt(101)},
			wantErr: errs.ErrBudgetExceeded,
		},
		{
			name:    "proposed date in the past",
			writer:  "writer-1",
			p:       &params.PlaceBid{OrderID: "ORD-1", Amount: decimal.NewFromInt(10), ProposedDeadline: &past},
			wantErr: errs.ErrInvalidDeadline,
		},
		{
			name:    "proposed date after order deadline",
			writer:  "writer-1",
			p:       &params.PlaceBid{OrderID: "ORD-1", Amount: decimal.NewFromInt(10), ProposedDeadline: &tooLate},
			wantErr: errs.ErrInvalidDeadline,
		},
		{
			name:    "assigned order",
			writer:  "writer-1",
			p:       &params.PlaceBid{OrderID: "ORD-2", Amount: decimal.NewFromInt(10)},
			wantErr: errs.ErrAlreadyAssigned,
		},
		{
			name:    "cancelled order",
			writer:  "writer-1",
			p:       &params.PlaceBid{OrderID: "ORD-3", Amount: decimal.NewFromInt(10)},
			wantErr: errs.ErrInvalidOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.PlaceBid(context.Background(), tt.writer, tt.p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBidService_PlaceBid_Duplicate(t *testing.T) {
	f := newBidFixture(t)
	f.addOrder(t, "ORD-1", 100)

	p := &params.PlaceBid{OrderID: "ORD-1", Amount: decimal.NewFromInt(50)}

	_, err := f.service.PlaceBid(context.Background(), "writer-1", p)
	require.NoError(t, err)

	_, err = f.service.PlaceBid(context.Background(), "writer-1", p)
	assert.ErrorIs(t, err, errs.ErrDuplicateBid)

	// Another writer is still free to bid.
	_, err = f.service.PlaceBid(context.Background(), "writer-2", p)
	assert.NoError(t, err)
}

func TestBidService_UpdateBid_ResetsSubmission(t *testing.T) {
	f := newBidFixture(t)
	order := f.addOrder(t, "ORD-1", 100)

	bid, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// Client edits the order: the bid goes unconfirmed.
	_, err = f.orders.UpdateOrder(context.Background(), order)
	require.NoError(t, err)

	got, err := f.service.GetWriterBid(context.Background(), "writer-1", bid.Bid.ID)
	require.NoError(t, err)
	require.Equal(t, entities.BidUnconfirmed, got.EffectiveStatus())

	// Editing the bid resubmits it, clearing the unconfirmed state.
	newAmount := decimal.NewFromInt(60)
	updated, err := f.service.UpdateBid(context.Background(), "writer-1", &params.UpdateBid{
		BidID:  bid.Bid.ID,
		Amount: &newAmount,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.BidOpen, updated.EffectiveStatus())
	assert.True(t, updated.Bid.Amount.Equal(newAmount))
	assert.True(t, updated.Bid.SubmittedAt.After(bid.Bid.SubmittedAt))
}

func TestBidService_ConfirmBid(t *testing.T) {
	f := newBidFixture(t)
	order := f.addOrder(t, "ORD-1", 100)

	bid, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// Nothing to confirm while the order is untouched.
	_, err = f.service.ConfirmBid(context.Background(), "writer-1", bid.Bid.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)

	_, err = f.orders.UpdateOrder(context.Background(), order)
	require.NoError(t, err)

	confirmed, err := f.service.ConfirmBid(context.Background(), "writer-1", bid.Bid.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BidOpen, confirmed.EffectiveStatus())
}

func TestBidService_WithdrawBid(t *testing.T) {
	f := newBidFixture(t)
	order := f.addOrder(t, "ORD-1", 100)

	bid, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	require.NoError(t, f.service.WithdrawBid(context.Background(), "writer-1", bid.Bid.ID))

	got, err := f.service.GetWriterBid(context.Background(), "writer-1", bid.Bid.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BidCancelled, got.Bid.Status)

	// Withdrawing twice is reported, not silently absorbed.
	err = f.service.WithdrawBid(context.Background(), "writer-1", bid.Bid.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
}

func TestBidService_DecideBid_UnconfirmedBlocksAccept(t *testing.T) {
	f := newBidFixture(t)
	order := f.addOrder(t, "ORD-1", 100)

	bid, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// Client edits the order after the bid came in.
	_, err = f.orders.UpdateOrder(context.Background(), order)
	require.NoError(t, err)

	_, err = f.service.DecideBid(context.Background(), "client-1", &params.DecideBid{
		BidID: bid.Bid.ID, Action: params.ActionAccept,
	})
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)

	// The order stays open and nothing was assigned.
	got, err := f.orders.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, got.Assigned())
	assert.Equal(t, entities.OrderPending, got.Status)

	// Once the writer confirms, the accept goes through.
	_, err = f.service.ConfirmBid(context.Background(), "writer-1", bid.Bid.ID)
	require.NoError(t, err)

	decided, err := f.service.DecideBid(context.Background(), "client-1", &params.DecideBid{
		BidID: bid.Bid.ID, Action: params.ActionAccept,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.BidAccepted, decided.Bid.Status)
}

func TestBidService_DecideBid_Reject(t *testing.T) {
	f := newBidFixture(t)
	order := f.addOrder(t, "ORD-1", 100)

	bid, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	decided, err := f.service.DecideBid(context.Background(), "client-1", &params.DecideBid{
		BidID: bid.Bid.ID, Action: params.ActionReject,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.BidRejected, decided.Bid.Status)

	// Rejection never assigns the order.
	got, err := f.orders.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, got.Assigned())
	assert.Equal(t, entities.OrderPending, got.Status)

	assert.Contains(t, f.notifier.kinds(), "bid_rejected")
}

func TestBidService_DecideBid_AcceptCascade(t *testing.T) {
	f := newBidFixture(t)
	order := f.addOrder(t, "ORD-1", 100)

	winner, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	loser, err := f.service.PlaceBid(context.Background(), "writer-2", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	decided, err := f.service.DecideBid(context.Background(), "client-1", &params.DecideBid{
		BidID: winner.Bid.ID, Action: params.ActionAccept,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.BidAccepted, decided.Bid.Status)
	assert.Equal(t, user.ID("writer-1"), decided.Order.WriterID)
	assert.Equal(t, entities.OrderInProgress, decided.Order.Status)

	// Every competing open bid is rejected in the same transaction.
	got, err := f.service.GetWriterBid(context.Background(), "writer-2", loser.Bid.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BidRejected, got.Bid.Status)

	// Deciding the winner again is already processed.
	_, err = f.service.DecideBid(context.Background(), "client-1", &params.DecideBid{
		BidID: winner.Bid.ID, Action: params.ActionReject,
	})
	assert.ErrorIs(t, err, errs.ErrAlreadyProcessed)
}

func TestBidService_DecideBid_ConcurrentAccept(t *testing.T) {
	f := newBidFixture(t)
	order := f.addOrder(t, "ORD-1", 100)

	first, err := f.service.PlaceBid(context.Background(), "writer-1", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	second, err := f.service.PlaceBid(context.Background(), "writer-2", &params.PlaceBid{
		OrderID: order.ID, Amount: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	results := make([]error, 2)

	var wg sync.WaitGroup
	for i, bidID := range []string{first.Bid.ID, second.Bid.ID} {
		i, bidID := i, bidID
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.service.DecideBid(context.Background(), "client-1", &params.DecideBid{
				BidID: bidID, Action: params.ActionAccept,
			})
		}()
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, errs.ErrAlreadyAssigned), errors.Is(err, errs.ErrAlreadyProcessed):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one accept must win")
	assert.Equal(t, 1, losses)

	got, err := f.orders.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, got.Assigned())
}

func TestBidService_ListOrderBids_ForeignOrder(t *testing.T) {
	f := newBidFixture(t)
	f.addOrder(t, "ORD-1", 100)

	_, _, err := f.service.ListOrderBids(context.Background(), "writer-1", "ORD-1", params.BidFilter{})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
