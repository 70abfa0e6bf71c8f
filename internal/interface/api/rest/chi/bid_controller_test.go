package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBidService returns canned results and records the params the
// controller passed down.
type mockBidService struct {
	bid        *entities.BidWithOrder
	err        error
	lastPlace  *params.PlaceBid
	lastDecide *params.DecideBid
}

func (m *mockBidService) PlaceBid(_ context.Context, _ user.ID, p *params.PlaceBid) (*entities.BidWithOrder, error) {
	m.lastPlace = p
	return m.bid, m.err
}

func (m *mockBidService) UpdateBid(_ context.Context, _ user.ID, _ *params.UpdateBid) (*entities.BidWithOrder, error) {
	return m.bid, m.err
}

func (m *mockBidService) ConfirmBid(_ context.Context, _ user.ID, _ string) (*entities.BidWithOrder, error) {
	return m.bid, m.err
}

func (m *mockBidService) WithdrawBid(_ context.Context, _ user.ID, _ string) error {
	return m.err
}

func (m *mockBidService) DecideBid(_ context.Context, _ user.ID, p *params.DecideBid) (*entities.BidWithOrder, error) {
	m.lastDecide = p
	return m.bid, m.err
}

func (m *mockBidService) GetWriterBid(_ context.Context, _ user.ID, _ string) (*entities.BidWithOrder, error) {
	return m.bid, m.err
}

func (m *mockBidService) ListWriterBids(_ context.Context, _ user.ID, _ params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return []*entities.BidWithOrder{m.bid}, 1, nil
}

func (m *mockBidService) ListClientBids(_ context.Context, _ user.ID, _ params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return []*entities.BidWithOrder{m.bid}, 1, nil
}

func (m *mockBidService) ListOrderBids(_ context.Context, _ user.ID, _ string, _ params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return []*entities.BidWithOrder{m.bid}, 1, nil
}

func testBidWithOrder() *entities.BidWithOrder {
	order := entities.NewOrder("client-1")
	order.Title = "Essay"
	order.Budget = decimal.NewFromInt(100)
	order.Deadline = time.Now().Add(240 * time.Hour)

	return &entities.BidWithOrder{
		Bid:   entities.NewBid(order, "writer-1", decimal.NewFromInt(50), "hi", nil),
		Order: order,
	}
}

func asUser(r *http.Request, u *user.User) *http.Request {
	return r.WithContext(user.NewContext(r.Context(), u))
}

func TestPlaceBidHandler(t *testing.T) {
	path := "/api/v1/orders/ORD-1/bids"
	writer := &user.User{ID: "writer-1", Role: user.Writer}

	type want struct {
		response   string
		statusCode int
	}

	tests := []struct {
		name        string
		caller      *user.User
		contentType string
		payload     io.Reader
		serviceErr  error
		want        want
		wantErr     bool
	}{
		{
			name:        "OK",
			caller:      writer,
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":50,"message":"hi"}`),
			want: want{
				statusCode: http.StatusCreated,
			},
		},
		{
			name:        "clients cannot bid",
			caller:      &user.User{ID: "client-1", Role: user.Client},
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":50}`),
			want: want{
				statusCode: http.StatusForbidden,
				response:   fmt.Sprintf("%s: only writers place bids", errs.ErrForbidden),
			},
			wantErr: true,
		},
		{
			name:        "invalid content type",
			caller:      writer,
			contentType: "text/plain",
			payload:     strings.NewReader(""),
			want: want{
				statusCode: http.StatusUnprocessableEntity,
				response:   fmt.Sprintf("%s: invalid content type", errs.ErrValidation),
			},
			wantErr: true,
		},
		{
			name:        "empty body",
			caller:      writer,
			contentType: "application/json",
			payload:     strings.NewReader(""),
			want: want{
				statusCode: http.StatusUnprocessableEntity,
				response:   fmt.Sprintf("%s: empty body", errs.ErrValidation),
			},
			wantErr: true,
		},
		{
			name:        "order already assigned",
			caller:      writer,
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":50}`),
			serviceErr:  errs.ErrAlreadyAssigned,
			want: want{
				statusCode: http.StatusConflict,
				response:   errs.ErrAlreadyAssigned.Error(),
			},
			wantErr: true,
		},
		{
			name:        "bid over budget",
			caller:      writer,
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":500}`),
			serviceErr:  errs.ErrBudgetExceeded,
			want: want{
				statusCode: http.StatusUnprocessableEntity,
				response:   errs.ErrBudgetExceeded.Error(),
			},
			wantErr: true,
		},
		{
			name:        "duplicate open bid",
			caller:      writer,
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":50}`),
			serviceErr:  errs.ErrDuplicateBid,
			want: want{
				statusCode: http.StatusBadRequest,
				response:   errs.ErrDuplicateBid.Error(),
			},
			wantErr: true,
		},
		{
			name:        "order not found",
			caller:      writer,
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":50}`),
			serviceErr:  errs.ErrNotFound,
			want: want{
				statusCode: http.StatusNotFound,
				response:   errs.ErrNotFound.Error(),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, tt.payload)
			r.Header.Set("Content-Type", tt.contentType)
			r = asUser(r, tt.caller)

			w := httptest.NewRecorder()

			c := BidController{service: &mockBidService{bid: testBidWithOrder(), err: tt.serviceErr}}
			c.PlaceBid(w, r)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err := json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			r.Body.Close()
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			if tt.wantErr {
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")
			}
		})
	}
}

func TestPlaceBidHandler_Unauthorized(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/orders/ORD-1/bids", http.NoBody)
	w := httptest.NewRecorder()

	c := BidController{service: &mockBidService{}}
	c.PlaceBid(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestDecideBidHandler(t *testing.T) {
	path := "/api/v1/client/bids/BID-1/status"
	client := &user.User{ID: "client-1", Role: user.Client}

	type want struct {
		response   string
		statusCode int
		action     params.DecideAction
	}

	tests := []struct {
		name       string
		payload    io.Reader
		serviceErr error
		want       want
		wantErr    bool
	}{
		{
			name:    "accepted",
			payload: strings.NewReader(`{"status":"accepted"}`),
			want:    want{statusCode: http.StatusOK, action: params.ActionAccept},
		},
		{
			name:    "accept alias",
			payload: strings.NewReader(`{"status":"accept"}`),
			want:    want{statusCode: http.StatusOK, action: params.ActionAccept},
		},
		{
			name:    "rejected",
			payload: strings.NewReader(`{"status":"rejected"}`),
			want:    want{statusCode: http.StatusOK, action: params.ActionReject},
		},
		{
			name:    "declined alias",
			payload: strings.NewReader(`{"status":"declined"}`),
			want:    want{statusCode: http.StatusOK, action: params.ActionReject},
		},
		{
			name:    "unknown status",
			payload: strings.NewReader(`{"status":"maybe"}`),
			want: want{
				statusCode: http.StatusUnprocessableEntity,
				response:   fmt.Sprintf(`%s: unknown status "maybe"`, errs.ErrValidation),
			},
			wantErr: true,
		},
		{
			name:       "order already assigned to another writer",
			payload:    strings.NewReader(`{"status":"accepted"}`),
			serviceErr: errs.ErrAlreadyAssigned,
			want: want{
				statusCode: http.StatusConflict,
				response:   errs.ErrAlreadyAssigned.Error(),
			},
			wantErr: true,
		},
		{
			name:       "bid already processed",
			payload:    strings.NewReader(`{"status":"accepted"}`),
			serviceErr: errs.ErrAlreadyProcessed,
			want: want{
				statusCode: http.StatusBadRequest,
				response:   errs.ErrAlreadyProcessed.Error(),
			},
			wantErr: true,
		},
		{
			name:       "foreign bid",
			payload:    strings.NewReader(`{"status":"accepted"}`),
			serviceErr: errs.ErrNotFound,
			want: want{
				statusCode: http.StatusNotFound,
				response:   errs.ErrNotFound.Error(),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPut, path, tt.payload)
			r.Header.Set("Content-Type", "application/json")
			r = asUser(r, client)

			w := httptest.NewRecorder()

			service := &mockBidService{bid: testBidWithOrder(), err: tt.serviceErr}
			c := BidController{service: service}
			c.DecideBid(w, r)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err := json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			r.Body.Close()
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			switch {
			case tt.wantErr:
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")

			default:
				require.NotNil(t, service.lastDecide, "service was not called")
				assert.Equal(t, tt.want.action, service.lastDecide.Action, "action mismatch")
			}
		})
	}
}

func TestWithdrawBidHandler(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/bids/BID-1", http.NoBody)
	r = asUser(r, &user.User{ID: "writer-1", Role: user.Writer})

	w := httptest.NewRecorder()

	c := BidController{service: &mockBidService{}}
	c.WithdrawBid(w, r)

	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode)
}

func TestListBidsHandler(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/bids?page=1&limit=10", http.NoBody)
	r = asUser(r, &user.User{ID: "writer-1", Role: user.Writer})

	w := httptest.NewRecorder()

	c := BidController{service: &mockBidService{bid: testBidWithOrder()}}
	c.ListBids(w, r)

	res := w.Result()
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var page struct {
		Items []struct {
			Status entities.BidStatus `json:"status"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entities.BidOpen, page.Items[0].Status)
}

// Malformed date filters are rejected, not silently dropped.
func TestListBidsHandler_BadDateFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/bids?from=yesterday", http.NoBody)
	r = asUser(r, &user.User{ID: "writer-1", Role: user.Writer})

	w := httptest.NewRecorder()

	c := BidController{service: &mockBidService{bid: testBidWithOrder()}}
	c.ListBids(w, r)

	res := w.Result()
	defer res.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	errorResponse := new(errs.JSON)
	require.NoError(t, json.NewDecoder(res.Body).Decode(errorResponse))
	assert.Equal(t, "validation error: from must be an RFC 3339 timestamp", errorResponse.Error)
}

// The status in every bid payload is the derived one: a bid whose order
// was edited after submission comes back unconfirmed even though the
// stored status is still open.
func TestGetBidHandler_DerivedStatus(t *testing.T) {
	bwo := testBidWithOrder()
	edited := bwo.Bid.SubmittedAt.Add(time.Minute)
	bwo.Order.UpdatedAt = &edited

	r := httptest.NewRequest(http.MethodGet, "/api/v1/bids/BID-1", http.NoBody)
	r = asUser(r, &user.User{ID: "writer-1", Role: user.Writer})

	w := httptest.NewRecorder()

	c := BidController{service: &mockBidService{bid: bwo}}
	c.GetBid(w, r)

	res := w.Result()
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Status entities.BidStatus `json:"status"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, entities.BidUnconfirmed, body.Status)
	assert.Equal(t, entities.BidOpen, bwo.Bid.Status, "stored status must not change")
}
