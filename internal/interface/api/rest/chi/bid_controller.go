package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/interface/api/rest/header"
	"github.com/Stephen-Muteti/writing-backend/internal/interface/api/rest/request"
	"github.com/Stephen-Muteti/writing-backend/internal/interface/api/rest/response"
	"github.com/go-chi/chi/v5"
)

type BidController struct {
	service interfaces.BidService
}

// NewBidController registers http.Handlers with additional options.
func NewBidController(service interfaces.BidService, options ChiServerOptions) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := BidController{
		service: service,
	}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Get(options.BaseURL+"/bids", c.ListBids)
		r.Get(options.BaseURL+"/bids/{bidID}", c.GetBid)
		r.Post(options.BaseURL+"/orders/{orderID}/bids", c.PlaceBid)
		r.Put(options.BaseURL+"/bids/{bidID}", c.UpdateBid)
		r.Put(options.BaseURL+"/bids/{bidID}/confirm", c.ConfirmBid)
		r.Delete(options.BaseURL+"/bids/{bidID}", c.WithdrawBid)
		r.Get(options.BaseURL+"/client/bids", c.ListReceivedBids)
		r.Get(options.BaseURL+"/client/orders/{orderID}/bids", c.ListOrderBids)
		r.Put(options.BaseURL+"/client/bids/{bidID}/status", c.DecideBid)
	})
}

// Place a bid on an order (POST /api/v1/orders/{orderID}/bids HTTP/1.1).
func (c *BidController) PlaceBid(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if u.Role != user.Writer {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: only writers place bids", errs.ErrForbidden))
		return
	}

	if !header.IsApplicationJSONContentType(r) {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: invalid content type", errs.ErrValidation))
		return
	}

	defer r.Body.Close()

	var payload request.PlaceBid

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	bid, err := c.service.PlaceBid(r.Context(), u.ID, &params.PlaceBid{
		OrderID:          chi.URLParam(r, "orderID"),
		Amount:           payload.Amount,
		Message:          payload.Message,
		ProposedDeadline: payload.ProposedCompletionDate,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)

	if err = json.NewEncoder(w).Encode(response.NewGetBid(bid)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Get one of the writer's own bids (GET /api/v1/bids/{bidID} HTTP/1.1).
func (c *BidController) GetBid(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	bid, err := c.service.GetWriterBid(r.Context(), u.ID, chi.URLParam(r, "bidID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetBid(bid)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List the writer's bids (GET /api/v1/bids HTTP/1.1).
func (c *BidController) ListBids(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := bidFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	bids, total, err := c.service.ListWriterBids(r.Context(), u.ID, filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetBids(bids), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Update an open bid (PUT /api/v1/bids/{bidID} HTTP/1.1).
func (c *BidController) UpdateBid(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if !header.IsApplicationJSONContentType(r) {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: invalid content type", errs.ErrValidation))
		return
	}

	defer r.Body.Close()

	var payload request.UpdateBid

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	bid, err := c.service.UpdateBid(r.Context(), u.ID, &params.UpdateBid{
		BidID:   chi.URLParam(r, "bidID"),
		Amount:  payload.Amount,
		Message: payload.Message,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetBid(bid)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Re-confirm an unconfirmed bid (PUT /api/v1/bids/{bidID}/confirm HTTP/1.1).
func (c *BidController) ConfirmBid(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	bid, err := c.service.ConfirmBid(r.Context(), u.ID, chi.URLParam(r, "bidID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetBid(bid)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Withdraw a bid (DELETE /api/v1/bids/{bidID} HTTP/1.1).
func (c *BidController) WithdrawBid(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := c.service.WithdrawBid(r.Context(), u.ID, chi.URLParam(r, "bidID")); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List bids received on the client's orders (GET /api/v1/client/bids HTTP/1.1).
func (c *BidController) ListReceivedBids(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := bidFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	bids, total, err := c.service.ListClientBids(r.Context(), u.ID, filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetBids(bids), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List bids on one of the client's orders
// (GET /api/v1/client/orders/{orderID}/bids HTTP/1.1).
func (c *BidController) ListOrderBids(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := bidFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	bids, total, err := c.service.ListOrderBids(r.Context(), u.ID, chi.URLParam(r, "orderID"), filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetBids(bids), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Accept or reject a bid (PUT /api/v1/client/bids/{bidID}/status HTTP/1.1).
func (c *BidController) DecideBid(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if !header.IsApplicationJSONContentType(r) {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: invalid content type", errs.ErrValidation))
		return
	}

	defer r.Body.Close()

	var payload request.DecideBid

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	var action params.DecideAction

	switch payload.Status {
	case "accepted", "accept":
		action = params.ActionAccept
	case "rejected", "reject", "declined":
		action = params.ActionReject
	default:
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: unknown status %q", errs.ErrValidation, payload.Status))
		return
	}

	bid, err := c.service.DecideBid(r.Context(), u.ID, &params.DecideBid{
		BidID:  chi.URLParam(r, "bidID"),
		Action: action,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetBid(bid)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func (c *BidController) ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidOperation),
		errors.Is(err, errs.ErrAlreadyProcessed),
		errors.Is(err, errs.ErrDuplicateBid):
		code = http.StatusBadRequest

	// Status Forbidden (403).
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Conflict (409).
	case errors.Is(err, errs.ErrAlreadyAssigned):
		code = http.StatusConflict

	// Status Unprocessable Entity (422).
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrBudgetExceeded),
		errors.Is(err, errs.ErrInvalidDeadline):
		code = http.StatusUnprocessableEntity
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
