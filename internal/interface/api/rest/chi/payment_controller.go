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

type PaymentController struct {
	service interfaces.PaymentService
}

// NewPaymentController registers http.Handlers with additional options.
func NewPaymentController(service interfaces.PaymentService, options ChiServerOptions) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := PaymentController{
		service: service,
	}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Get(options.BaseURL+"/balance", c.GetBalance)
		r.Get(options.BaseURL+"/transactions", c.ListTransactions)
		r.Get(options.BaseURL+"/withdrawals", c.ListWithdrawals)
		r.Post(options.BaseURL+"/withdrawals", c.CreateWithdrawal)
		r.Get(options.BaseURL+"/payment-methods", c.ListPaymentMethods)
		r.Post(options.BaseURL+"/payment-methods", c.AddPaymentMethod)
		r.Patch(options.BaseURL+"/payment-methods/{methodID}", c.UpdatePaymentMethod)
		r.Patch(options.BaseURL+"/payment-methods/{methodID}/default", c.SetDefaultPaymentMethod)
		r.Get(options.BaseURL+"/admin/withdrawals", c.ListAllWithdrawals)
		r.Patch(options.BaseURL+"/admin/withdrawals/{txnID}/approve", c.ApproveWithdrawal)
		r.Patch(options.BaseURL+"/admin/withdrawals/{txnID}/reject", c.RejectWithdrawal)
	})
}

// Get the caller's balance (GET /api/v1/balance HTTP/1.1).
func (c *PaymentController) GetBalance(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	balance, err := c.service.GetBalance(r.Context(), u.ID)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetBalance(balance)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List the caller's transactions (GET /api/v1/transactions HTTP/1.1).
func (c *PaymentController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	txns, total, err := c.service.ListTransactions(r.Context(), u.ID, filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetTransactions(txns), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List the caller's withdrawals (GET /api/v1/withdrawals HTTP/1.1).
func (c *PaymentController) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	txns, total, err := c.service.ListWithdrawals(r.Context(), u.ID, filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetTransactions(txns), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Request a withdrawal (POST /api/v1/withdrawals HTTP/1.1).
func (c *PaymentController) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
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

	var payload request.CreateWithdrawal

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	txn, err := c.service.CreateWithdrawal(r.Context(), u.ID, &params.CreateWithdrawal{
		Amount:  payload.Amount,
		Method:  payload.Method,
		Details: payload.Details,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)

	if err = json.NewEncoder(w).Encode(response.NewGetTransaction(txn)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List the caller's payment methods (GET /api/v1/payment-methods HTTP/1.1).
func (c *PaymentController) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	methods, err := c.service.ListPaymentMethods(r.Context(), u.ID)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetPaymentMethods(methods)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Register a payout destination (POST /api/v1/payment-methods HTTP/1.1).
func (c *PaymentController) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
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

	var payload request.AddPaymentMethod

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	method, err := c.service.AddPaymentMethod(r.Context(), u.ID, &params.AddPaymentMethod{
		Method:    payload.Method,
		Details:   payload.Details,
		IsDefault: payload.IsDefault,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)

	if err = json.NewEncoder(w).Encode(response.NewGetPaymentMethod(method)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Update a payout destination
// (PATCH /api/v1/payment-methods/{methodID} HTTP/1.1).
func (c *PaymentController) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
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

	var payload request.UpdatePaymentMethod

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	err := c.service.UpdatePaymentMethodDetails(r.Context(), u.ID, chi.URLParam(r, "methodID"), payload.Details)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Make a payout destination the default
// (PATCH /api/v1/payment-methods/{methodID}/default HTTP/1.1).
func (c *PaymentController) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	err := c.service.SetDefaultPaymentMethod(r.Context(), u.ID, chi.URLParam(r, "methodID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List pending withdrawals across users
// (GET /api/v1/admin/withdrawals HTTP/1.1).
func (c *PaymentController) ListAllWithdrawals(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	txns, total, err := c.service.ListAllWithdrawals(r.Context(), u, filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetTransactions(txns), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Approve a pending withdrawal
// (PATCH /api/v1/admin/withdrawals/{txnID}/approve HTTP/1.1).
func (c *PaymentController) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	txn, err := c.service.ApproveWithdrawal(r.Context(), u, chi.URLParam(r, "txnID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetTransaction(txn)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Reject a pending withdrawal
// (PATCH /api/v1/admin/withdrawals/{txnID}/reject HTTP/1.1).
func (c *PaymentController) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
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

	var payload request.RejectWithdrawal

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	txn, err := c.service.RejectWithdrawal(r.Context(), u, chi.URLParam(r, "txnID"), payload.Reason)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetTransaction(txn)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func (c *PaymentController) ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrInvalidOperation):
		code = http.StatusBadRequest

	// Status Forbidden (403).
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Unprocessable Entity (422).
	case errors.Is(err, errs.ErrValidation):
		code = http.StatusUnprocessableEntity
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
