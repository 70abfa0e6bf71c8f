package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
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

type OrderController struct {
	service interfaces.OrderService
}

// NewOrderController registers http.Handlers with additional options.
func NewOrderController(service interfaces.OrderService, options ChiServerOptions) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := OrderController{
		service: service,
	}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/orders", c.CreateOrder)
		r.Get(options.BaseURL+"/orders", c.ListOrders)
		r.Get(options.BaseURL+"/available-orders", c.ListAvailableOrders)
		r.Get(options.BaseURL+"/orders/{orderID}", c.GetOrder)
		r.Patch(options.BaseURL+"/orders/{orderID}", c.UpdateOrder)
		r.Post(options.BaseURL+"/orders/{orderID}/cancel", c.CancelOrder)
		r.Post(options.BaseURL+"/orders/{orderID}/complete", c.CompleteOrder)
		r.Get(options.BaseURL+"/orders/{orderID}/attachments", c.ListAttachments)
		r.Post(options.BaseURL+"/orders/{orderID}/attachments", c.AddAttachment)
		r.Delete(options.BaseURL+"/orders/{orderID}/attachments/{filename}", c.RemoveAttachment)
		r.Post(options.BaseURL+"/orders/pricing/preview", c.PreviewPricing)
	})
}

// Post a new order (POST /api/v1/orders HTTP/1.1).
func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if u.Role != user.Client {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: only clients post orders", errs.ErrForbidden))
		return
	}

	if !header.IsApplicationJSONContentType(r) {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: invalid content type", errs.ErrValidation))
		return
	}

	defer r.Body.Close()

	var payload request.CreateOrder

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	order, err := c.service.CreateOrder(r.Context(), u.ID, &params.CreateOrder{
		Title:           payload.Title,
		Subject:         payload.Subject,
		Type:            payload.Type,
		Pages:           payload.Pages,
		Deadline:        payload.Deadline,
		Budget:          payload.Budget,
		Description:     payload.Description,
		Requirements:    payload.Requirements,
		AdditionalNotes: payload.AdditionalNotes,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)

	if err = json.NewEncoder(w).Encode(response.NewGetOrder(order)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Get a single order (GET /api/v1/orders/{orderID} HTTP/1.1).
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	order, err := c.service.GetOrder(r.Context(), u, chi.URLParam(r, "orderID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetOrder(order)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List the caller's orders (GET /api/v1/orders HTTP/1.1).
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := orderFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	orders, total, err := c.service.ListOrders(r.Context(), u, filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetOrders(orders), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List orders open for bidding (GET /api/v1/available-orders HTTP/1.1).
func (c *OrderController) ListAvailableOrders(w http.ResponseWriter, r *http.Request) {
	if _, found := user.FromContext(r.Context()); !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter, err := orderFilterFromQuery(r)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	orders, total, err := c.service.ListAvailableOrders(r.Context(), filter)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := response.NewPage(response.NewGetOrders(orders), total, filter.Page)

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Edit an unassigned order (PATCH /api/v1/orders/{orderID} HTTP/1.1).
func (c *OrderController) UpdateOrder(w http.ResponseWriter, r *http.Request) {
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

	var payload request.UpdateOrder

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	order, err := c.service.UpdateOrder(r.Context(), u.ID, &params.UpdateOrder{
		OrderID:         chi.URLParam(r, "orderID"),
		Title:           payload.Title,
		Subject:         payload.Subject,
		Type:            payload.Type,
		Pages:           payload.Pages,
		Deadline:        payload.Deadline,
		Budget:          payload.Budget,
		Description:     payload.Description,
		Requirements:    payload.Requirements,
		AdditionalNotes: payload.AdditionalNotes,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetOrder(order)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Cancel an order (POST /api/v1/orders/{orderID}/cancel HTTP/1.1).
func (c *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// The reason is optional for unassigned orders, so an empty body
	// is acceptable here.
	var payload request.CancelOrder

	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	order, err := c.service.CancelOrder(r.Context(), u.ID, chi.URLParam(r, "orderID"), payload.Reason)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetOrder(order)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Complete an order (POST /api/v1/orders/{orderID}/complete HTTP/1.1).
func (c *OrderController) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	order, err := c.service.CompleteOrder(r.Context(), u.ID, chi.URLParam(r, "orderID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.NewGetOrder(order)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Attach a file to an order
// (POST /api/v1/orders/{orderID}/attachments HTTP/1.1).
func (c *OrderController) AddAttachment(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	file, fh, err := r.FormFile("file")
	if err != nil {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: file form field is required", errs.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	err = c.service.AddAttachment(r.Context(), u.ID, chi.URLParam(r, "orderID"), fh.Filename, data)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// List an order's attachments
// (GET /api/v1/orders/{orderID}/attachments HTTP/1.1).
func (c *OrderController) ListAttachments(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	files, err := c.service.ListAttachments(r.Context(), u, chi.URLParam(r, "orderID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.GetAttachments{Files: files}); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Remove an attachment
// (DELETE /api/v1/orders/{orderID}/attachments/{filename} HTTP/1.1).
func (c *OrderController) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	err := c.service.RemoveAttachment(r.Context(), u.ID,
		chi.URLParam(r, "orderID"), chi.URLParam(r, "filename"))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Preview the minimum price (POST /api/v1/orders/pricing/preview HTTP/1.1).
func (c *OrderController) PreviewPricing(w http.ResponseWriter, r *http.Request) {
	if _, found := user.FromContext(r.Context()); !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if !header.IsApplicationJSONContentType(r) {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("%w: invalid content type", errs.ErrValidation))
		return
	}

	defer r.Body.Close()

	var payload request.PricingPreview

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}

	minimum, err := c.service.PreviewPricing(r.Context(), &params.PricingQuery{
		Category:  payload.Category,
		OrderType: payload.Type,
		Pages:     payload.Pages,
		Deadline:  payload.Deadline,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(response.PricingPreview{MinimumPrice: minimum}); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func (c *OrderController) ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidOperation),
		errors.Is(err, errs.ErrBudgetExceeded):
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
		errors.Is(err, errs.ErrInvalidDeadline):
		code = http.StatusUnprocessableEntity
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
