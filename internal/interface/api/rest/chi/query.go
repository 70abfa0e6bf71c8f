package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
)

func pageFromQuery(r *http.Request) params.Page {
	number, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	return params.NewPage(number, limit)
}

func timeFromQuery(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", errs.ErrValidation, name)
	}

	return &t, nil
}

func floatFromQuery(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", errs.ErrValidation, name)
	}

	return &f, nil
}

func bidFilterFromQuery(r *http.Request) (params.BidFilter, error) {
	from, err := timeFromQuery(r, "from")
	if err != nil {
		return params.BidFilter{}, err
	}
	to, err := timeFromQuery(r, "to")
	if err != nil {
		return params.BidFilter{}, err
	}

	return params.BidFilter{
		From:   from,
		To:     to,
		Status: r.URL.Query().Get("status"),
		Page:   pageFromQuery(r),
	}, nil
}

func orderFilterFromQuery(r *http.Request) (params.OrderFilter, error) {
	min, err := floatFromQuery(r, "min_budget")
	if err != nil {
		return params.OrderFilter{}, err
	}
	max, err := floatFromQuery(r, "max_budget")
	if err != nil {
		return params.OrderFilter{}, err
	}

	return params.OrderFilter{
		MinBudget:    min,
		MaxBudget:    max,
		Status:       r.URL.Query().Get("status"),
		Search:       r.URL.Query().Get("search"),
		Subject:      r.URL.Query().Get("subject"),
		AssignedOnly: r.URL.Query().Get("assigned") == "true",
		Page:         pageFromQuery(r),
	}, nil
}

func transactionFilterFromQuery(r *http.Request) (params.TransactionFilter, error) {
	from, err := timeFromQuery(r, "from")
	if err != nil {
		return params.TransactionFilter{}, err
	}
	to, err := timeFromQuery(r, "to")
	if err != nil {
		return params.TransactionFilter{}, err
	}

	return params.TransactionFilter{
		From:   from,
		To:     to,
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
		Page:   pageFromQuery(r),
	}, nil
}
