package collaborators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/config"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Pricer is the HTTP client of the pricing service.
type Pricer struct {
	client *http.Client
	logger logger.Logger
	addr   string
}

func NewPricer(config *config.Config, logger logger.Logger) (*Pricer, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}

	return &Pricer{
		client: &http.Client{Timeout: config.Collaborators.Timeout},
		logger: logger,
		addr:   config.Collaborators.PricingAddr,
	}, nil
}

var _ interfaces.Pricer = (*Pricer)(nil)

func (p *Pricer) MinimumPrice(ctx context.Context, category, orderType string, pages int, deadline, now time.Time) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("category", category)
	query.Set("type", orderType)
	query.Set("pages", strconv.Itoa(pages))
	query.Set("deadline", deadline.Format(time.RFC3339))

	addr := fmt.Sprintf("%s/api/pricing/minimum?%s", p.addr, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return decimal.Zero, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decimal.Zero, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	payload := struct {
		MinimumPrice decimal.Decimal `json:"minimum_price"`
	}{}

	if err = json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return decimal.Zero, err
	}

	return payload.MinimumPrice, nil
}
