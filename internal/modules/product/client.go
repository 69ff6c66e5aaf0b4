package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sndev/marketplace-backend/internal/platform/apperr"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Client resolves products from the remote product service.
type Client interface {
	// GetByID fetches a single product. Returns a NotFound error for an
	// unknown id and Unavailable when the service cannot be reached.
	GetByID(ctx context.Context, productID string) (*Product, error)
}

type httpClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewHTTPClient creates a product client against the given base URL
// (e.g. http://product-service:8081/api/products). Calls run behind a
// circuit breaker so a dead product service fails fast instead of
// tying up request goroutines.
func NewHTTPClient(baseURL string, logger *zap.Logger) Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "product-service",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a 404 is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || apperr.IsNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		breaker: cb,
		logger:  logger,
	}
}

func (c *httpClient) GetByID(ctx context.Context, productID string) (*Product, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, productID)
	})
	if err != nil {
		if apperr.KindOf(err) != 0 {
			return nil, err
		}
		// breaker open or transport failure
		return nil, apperr.Wrap(apperr.KindUnavailable, err,
			fmt.Sprintf("product service unreachable for product %s", productID))
	}
	return res.(*Product), nil
}

func (c *httpClient) fetch(ctx context.Context, productID string) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+productID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// a missing product is a caller problem, not a breaker-worthy failure
		return nil, apperr.Newf(apperr.KindNotFound, "product not found: %s", productID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("product service returned %d for product %s", resp.StatusCode, productID)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", productID, err)
	}
	if p.ID == "" {
		p.ID = productID
	}
	return &p, nil
}
