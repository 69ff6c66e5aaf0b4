package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sndev/marketplace-backend/internal/platform/apperr"
)

func TestGetByIDDecodesProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/p1", r.URL.Path)
		json.NewEncoder(w).Encode(Product{ID: "p1", Name: "Keyboard", Price: 10, SellerID: "seller-a"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/api/products", zap.NewNop())
	p, err := client.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "Keyboard", p.Name)
	require.Equal(t, 10.0, p.Price)
	require.Equal(t, "seller-a", p.SellerID)
}

func TestGetByIDMapsMissingProductToNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, zap.NewNop())
	_, err := client.GetByID(context.Background(), "ghost")
	require.True(t, apperr.IsNotFound(err))
}

func TestGetByIDMapsServerErrorToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, zap.NewNop())
	_, err := client.GetByID(context.Background(), "p1")
	require.True(t, apperr.IsUnavailable(err))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, zap.NewNop())
	for i := 0; i < 10; i++ {
		_, err := client.GetByID(context.Background(), "p1")
		require.True(t, apperr.IsUnavailable(err))
	}
	// breaker trips after five consecutive failures; later calls fail fast
	require.Equal(t, 5, hits)
}

func TestRepeatedNotFoundDoesNotTripBreaker(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, zap.NewNop())
	for i := 0; i < 10; i++ {
		_, err := client.GetByID(context.Background(), "ghost")
		require.True(t, apperr.IsNotFound(err))
	}
	require.Equal(t, 10, hits)
}
