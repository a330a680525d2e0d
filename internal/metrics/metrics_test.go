package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/v1/cart/0b1f9c2e-item", "/api/v1/cart/{itemId}"},
		{"/api/v1/products/42", "/api/v1/products/{id}"},
		{"/api/v1/orders/42", "/api/v1/orders/{id}"},
		{"/api/v1/cart", "/api/v1/cart"},
		{"/api/v1/products", "/api/v1/products"},
		{"/api/v1/users/login", "/api/v1/users/login"},
		{"/health", "/health"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizePath(tc.path), tc.path)
	}
}

func TestMiddlewareCollapsesIdentifierSegments(t *testing.T) {
	// Arrange
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("200", http.MethodDelete, "/api/v1/cart/{itemId}"))

	// Act: two requests for distinct items must land on one label set
	for _, item := range []string{"item-1", "item-2"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/"+item, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	// Assert
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("200", http.MethodDelete, "/api/v1/cart/{itemId}"))
	assert.Equal(t, 2.0, after-before)
}
