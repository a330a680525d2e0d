package cartclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minimart-labs/minimart-platform/internal/models"
	"github.com/minimart-labs/minimart-platform/pkg/cartclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cartServer is a scripted cart API: it serves a mutable server-side
// view and records the requests it saw.
type cartServer struct {
	mu       sync.Mutex
	view     cartclient.CartView
	requests []*http.Request
	failWith *failure
}

type failure struct {
	status  int
	code    string
	message string
}

func newCartServer(view cartclient.CartView) *cartServer {
	return &cartServer{view: view}
}

func (s *cartServer) setView(view cartclient.CartView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
}

func (s *cartServer) failNext(status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = &failure{status: status, code: code, message: message}
}

func (s *cartServer) seen() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *cartServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.Clone(context.Background()))

	if f := s.failWith; f != nil {
		s.failWith = nil
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"code": f.code, "message": f.message},
		})
		return
	}

	if r.Method == http.MethodDelete && r.URL.Path == "/api/v1/cart" {
		s.view = cartclient.CartView{Items: []cartclient.CartItemView{}}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": s.view})
}

func productView(id, name string, price float64, quantity int) cartclient.CartItemView {
	return cartclient.CartItemView{
		ID:       "item-" + id,
		Product:  &cartclient.Product{ID: id, Name: name, Price: price},
		Quantity: quantity,
	}
}

func totals(items ...cartclient.CartItemView) cartclient.CartView {
	view := cartclient.CartView{Items: items}
	for _, item := range items {
		if item.Product != nil {
			view.Subtotal += item.Product.Price * float64(item.Quantity)
		}
		view.Count += item.Quantity
	}
	view.Total = view.Subtotal
	return view
}

func newTestClient(t *testing.T, server *cartServer, opts ...cartclient.Option) *cartclient.Client {
	t.Helper()

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	session := cartclient.Session{Token: "test-token", UserID: "user-1"}
	client := cartclient.New(context.Background(), ts.URL, session, opts...)
	t.Cleanup(client.Close)

	return client
}

func TestNew(t *testing.T) {

	t.Run("Initial Fetch Seeds The Mirror", func(t *testing.T) {
		// Arrange
		server := newCartServer(totals(productView("prod-a", "Widget", 10.0, 2)))

		// Act
		client := newTestClient(t, server)

		// Assert
		assert.Equal(t, 20.0, client.CartTotal())
		assert.Equal(t, 2, client.CartCount())
		require.Len(t, server.seen(), 1)
		assert.Equal(t, "Bearer test-token", server.seen()[0].Header.Get("Authorization"))
	})

	t.Run("Failed Initial Fetch Falls Back To Empty", func(t *testing.T) {
		// Arrange
		server := newCartServer(cartclient.CartView{})
		server.failNext(http.StatusInternalServerError, "INTERNAL_ERROR", "boom")

		// Act
		client := newTestClient(t, server)

		// Assert
		assert.Empty(t, client.Items())
		assert.Equal(t, 0.0, client.CartTotal())
		assert.Equal(t, 0, client.CartCount())
	})
}

func TestAddToCart(t *testing.T) {
	widget := &cartclient.Product{ID: "prod-a", Name: "Widget", Price: 10.0}

	t.Run("Success - Mirror Replaced, Message Names The Product", func(t *testing.T) {
		// Arrange
		server := newCartServer(cartclient.CartView{Items: []cartclient.CartItemView{}})
		client := newTestClient(t, server)
		server.setView(totals(productView("prod-a", "Widget", 10.0, 3)))

		// Act
		client.AddToCart(context.Background(), widget, 3)

		// Assert
		assert.Equal(t, "Widget added to cart", client.Message())
		assert.Equal(t, 30.0, client.CartTotal())
		assert.Equal(t, 3, client.CartCount())
		assert.False(t, client.Loading())

		// the request carried the product id and quantity
		reqs := server.seen()
		last := reqs[len(reqs)-1]
		assert.Equal(t, http.MethodPost, last.Method)
	})

	t.Run("Quantity Below One Is Sent As One", func(t *testing.T) {
		// Arrange
		type addPayload struct {
			Product  string `json:"product"`
			Quantity int    `json:"quantity"`
		}
		recorded := make(chan addPayload, 1)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				var req addPayload
				json.NewDecoder(r.Body).Decode(&req)
				recorded <- req
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": cartclient.CartView{}})
		}))
		t.Cleanup(ts.Close)

		client := cartclient.New(context.Background(), ts.URL, cartclient.Session{Token: "tok"})
		t.Cleanup(client.Close)

		// Act
		client.AddToCart(context.Background(), widget, 0)

		// Assert
		req := <-recorded
		assert.Equal(t, "prod-a", req.Product)
		assert.Equal(t, 1, req.Quantity)
	})

	t.Run("Failure - Mirror Untouched, Server Message Surfaces", func(t *testing.T) {
		// Arrange
		server := newCartServer(totals(productView("prod-a", "Widget", 10.0, 2)))
		client := newTestClient(t, server)
		server.failNext(http.StatusNotFound, "NOT_FOUND", "Product not found")

		// Act
		client.AddToCart(context.Background(), &cartclient.Product{ID: "prod-x", Name: "Ghost"}, 1)

		// Assert
		assert.Equal(t, "Product not found", client.Message())
		assert.Equal(t, 20.0, client.CartTotal())
		assert.Equal(t, 2, client.CartCount())
	})

	t.Run("Failure - Undecodable Error Uses The Fallback Message", func(t *testing.T) {
		// Arrange
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				http.Error(w, "bad gateway", http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": cartclient.CartView{}})
		}))
		t.Cleanup(ts.Close)

		client := cartclient.New(context.Background(), ts.URL, cartclient.Session{Token: "tok"})
		t.Cleanup(client.Close)

		// Act
		client.AddToCart(context.Background(), widget, 1)

		// Assert
		assert.Equal(t, "Failed to add item", client.Message())
	})
}

func TestRemoveFromCart(t *testing.T) {

	t.Run("Success", func(t *testing.T) {
		// Arrange
		server := newCartServer(totals(productView("prod-a", "Widget", 10.0, 2)))
		client := newTestClient(t, server)
		server.setView(totals())

		// Act
		client.RemoveFromCart(context.Background(), "item-prod-a")

		// Assert
		assert.Equal(t, "Item removed from cart", client.Message())
		assert.Empty(t, client.Items())

		reqs := server.seen()
		last := reqs[len(reqs)-1]
		assert.Equal(t, http.MethodDelete, last.Method)
		assert.True(t, strings.HasSuffix(last.URL.Path, "/api/v1/cart/item-prod-a"))
	})
}

func TestUpdateQuantity(t *testing.T) {

	t.Run("Success", func(t *testing.T) {
		// Arrange
		server := newCartServer(totals(productView("prod-a", "Widget", 10.0, 2)))
		client := newTestClient(t, server)
		server.setView(totals(productView("prod-a", "Widget", 10.0, 5)))

		// Act
		client.UpdateQuantity(context.Background(), "item-prod-a", 5)

		// Assert
		assert.Equal(t, "Cart updated", client.Message())
		assert.Equal(t, 5, client.CartCount())
		assert.Equal(t, 50.0, client.CartTotal())
	})
}

func TestClearCart(t *testing.T) {

	t.Run("Success - Empties The Mirror Without A Message", func(t *testing.T) {
		// Arrange
		server := newCartServer(totals(productView("prod-a", "Widget", 10.0, 2)))
		client := newTestClient(t, server)

		// Act
		client.ClearCart(context.Background())

		// Assert
		assert.Empty(t, client.Items())
		assert.Equal(t, 0.0, client.CartTotal())
		assert.Empty(t, client.Message())
	})
}

func TestRefresh(t *testing.T) {

	t.Run("Replaces The Mirror", func(t *testing.T) {
		// Arrange
		server := newCartServer(cartclient.CartView{Items: []cartclient.CartItemView{}})
		client := newTestClient(t, server)
		server.setView(totals(productView("prod-a", "Widget", 10.0, 4)))

		// Act
		client.Refresh(context.Background())

		// Assert
		assert.Equal(t, 4, client.CartCount())
	})

	t.Run("Failure Keeps The Previous Mirror", func(t *testing.T) {
		// Arrange
		server := newCartServer(totals(productView("prod-a", "Widget", 10.0, 2)))
		client := newTestClient(t, server)
		server.failNext(http.StatusInternalServerError, "INTERNAL_ERROR", "boom")

		// Act
		client.Refresh(context.Background())

		// Assert
		assert.Equal(t, 2, client.CartCount())
	})
}

func TestMessageLifecycle(t *testing.T) {
	widget := &cartclient.Product{ID: "prod-a", Name: "Widget", Price: 10.0}

	t.Run("Message Clears After The TTL", func(t *testing.T) {
		// Arrange
		server := newCartServer(cartclient.CartView{Items: []cartclient.CartItemView{}})
		client := newTestClient(t, server, cartclient.WithMessageTTL(30*time.Millisecond))

		// Act
		client.AddToCart(context.Background(), widget, 1)
		require.NotEmpty(t, client.Message())

		// Assert
		assert.Eventually(t, func() bool {
			return client.Message() == ""
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("A New Message Restarts The Clock", func(t *testing.T) {
		// Arrange
		server := newCartServer(cartclient.CartView{Items: []cartclient.CartItemView{}})
		client := newTestClient(t, server, cartclient.WithMessageTTL(250*time.Millisecond))

		// Act
		client.AddToCart(context.Background(), widget, 1)
		time.Sleep(150 * time.Millisecond)
		client.UpdateQuantity(context.Background(), "item-prod-a", 2)

		// Assert: past the first message's deadline, the second still shows
		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, "Cart updated", client.Message())

		assert.Eventually(t, func() bool {
			return client.Message() == ""
		}, time.Second, 5*time.Millisecond)
	})
}

// The package mirrors the server's wire shapes instead of importing its
// internal types; this pins the mirror to the server's actual JSON.
func TestViewTypesMatchServerWireFormat(t *testing.T) {
	serverView := models.CartView{
		Items: []models.CartItemView{
			{
				ID:       "item-1",
				Product:  &models.Product{ID: "prod-a", Name: "Widget", Price: 10.0, Stock: 3, Category: "tools"},
				Quantity: 2,
			},
			{ID: "item-2", Quantity: 1},
		},
		Subtotal: 20.0,
		Tax:      2.0,
		Total:    22.0,
		Count:    3,
	}

	raw, err := json.Marshal(serverView)
	require.NoError(t, err)

	var clientView cartclient.CartView
	require.NoError(t, json.Unmarshal(raw, &clientView))

	require.Len(t, clientView.Items, 2)
	assert.Equal(t, "item-1", clientView.Items[0].ID)
	require.NotNil(t, clientView.Items[0].Product)
	assert.Equal(t, "Widget", clientView.Items[0].Product.Name)
	assert.Equal(t, 10.0, clientView.Items[0].Product.Price)
	assert.Equal(t, int64(3), clientView.Items[0].Product.Stock)
	assert.Nil(t, clientView.Items[1].Product)
	assert.Equal(t, 20.0, clientView.Subtotal)
	assert.Equal(t, 2.0, clientView.Tax)
	assert.Equal(t, 22.0, clientView.Total)
	assert.Equal(t, 3, clientView.Count)
}
