// Package cartclient is the consumer-side adapter for the cart API. It
// attaches the session credential to every call, keeps a local mirror of
// the server cart, and exposes the transient status message and derived
// aggregates presentation code binds to.
//
// The mirror is a disposable cache: every mutating call replaces it
// wholesale with the server's response. When overlapping calls are in
// flight the last response to arrive wins, which is not necessarily the
// last request issued; callers that need strict ordering must serialize
// their own calls.
package cartclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultMessageTTL = 3 * time.Second

// Session carries the credential and identity established at login. It
// is injected explicitly: the adapter never reads ambient storage. Create
// one per login, drop it at logout.
type Session struct {
	Token  string
	UserID string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithMessageTTL overrides how long a status message stays before the
// clear timer fires.
func WithMessageTTL(d time.Duration) Option {
	return func(c *Client) {
		c.messageTTL = d
	}
}

type Client struct {
	baseURL    string
	session    Session
	http       *http.Client
	messageTTL time.Duration

	mu       sync.Mutex
	cart     CartView
	message  string
	msgGen   uint64
	msgTimer *time.Timer
	loading  bool
}

// New builds the adapter and fetches the cart once. A failed initial
// fetch falls back to an empty mirror: read failures are non-fatal to
// page load.
func New(ctx context.Context, baseURL string, session Session, opts ...Option) *Client {

	c := &Client{
		baseURL:    baseURL,
		session:    session,
		messageTTL: defaultMessageTTL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if cart, err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil); err == nil {
		c.mu.Lock()
		c.cart = *cart
		c.mu.Unlock()
	}

	return c
}

// AddToCart adds quantity units of product to the cart. A quantity below
// 1 defaults to 1. The outcome is surfaced as state, never returned: on
// success the mirror is replaced and a message names the product, on
// failure the mirror is left untouched and the message carries the
// server's explanation or a generic fallback.
func (c *Client) AddToCart(ctx context.Context, product *Product, quantity int) {

	if quantity < 1 {
		quantity = 1
	}

	c.setLoading(true)
	defer c.setLoading(false)

	body := addItemRequest{Product: product.ID, Quantity: quantity}

	cart, err := c.do(ctx, http.MethodPost, "/api/v1/cart", body)
	if err != nil {
		c.fail(err, "Failed to add item")
		return
	}

	c.replaceMirror(cart, fmt.Sprintf("%s added to cart", product.Name))
}

// RemoveFromCart removes the line with itemID. Removal of an absent line
// succeeds on the server, so calling this twice is harmless.
func (c *Client) RemoveFromCart(ctx context.Context, itemID string) {

	c.setLoading(true)
	defer c.setLoading(false)

	cart, err := c.do(ctx, http.MethodDelete, "/api/v1/cart/"+itemID, nil)
	if err != nil {
		c.fail(err, "Failed to remove item")
		return
	}

	c.replaceMirror(cart, "Item removed from cart")
}

// UpdateQuantity sets the line's quantity to exactly quantity. Callers
// are expected to invoke RemoveFromCart instead when the new quantity
// would drop below 1; that policy lives in the caller, not here.
func (c *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) {

	c.setLoading(true)
	defer c.setLoading(false)

	body := updateQuantityRequest{Quantity: quantity}

	cart, err := c.do(ctx, http.MethodPut, "/api/v1/cart/"+itemID, body)
	if err != nil {
		c.fail(err, "Failed to update quantity")
		return
	}

	c.replaceMirror(cart, "Cart updated")
}

// ClearCart empties the cart, as at checkout completion.
func (c *Client) ClearCart(ctx context.Context) {

	c.setLoading(true)
	defer c.setLoading(false)

	req, err := c.newRequest(ctx, http.MethodDelete, "/api/v1/cart", nil)
	if err != nil {
		c.fail(err, "Failed to clear cart")
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.fail(err, "Failed to clear cart")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		c.fail(decodeError(resp), "Failed to clear cart")
		return
	}

	c.replaceMirror(&CartView{Items: []CartItemView{}}, "")
}

// Refresh re-fetches the cart and replaces the mirror. Errors are
// absorbed; the mirror keeps its previous state.
func (c *Client) Refresh(ctx context.Context) {

	cart, err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.cart = *cart
	c.mu.Unlock()
}

// Items returns a copy of the mirrored cart lines.
func (c *Client) Items() []CartItemView {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]CartItemView, len(c.cart.Items))
	copy(items, c.cart.Items)

	return items
}

// CartTotal is recomputed from the mirror on every access: the sum of
// current price times quantity over all lines, 0 for an empty cart.
// Lines whose product is unknown contribute 0.
func (c *Client) CartTotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.cart.Items {
		if item.Product != nil {
			total += item.Product.Price * float64(item.Quantity)
		}
	}

	return total
}

// CartCount is the sum of line quantities.
func (c *Client) CartCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	for _, item := range c.cart.Items {
		count += item.Quantity
	}

	return count
}

// Message returns the current transient status message, empty once the
// clear timer has fired.
func (c *Client) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.message
}

// Loading reports whether a mutating call is in flight. Presentation
// code is expected to disable mutating controls while true.
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loading
}

// Close stops the pending message-clear timer, if any.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.msgTimer != nil {
		c.msgTimer.Stop()
		c.msgTimer = nil
	}
}

func (c *Client) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *Client) replaceMirror(cart *CartView, message string) {
	c.mu.Lock()
	c.cart = *cart
	c.mu.Unlock()

	if message != "" {
		c.setMessage(message)
	}
}

func (c *Client) fail(err error, fallback string) {
	msg := fallback
	if apiErr, ok := err.(*APIError); ok && apiErr.Message != "" {
		msg = apiErr.Message
	}

	c.setMessage(msg)
}

// setMessage installs msg and schedules its clearing. There is one timer:
// each new message cancels the prior pending clear, and a stale timer
// that already fired concurrently is ignored via the generation counter.
func (c *Client) setMessage(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.msgTimer != nil {
		c.msgTimer.Stop()
	}

	c.message = msg
	c.msgGen++
	gen := c.msgGen

	c.msgTimer = time.AfterFunc(c.messageTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.msgGen == gen {
			c.message = ""
		}
	})
}
