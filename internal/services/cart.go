package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/minimart-labs/minimart-platform/internal/errors"
	"github.com/minimart-labs/minimart-platform/internal/models"
	repository "github.com/minimart-labs/minimart-platform/internal/repositories"
)

// CartService owns the per-user cart: add/remove/update/read/clear plus
// server-side totals. Every returned CartView reflects exactly what was
// persisted, repriced against the current product documents.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.CartView, error)
	AddItem(ctx context.Context, userID string, req *models.AddItemRequest) (*models.CartView, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*models.CartView, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.CartView, error)
	ClearCart(ctx context.Context, userID string) error
	CheckoutCart(ctx context.Context, userID string, place func(view *models.CartView) error) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	taxRate  float64

	// Mutations are load-modify-save against a single document, so two
	// concurrent calls for the same user could both read the pre-mutation
	// state and overwrite each other. A per-user mutex held across the
	// whole cycle rules that out.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, taxRate float64) CartService {
	return &cartService{
		carts:    carts,
		products: products,
		taxRate:  taxRate,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *cartService) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()

	return l.Unlock
}

// loadOrEmpty never fails on absence: the cart is created lazily, and an
// empty cart is indistinguishable from a missing one.
func (s *cartService) loadOrEmpty(ctx context.Context, userID string) (*models.Cart, error) {

	cart, err := s.carts.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &models.Cart{UserID: userID}, nil
		}
		return nil, apperrors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID string, req *models.AddItemRequest) (*models.CartView, error) {

	if req.Quantity < 1 {
		return nil, apperrors.ValidationError("Quantity must be at least 1")
	}

	unlock := s.lockUser(userID)
	defer unlock()

	// The product check is a precondition: a rejected add leaves the
	// persisted cart unchanged.
	if _, err := s.products.GetProductByID(ctx, req.Product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundError("Product not found")
		}
		return nil, apperrors.DatabaseError("Failed to look up product").WithError(err)
	}

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	// One line per distinct product: adding an already-present product
	// increments its quantity instead of creating a duplicate.
	if i := cart.ItemByProduct(req.Product); i >= 0 {
		cart.Items[i].Quantity += req.Quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        uuid.NewString(),
			ProductID: req.Product,
			Quantity:  req.Quantity,
		})
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.DatabaseError("Failed to save cart").WithError(err)
	}

	return s.buildView(ctx, cart)
}

// RemoveItem is idempotent: removing an absent line is not an error.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID string) (*models.CartView, error) {

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	if i := cart.ItemByID(itemID); i >= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, apperrors.DatabaseError("Failed to save cart").WithError(err)
		}
	}

	return s.buildView(ctx, cart)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.CartView, error) {

	// A quantity below 1 is a removal: lines with non-positive quantity
	// are never persisted.
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := cart.ItemByID(itemID)
	if i < 0 {
		return nil, apperrors.NotFoundError("Item not found in the cart")
	}

	// Sets exactly, unlike AddItem which is additive.
	cart.Items[i].Quantity = quantity

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.DatabaseError("Failed to save cart").WithError(err)
	}

	return s.buildView(ctx, cart)
}

// ClearCart removes all lines; the cart document itself stays. Used at
// checkout completion. Idempotent.
func (s *cartService) ClearCart(ctx context.Context, userID string) error {

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return err
	}

	if len(cart.Items) == 0 {
		return nil
	}

	cart.Items = nil

	if err := s.carts.Save(ctx, cart); err != nil {
		return apperrors.DatabaseError("Failed to save cart").WithError(err)
	}

	return nil
}

// CheckoutCart snapshots the cart, hands the snapshot to place, and on
// acceptance empties the cart, all under the per-user lock. A mutation
// racing the checkout lands either fully before the snapshot or fully
// after the clear; its effect is never lost between the two. A rejected
// snapshot leaves the cart untouched.
func (s *cartService) CheckoutCart(ctx context.Context, userID string, place func(view *models.CartView) error) error {

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return err
	}

	view, err := s.buildView(ctx, cart)
	if err != nil {
		return err
	}

	if err := place(view); err != nil {
		return err
	}

	if len(cart.Items) == 0 {
		return nil
	}

	cart.Items = nil

	if err := s.carts.Save(ctx, cart); err != nil {
		return apperrors.DatabaseError("Failed to save cart").WithError(err)
	}

	return nil
}

// buildView joins each line with its current product document and derives
// the totals. The cart never stores a price: a price change reaches every
// not-yet-checked-out cart on its next read. A line whose product no
// longer exists contributes 0 instead of failing the whole computation.
func (s *cartService) buildView(ctx context.Context, cart *models.Cart) (*models.CartView, error) {

	view := &models.CartView{
		Items:   make([]models.CartItemView, 0, len(cart.Items)),
		Updated: cart.UpdatedAt,
	}

	for _, item := range cart.Items {

		product, err := s.products.GetProductByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.DatabaseError("Failed to price cart").WithError(err)
		}

		view.Items = append(view.Items, models.CartItemView{
			ID:       item.ID,
			Product:  product,
			Quantity: item.Quantity,
		})

		if product != nil {
			view.Subtotal += product.Price * float64(item.Quantity)
		}
		view.Count += item.Quantity
	}

	view.Tax = view.Subtotal * s.taxRate
	view.Total = view.Subtotal + view.Tax

	return view, nil
}
