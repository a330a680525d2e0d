package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/minimart-labs/minimart-platform/internal/errors"
	"github.com/minimart-labs/minimart-platform/internal/models"
	repository "github.com/minimart-labs/minimart-platform/internal/repositories"
)

type OrderService interface {
	Checkout(ctx context.Context, userID string) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*models.Order, error)
}

type orderService struct {
	orders  repository.OrderRepository
	cart    CartService
	taxRate float64
}

func NewOrderService(orders repository.OrderRepository, cart CartService, taxRate float64) OrderService {
	return &orderService{
		orders:  orders,
		cart:    cart,
		taxRate: taxRate,
	}
}

// Checkout snapshots the current cart into an order and clears the cart.
// The snapshot is the price-lock boundary: the cart reprices on every
// read, the order keeps the prices in force at checkout time. Lines whose
// product has disappeared since they were added are dropped from the
// order rather than billed at zero.
//
// The snapshot and the clear run as one atomic cart operation: a cart
// mutation racing the checkout is either billed in the order or left in
// the post-checkout cart, never silently discarded. A failed or rejected
// checkout leaves the cart intact.
func (s *orderService) Checkout(ctx context.Context, userID string) (*models.Order, error) {

	var order *models.Order

	err := s.cart.CheckoutCart(ctx, userID, func(view *models.CartView) error {

		items := make([]models.OrderItem, 0, len(view.Items))
		var subtotal float64

		for _, line := range view.Items {
			if line.Product == nil {
				continue
			}

			items = append(items, models.OrderItem{
				ProductID: line.Product.ID,
				Name:      line.Product.Name,
				UnitPrice: line.Product.Price,
				Quantity:  line.Quantity,
			})
			subtotal += line.Product.Price * float64(line.Quantity)
		}

		if len(items) == 0 {
			return apperrors.BadRequestError("Cart is empty")
		}

		tax := subtotal * s.taxRate

		order = &models.Order{
			ID:        uuid.NewString(),
			UserID:    userID,
			Items:     items,
			Subtotal:  subtotal,
			Tax:       tax,
			Total:     subtotal + tax,
			Status:    models.OrderStatusPlaced,
			CreatedAt: time.Now(),
		}

		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return apperrors.DatabaseError("Failed to create order").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {

	order, err := s.orders.GetOrderByID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundError("Order not found")
		}
		return nil, apperrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string) ([]*models.Order, error) {

	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}
