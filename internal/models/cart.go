package models

import "time"

// CartItem is one line in a user's cart. It references the product, it
// never copies the price: totals are always recomputed from the current
// product document, so price changes propagate to open carts.
type CartItem struct {
	ID        string `bson:"id" json:"id"`
	ProductID string `bson:"product_id" json:"product_id"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// Cart is the persisted document, one per user, created lazily on first
// read or add. Invariants: at most one item per distinct product, and no
// item with quantity below 1.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// ItemByProduct returns the index of the line referencing productID, or -1.
func (c *Cart) ItemByProduct(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}

	return -1
}

// ItemByID returns the index of the line with the given line id, or -1.
func (c *Cart) ItemByID(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}

	return -1
}

// CartItemView is a cart line joined with its current product document.
// Product is nil when the referenced product no longer exists; such a
// line contributes 0 to the subtotal.
type CartItemView struct {
	ID       string   `json:"id"`
	Product  *Product `json:"product,omitempty"`
	Quantity int      `json:"quantity"`
}

// CartView is what every cart operation returns: the full, freshly
// repriced state of the persisted cart.
type CartView struct {
	Items    []CartItemView `json:"items"`
	Subtotal float64        `json:"subtotal"`
	Tax      float64        `json:"tax"`
	Total    float64        `json:"total"`
	Count    int            `json:"count"`
	Updated  time.Time      `json:"updated_at,omitzero"`
}

type AddItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
