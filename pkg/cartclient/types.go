package cartclient

// The types below mirror the cart API's wire shapes. The package is
// importable from outside this module, so it cannot lean on the server's
// internal types; keep these in sync with the API's JSON.

// Product is a product document as the cart API returns it.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Stock       int64   `json:"stock"`
	Category    string  `json:"category,omitempty"`
}

// CartItemView is one cart line joined with its current product. Product
// is nil when the referenced product no longer exists; such a line
// contributes 0 to the totals.
type CartItemView struct {
	ID       string   `json:"id"`
	Product  *Product `json:"product,omitempty"`
	Quantity int      `json:"quantity"`
}

// CartView is the server's freshly repriced cart state.
type CartView struct {
	Items    []CartItemView `json:"items"`
	Subtotal float64        `json:"subtotal"`
	Tax      float64        `json:"tax"`
	Total    float64        `json:"total"`
	Count    int            `json:"count"`
}
