package domain

// LineItem represents a single product line in a shopping cart. Name and
// Price are captured when the item is first added and are not re-fetched
// on later merges.
type LineItem struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ImageURL     string  `json:"image_url,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// Subtotal returns price × quantity for this line.
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// Valid reports whether the line item satisfies the basic cart invariants.
// Entries loaded from the persistent store that fail this check are dropped
// rather than defaulted.
func (li LineItem) Valid() bool {
	return li.ProductID > 0 && li.Quantity >= 1 && li.Price >= 0 && li.Name != ""
}

// Total returns the sum of subtotals over all line items.
func Total(items []LineItem) float64 {
	var total float64
	for _, li := range items {
		total += li.Subtotal()
	}
	return total
}

// FindIndex returns the index of the line item with the given product ID,
// or -1 if absent. At most one line item per product ID exists in a cart.
func FindIndex(items []LineItem, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// QuantityOf returns the in-cart quantity for the given product ID, 0 if absent.
func QuantityOf(items []LineItem, productID int64) int {
	if i := FindIndex(items, productID); i >= 0 {
		return items[i].Quantity
	}
	return 0
}

// CartView is the read model returned by the cart API: the item slice plus
// derived totals and the hydration flag. Consumers must not treat an empty
// Items slice as "genuinely empty" until Hydrated is true.
type CartView struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
	Hydrated  bool       `json:"hydrated"`
}
