package domain

// Product is the catalog view consumed by the stock-aware add operation.
// Stock is the authoritative available quantity at lookup time.
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	Category     string  `json:"category,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// LineItem converts the product into a cart line with the given quantity,
// carrying over the display hints fetched from the catalog.
func (p Product) LineItem(quantity int) LineItem {
	return LineItem{
		ProductID:    p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Quantity:     quantity,
		ImageURL:     p.ImageURL,
		ThumbnailURL: p.ThumbnailURL,
	}
}
