package domain

import "time"

// Product is a catalog entry. The cart denormalizes Name, PriceCents and
// ImageURL into a line item at add time, so later catalog edits do not touch
// existing carts.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LineItemFrom builds a cart line for this product with the given quantity.
func (p Product) LineItemFrom(quantity int) LineItem {
	return LineItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.PriceCents,
		ImageURL:  p.ImageURL,
		Quantity:  quantity,
	}
}
