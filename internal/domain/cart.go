package domain

// LineItem is one product entry in a cart. Name, UnitPrice and ImageURL are
// denormalized copies taken from the product at the time the line was added.
// The JSON keys match the persisted/wire format shared by the local cart file
// and the cart API.
type LineItem struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	ImageURL  string `json:"image"`
	Quantity  int    `json:"quantity"`
}

// Cart is an ordered list of line items. Order is insertion order; lines are
// never re-sorted.
type Cart struct {
	Items []LineItem `json:"items"`
}

// TotalCents sums quantity-weighted unit prices over all lines.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// TotalQuantity sums the quantities of all lines.
func (c Cart) TotalQuantity() int {
	var total int
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// FindLine returns the index of the line with the given product id, or -1.
func FindLine(items []LineItem, productID string) int {
	for i, item := range items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

// AddLine merges a line into items: if a line with the same product id exists
// its quantity is incremented, otherwise the line is appended. The input slice
// is left unmodified.
func AddLine(items []LineItem, line LineItem) []LineItem {
	out := make([]LineItem, len(items), len(items)+1)
	copy(out, items)
	if i := FindLine(out, line.ID); i >= 0 {
		out[i].Quantity += line.Quantity
		return out
	}
	return append(out, line)
}
