package cart

// ItemForm is the write shape for one cart line.
type ItemForm struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	ColorID   *int64 `json:"color_id"`
	TalleID   *int64 `json:"talle_id"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// CreateForm creates a cart, optionally pre-filled with items. The cart and
// all its items are written in one transaction.
type CreateForm struct {
	Items []ItemForm `json:"items"`
}

// QuantityForm updates one line's quantity.
type QuantityForm struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ItemView decorates a line with its resolved product and subtotal.
type ItemView struct {
	Item
	ProductName string  `json:"product_name"`
	ColorName   string  `json:"color_name,omitempty"`
	TalleName   string  `json:"talle_name,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// View is the full cart projection.
type View struct {
	Cart
	Items []ItemView `json:"items"`
	Total float64    `json:"total"`
}
