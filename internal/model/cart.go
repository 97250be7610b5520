package model

// CartItemRef identifies a cart line: exactly one of DishID/SetmealID is set,
// and the flavor signature is part of the identity, so the same dish with a
// different customization is a separate line.
type CartItemRef struct {
	DishID    *int64 `json:"dish_id,omitempty"`
	SetmealID *int64 `json:"setmeal_id,omitempty"`
	Flavor    string `json:"flavor,omitempty"`
}

func (r CartItemRef) Valid() bool {
	return (r.DishID != nil) != (r.SetmealID != nil)
}

// ShoppingCartLine is transient: it exists between "add" and order
// submission, which consumes the whole cart.
type ShoppingCartLine struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	DishID    *int64  `json:"dish_id,omitempty"`
	SetmealID *int64  `json:"setmeal_id,omitempty"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Flavor    string  `json:"flavor,omitempty"`
	Amount    float64 `json:"amount"`
	Number    int     `json:"number"`
	Audit
}
