package service

import "errors"

var (
	// Validation failures, reported to the caller.
	ErrInvalidAddress  = errors.New("address book entry does not exist")
	ErrEmptyCart       = errors.New("shopping cart is empty")
	ErrInvalidCartItem = errors.New("cart item must reference exactly one of dish or setmeal")
	ErrUnknownProduct  = errors.New("product does not exist")

	// ErrAlreadyPaid is a conflict: the provider reports the order settled,
	// so no new payment handle is issued.
	ErrAlreadyPaid = errors.New("order already paid")

	// ErrUnknownOrder covers payment callbacks for numbers we never issued.
	// The callback handler logs it and acknowledges the provider anyway.
	ErrUnknownOrder = errors.New("unknown order")

	ErrInvalidCredentials = errors.New("invalid login or password")
)
