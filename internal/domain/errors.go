package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuantity indicates a quantity outside the allowed range
	// (quantities must be positive; removal is a distinct operation).
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrProductRequired indicates a cart mutation without a product id.
	ErrProductRequired = errors.New("productId required")

	// ErrUnauthenticated indicates a request without a valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
)
