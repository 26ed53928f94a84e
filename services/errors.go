package services

import "errors"

// Error taxonomy shared by the services. Duplicate-key collisions on
// content-addressed rows are not in it: the existing row wins and the
// operation reports success.
var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNotFound        = errors.New("not found")
	ErrMalformedRow    = errors.New("malformed batch row")
)
