package evaluations

import "errors"

var (
	// ErrNotFound indicates no evaluation snapshot exists for the product.
	ErrNotFound = errors.New("not found")
)
