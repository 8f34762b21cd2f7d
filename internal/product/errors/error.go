// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// Kind classifies a product error. The transport layer maps each kind to a status code.
type Kind int

const (
	// KindValidation marks a malformed create/update payload.
	KindValidation Kind = iota + 1
	// KindNotFound marks an unknown product id.
	KindNotFound
)

// String returns the error name reported to clients.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	default:
		return "Error"
	}
}

// Error is a domain error carrying its kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is a product error of the same kind,
// so errors.Is(err, ErrProductNotFound) matches any not-found error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

var ErrProductNotFound = &Error{Kind: KindNotFound, Message: "Product not found"}
var ErrInvalidProduct = &Error{Kind: KindValidation, Message: "Invalid product data format"}
