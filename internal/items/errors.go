package items

import "errors"

var (
	// ErrNotFound is returned when the referenced item does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrValidation is returned for malformed input: an empty name, an
	// unresolvable parent folder, or an unknown item kind.
	ErrValidation = errors.New("validation failed")
)
