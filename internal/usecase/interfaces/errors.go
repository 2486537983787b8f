package interfaces

import "errors"

// Store-level conditions every repository implementation reports with these
// sentinels so use cases can recover from them without knowing the backend.
var (
	// ErrDuplicateKey is returned when a unique constraint (email, sku,
	// idempotency key) rejects an insert.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrCartNotOpen is returned when a cart mutation targets a cart that is
	// no longer the user's open cart.
	ErrCartNotOpen = errors.New("cart is not open")
	// ErrLineQuantityExceeded is returned when an add-item would push a line
	// above AddItemCommand.MaxLineQuantity.
	ErrLineQuantityExceeded = errors.New("line quantity exceeded")
	// ErrConcurrentUpdate is returned when an optimistic write lost a race.
	ErrConcurrentUpdate = errors.New("concurrent update")
)
