package domain

import "math"

// Quantity bounds. Exposed so callers enforcing related limits (request
// validation, merge checks) reuse the same numbers.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Quantity is a per-line-item unit count, always within [MinQuantity, MaxQuantity].
type Quantity int

// NewQuantity validates a unit count.
func NewQuantity(value int) (Quantity, error) {
	if value < MinQuantity {
		return 0, newError(KindQuantityBelowMinimum, "quantity must be at least %d, got %d", MinQuantity, value)
	}
	if value > MaxQuantity {
		return 0, newError(KindQuantityAboveMaximum, "quantity must not exceed %d, got %d", MaxQuantity, value)
	}
	return Quantity(value), nil
}

// ParseQuantity validates a unit count arriving as a JSON number, which may
// carry a fractional part. Fractional values are rejected, never truncated.
func ParseQuantity(value float64) (Quantity, error) {
	if value != math.Trunc(value) {
		return 0, newError(KindQuantityNotInteger, "quantity must be a whole number, got %g", value)
	}
	return NewQuantity(int(value))
}

// Add returns the combined quantity. A sum above MaxQuantity fails rather
// than clamping; the caller decides how to surface that.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	sum := int(q) + int(o)
	if sum > MaxQuantity {
		return 0, newError(KindQuantityAboveMaximum, "combined quantity %d exceeds maximum %d", sum, MaxQuantity)
	}
	return Quantity(sum), nil
}

// Value returns the count as a plain int.
func (q Quantity) Value() int {
	return int(q)
}
