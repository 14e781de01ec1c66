package domain

import "fmt"

// Kind identifies a domain rule violation. The set is closed: callers map
// kinds to transport responses with errors.Is against the matcher values
// below instead of inspecting concrete types.
type Kind string

const (
	// Money
	KindInvalidAmount    Kind = "INVALID_AMOUNT"
	KindCurrencyMismatch Kind = "CURRENCY_MISMATCH"
	KindNegativeResult   Kind = "NEGATIVE_RESULT"
	KindInvalidFactor    Kind = "INVALID_QUANTITY"
	KindUnknownCurrency  Kind = "UNKNOWN_CURRENCY"

	// Quantity
	KindQuantityNotInteger   Kind = "QUANTITY_NOT_INTEGER"
	KindQuantityBelowMinimum Kind = "QUANTITY_BELOW_MINIMUM"
	KindQuantityAboveMaximum Kind = "QUANTITY_ABOVE_MAXIMUM"

	// Identifiers and names
	KindEmptyIdentifier   Kind = "EMPTY_IDENTIFIER"
	KindInvalidIdentifier Kind = "INVALID_IDENTIFIER"
	KindEmptyName         Kind = "EMPTY_NAME"

	// Cart aggregate
	KindMaxItemsExceeded      Kind = "MAX_ITEMS_EXCEEDED"
	KindCartNotActive         Kind = "CART_NOT_ACTIVE"
	KindCartAlreadyCheckedOut Kind = "CART_ALREADY_CHECKED_OUT"
	KindEmptyCart             Kind = "EMPTY_CART"
	KindItemNotFound          Kind = "ITEM_NOT_FOUND"

	// Checkout result
	KindCartNotCheckedOut Kind = "CART_NOT_CHECKED_OUT"
	KindInvalidTaxRate    Kind = "INVALID_TAX_RATE"
)

// Error is the single error type raised by the domain. It carries a kind for
// programmatic matching and a human-readable message with enough context
// (session id, item id, limit) to surface verbatim to a caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Is matches any *Error with the same kind, so
// errors.Is(err, domain.ErrItemNotFound) works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Matcher values for errors.Is. Messages are intentionally empty; only the
// kind participates in matching.
var (
	ErrInvalidAmount    = &Error{Kind: KindInvalidAmount}
	ErrCurrencyMismatch = &Error{Kind: KindCurrencyMismatch}
	ErrNegativeResult   = &Error{Kind: KindNegativeResult}
	ErrInvalidFactor    = &Error{Kind: KindInvalidFactor}
	ErrUnknownCurrency  = &Error{Kind: KindUnknownCurrency}

	ErrQuantityNotInteger   = &Error{Kind: KindQuantityNotInteger}
	ErrQuantityBelowMinimum = &Error{Kind: KindQuantityBelowMinimum}
	ErrQuantityAboveMaximum = &Error{Kind: KindQuantityAboveMaximum}

	ErrEmptyIdentifier   = &Error{Kind: KindEmptyIdentifier}
	ErrInvalidIdentifier = &Error{Kind: KindInvalidIdentifier}
	ErrEmptyName         = &Error{Kind: KindEmptyName}

	ErrMaxItemsExceeded      = &Error{Kind: KindMaxItemsExceeded}
	ErrCartNotActive         = &Error{Kind: KindCartNotActive}
	ErrCartAlreadyCheckedOut = &Error{Kind: KindCartAlreadyCheckedOut}
	ErrEmptyCart             = &Error{Kind: KindEmptyCart}
	ErrItemNotFound          = &Error{Kind: KindItemNotFound}

	ErrCartNotCheckedOut = &Error{Kind: KindCartNotCheckedOut}
	ErrInvalidTaxRate    = &Error{Kind: KindInvalidTaxRate}
)
