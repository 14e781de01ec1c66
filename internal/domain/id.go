package domain

import (
	"regexp"
	"strings"
)

var (
	productIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,100}$`)
)

// ProductID identifies a catalog product. Wrapping the raw string makes a
// malformed identifier unrepresentable past the constructor.
type ProductID string

// NewProductID trims and validates a raw product identifier.
func NewProductID(raw string) (ProductID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", newError(KindEmptyIdentifier, "product id must not be empty")
	}
	if !productIDPattern.MatchString(trimmed) {
		return "", newError(KindInvalidIdentifier, "product id %q must be 1-50 alphanumeric, hyphen or underscore characters", trimmed)
	}
	return ProductID(trimmed), nil
}

func (p ProductID) String() string { return string(p) }

// SessionID identifies the shopper session that owns a cart.
type SessionID string

// NewSessionID trims and validates a raw session identifier.
func NewSessionID(raw string) (SessionID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", newError(KindEmptyIdentifier, "session id must not be empty")
	}
	if !sessionIDPattern.MatchString(trimmed) {
		return "", newError(KindInvalidIdentifier, "session id %q must be 1-100 alphanumeric or hyphen characters", trimmed)
	}
	return SessionID(trimmed), nil
}

func (s SessionID) String() string { return string(s) }
