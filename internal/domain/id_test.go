package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductID_Valid(t *testing.T) {
	p, err := NewProductID("prod_A-1")
	require.NoError(t, err)
	assert.Equal(t, "prod_A-1", p.String())
}

func TestNewProductID_Trims(t *testing.T) {
	p, err := NewProductID("  sku-42  ")
	require.NoError(t, err)
	assert.Equal(t, "sku-42", p.String())
}

func TestNewProductID_Empty(t *testing.T) {
	_, err := NewProductID("   ")
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
}

func TestNewProductID_InvalidCharacters(t *testing.T) {
	_, err := NewProductID("prod/1")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestNewProductID_TooLong(t *testing.T) {
	_, err := NewProductID(strings.Repeat("a", 51))
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestNewSessionID_Valid(t *testing.T) {
	s, err := NewSessionID("sess-abc-123")
	require.NoError(t, err)
	assert.Equal(t, "sess-abc-123", s.String())
}

func TestNewSessionID_Empty(t *testing.T) {
	_, err := NewSessionID("")
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
}

func TestNewSessionID_UnderscoreRejected(t *testing.T) {
	// Session ids allow hyphens only, unlike product ids.
	_, err := NewSessionID("sess_1")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestNewSessionID_TooLong(t *testing.T) {
	_, err := NewSessionID(strings.Repeat("b", 101))
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestNewSessionID_RoundTrip(t *testing.T) {
	s, err := NewSessionID(" sess-1 ")
	require.NoError(t, err)

	again, err := NewSessionID(s.String())
	require.NoError(t, err)
	assert.Equal(t, s, again)
}
