package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity_Valid(t *testing.T) {
	q, err := NewQuantity(5)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Value())
}

func TestNewQuantity_Bounds(t *testing.T) {
	q, err := NewQuantity(MinQuantity)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Value())

	q, err = NewQuantity(MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, 99, q.Value())
}

func TestNewQuantity_BelowMinimum(t *testing.T) {
	_, err := NewQuantity(0)
	assert.ErrorIs(t, err, ErrQuantityBelowMinimum)

	_, err = NewQuantity(-3)
	assert.ErrorIs(t, err, ErrQuantityBelowMinimum)
}

func TestNewQuantity_AboveMaximum(t *testing.T) {
	_, err := NewQuantity(100)
	assert.ErrorIs(t, err, ErrQuantityAboveMaximum)
}

func TestParseQuantity_Fractional(t *testing.T) {
	_, err := ParseQuantity(1.5)
	assert.ErrorIs(t, err, ErrQuantityNotInteger)
}

func TestParseQuantity_Whole(t *testing.T) {
	q, err := ParseQuantity(7)
	require.NoError(t, err)
	assert.Equal(t, 7, q.Value())
}

func TestQuantityAdd_Valid(t *testing.T) {
	a, _ := NewQuantity(40)
	b, _ := NewQuantity(59)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 99, sum.Value())
}

func TestQuantityAdd_AboveMaximum(t *testing.T) {
	a, _ := NewQuantity(50)
	b, _ := NewQuantity(50)

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrQuantityAboveMaximum)
	// No clamping: operands keep their values.
	assert.Equal(t, 50, a.Value())
	assert.Equal(t, 50, b.Value())
}
