package catalog

import (
	"testing"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("WID-001", "Widget", 1500, 5)
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	p := createTestProduct(t)
	assert.Equal(t, "WID-001", p.Code)
	assert.True(t, p.Active)
	assert.Equal(t, int64(0), p.StockQuantity)

	_, err := NewProduct("", "Widget", 100, 0)
	assert.True(t, shared.IsValidation(err))

	_, err = NewProduct("WID-001", "", 100, 0)
	assert.True(t, shared.IsValidation(err))

	_, err = NewProduct("WID-001", "Widget", -1, 0)
	assert.True(t, shared.IsValidation(err))
}

func TestProduct_IncreaseStock(t *testing.T) {
	p := createTestProduct(t)

	require.NoError(t, p.IncreaseStock(10))
	assert.Equal(t, int64(10), p.StockQuantity)

	err := p.IncreaseStock(0)
	assert.True(t, shared.IsValidation(err))
	err = p.IncreaseStock(-3)
	assert.True(t, shared.IsValidation(err))
}

func TestProduct_DecreaseStock(t *testing.T) {
	p := createTestProduct(t)
	require.NoError(t, p.IncreaseStock(10))

	floored, err := p.DecreaseStock(4)
	require.NoError(t, err)
	assert.False(t, floored)
	assert.Equal(t, int64(6), p.StockQuantity)

	// Reversing more than recorded floors at zero instead of going negative.
	floored, err = p.DecreaseStock(9)
	require.NoError(t, err)
	assert.True(t, floored)
	assert.Equal(t, int64(0), p.StockQuantity)

	_, err = p.DecreaseStock(0)
	assert.True(t, shared.IsValidation(err))
}

func TestProduct_IsBelowMinStock(t *testing.T) {
	p := createTestProduct(t) // MinStock 5

	assert.True(t, p.IsBelowMinStock())

	require.NoError(t, p.IncreaseStock(5))
	assert.True(t, p.IsBelowMinStock())

	require.NoError(t, p.IncreaseStock(1))
	assert.False(t, p.IsBelowMinStock())
}
