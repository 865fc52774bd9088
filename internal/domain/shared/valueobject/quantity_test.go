package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity(t *testing.T) {
	t.Run("accepts decimal quantities", func(t *testing.T) {
		q, err := NewQuantity(decimal.NewFromFloat(2.5), "kg")
		require.NoError(t, err)
		assert.Equal(t, "kg", q.Unit())
		assert.True(t, q.Amount().Equal(decimal.NewFromFloat(2.5)))
	})

	t.Run("rejects negative quantities", func(t *testing.T) {
		_, err := NewQuantity(decimal.NewFromInt(-1), "pcs")
		assert.Error(t, err)
	})
}

func TestQuantity_Add(t *testing.T) {
	a, _ := NewQuantityFromInt(10, "pcs")
	b, _ := NewQuantityFromInt(5, "pcs")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(15)))

	kg, _ := NewQuantityFromInt(5, "kg")
	_, err = a.Add(kg)
	assert.Error(t, err)
}

func TestQuantity_Subtract(t *testing.T) {
	a, _ := NewQuantityFromInt(10, "pcs")
	b, _ := NewQuantityFromInt(4, "pcs")

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(6)))

	// Plain subtraction never goes negative
	_, err = b.Subtract(a)
	assert.Error(t, err)

	// Deficit calculations use the explicit variant
	deficit, err := b.SubtractAllowNegative(a)
	require.NoError(t, err)
	assert.True(t, deficit.Amount().Equal(decimal.NewFromInt(-6)))
}

func TestQuantity_String(t *testing.T) {
	q, _ := NewQuantityFromInt(3, "box")
	assert.Equal(t, "3 box", q.String())

	bare := ZeroQuantity("")
	assert.Equal(t, "0", bare.String())
}
