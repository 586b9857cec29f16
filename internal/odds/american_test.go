package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid(100))
	assert.True(t, Valid(-100))
	assert.True(t, Valid(-110))
	assert.True(t, Valid(250))
	assert.False(t, Valid(0))
	assert.False(t, Valid(99))
	assert.False(t, Valid(-99))
	assert.False(t, Valid(50))
}

func TestDecimal(t *testing.T) {
	assert.InDelta(t, 2.50, Decimal(150), 1e-9)
	assert.InDelta(t, 2.00, Decimal(100), 1e-9)
	assert.InDelta(t, 2.00, Decimal(-100), 1e-9)
	assert.InDelta(t, 1.9090909, Decimal(-110), 1e-6)
	assert.InDelta(t, 1.50, Decimal(-200), 1e-9)
}

func TestCents(t *testing.T) {
	// +100 e -100 são o mesmo preço (even money)
	assert.Equal(t, 0, Cents(100))
	assert.Equal(t, 0, Cents(-100))
	assert.Equal(t, 50, Cents(150))
	assert.Equal(t, -10, Cents(-110))
	assert.Equal(t, -100, Cents(-200))
}

func TestCentsWorse(t *testing.T) {
	t.Run("igual ou melhor retorna zero", func(t *testing.T) {
		assert.Equal(t, 0, CentsWorse(-110, -110))
		assert.Equal(t, 0, CentsWorse(150, 120))
		assert.Equal(t, 0, CentsWorse(-105, -110))
	})

	t.Run("pior no mesmo lado", func(t *testing.T) {
		assert.Equal(t, 10, CentsWorse(-120, -110))
		assert.Equal(t, 30, CentsWorse(120, 150))
	})

	t.Run("atravessa o limite de even money", func(t *testing.T) {
		assert.Equal(t, 5, CentsWorse(-105, 100))
		assert.Equal(t, 10, CentsWorse(-105, 105))
	})
}

func TestBetter(t *testing.T) {
	assert.True(t, Better(150, 140))
	assert.True(t, Better(-105, -110))
	assert.True(t, Better(105, -105))
	assert.False(t, Better(100, -100))
	assert.False(t, Better(-120, -110))
}
