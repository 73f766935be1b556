package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), EUR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, EUR, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoney_Add(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		a := NewMoneyEURFromFloat(10.50)
		b := NewMoneyEURFromFloat(5.25)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(15.75)))
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		a := NewMoneyEURFromFloat(10)
		b, _ := NewMoney(decimal.NewFromInt(10), USD)

		_, err := a.Add(b)
		assert.Error(t, err)
	})
}

func TestMoney_Subtract(t *testing.T) {
	a := NewMoneyEURFromFloat(10)
	b := NewMoneyEURFromFloat(4)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(6)))
}

func TestMoney_Multiply(t *testing.T) {
	m := NewMoneyEURFromFloat(100)
	result := m.Multiply(decimal.NewFromFloat(0.2))
	assert.True(t, result.Amount().Equal(decimal.NewFromInt(20)))
}

func TestMoney_MultiplyKeepsFullPrecision(t *testing.T) {
	// 0.1 * 0.3 must not round inside the value object
	m, err := NewMoneyEURFromString("0.1")
	require.NoError(t, err)
	result := m.Multiply(decimal.RequireFromString("0.3"))
	assert.Equal(t, "0.03", result.Amount().String())
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyEURFromFloat(1)
	big := NewMoneyEURFromFloat(2)

	less, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, greater)

	assert.True(t, small.Equals(NewMoneyEURFromFloat(1)))
	assert.False(t, small.Equals(big))
}

func TestMoney_ZeroAndSigns(t *testing.T) {
	assert.True(t, ZeroEUR().IsZero())
	assert.True(t, NewMoneyEURFromFloat(1).IsPositive())
	assert.True(t, NewMoneyEURFromFloat(-1).IsNegative())
	assert.True(t, NewMoneyEURFromFloat(1).Negate().IsNegative())
}

func TestMoney_String(t *testing.T) {
	m := NewMoneyEURFromFloat(1234.5)
	assert.Equal(t, "1234.50 EUR", m.String())
	assert.Equal(t, "1234.500", m.StringFixed(3))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyEURFromFloat(99.99)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("42.50"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(42.50)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(42))
	})
}
