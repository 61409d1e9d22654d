package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{"25", Quantity(250000)},
		{"25.5", Quantity(255000)},
		{"0.0001", Quantity(1)},
		{"-3.25", Quantity(-32500)},
		{"+7", Quantity(70000)},
		{".5", Quantity(5000)},
		{" 12 ", Quantity(120000)},
		// Digits beyond the fourth are truncated, not rounded.
		{"1.99999", Quantity(19999)},
		{"2.5e2", Quantity(2500000)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuantity_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1.2.3", "12,5"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseQuantity(in)
			assert.Error(t, err)
		})
	}
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "25.5000", NewQuantityFromFloat64(25.5).String())
	assert.Equal(t, "0.0000", Quantity(0).String())
	assert.Equal(t, "-3.2500", NewQuantityFromFloat64(-3.25).String())
	// Fractional part keeps leading zeros.
	assert.Equal(t, "7.0050", Quantity(70050).String())
}

func TestQuantityArithmeticIsExact(t *testing.T) {
	// 0.1 + 0.2 is exactly 0.3 in fixed point, unlike float64.
	sum := NewQuantityFromFloat64(0.1) + NewQuantityFromFloat64(0.2)
	assert.Equal(t, NewQuantityFromFloat64(0.3), sum)

	// Repeated deduction drains stock to exactly zero.
	stock := NewQuantityFromFloat64(1)
	for i := 0; i < 10; i++ {
		stock -= NewQuantityFromFloat64(0.1)
	}
	assert.True(t, stock.IsZero())
}

func TestQuantityDecimalRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("123.4567")
	q := NewQuantityFromDecimal(d)
	assert.Equal(t, Quantity(1234567), q)
	assert.True(t, q.Decimal().Equal(d))
}

func TestQuantityJSON(t *testing.T) {
	data, err := json.Marshal(NewQuantityFromFloat64(25.5))
	require.NoError(t, err)
	assert.Equal(t, "25.5000", string(data), "quantity marshals as a plain JSON number")

	var fromNumber Quantity
	require.NoError(t, json.Unmarshal([]byte("12.25"), &fromNumber))
	assert.Equal(t, NewQuantityFromFloat64(12.25), fromNumber)

	var fromString Quantity
	require.NoError(t, json.Unmarshal([]byte(`"12.25"`), &fromString))
	assert.Equal(t, fromNumber, fromString)

	var fromNull Quantity
	require.NoError(t, json.Unmarshal([]byte("null"), &fromNull))
	assert.True(t, fromNull.IsZero())
}
