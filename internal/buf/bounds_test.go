package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	assert.True(t, ok)
	assert.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	assert.False(t, ok, "overflow past MaxInt")
	_, ok = AddOverflowSafe(math.MinInt, -1)
	assert.False(t, ok, "underflow past MinInt")
}

func TestMulOverflowSafe(t *testing.T) {
	tests := []struct {
		a, b int
		want int
		ok   bool
	}{
		{0, 5, 0, true},
		{7, 0, 0, true},
		{16, 4, 64, true},
		{math.MaxInt, 1, math.MaxInt, true},
		{math.MaxInt/2 + 1, 2, 0, false},
		{-1, 4, 0, false},
		{4, -1, 0, false},
	}
	for _, tt := range tests {
		got, ok := MulOverflowSafe(tt.a, tt.b)
		assert.Equal(t, tt.ok, ok, "%d*%d", tt.a, tt.b)
		assert.Equal(t, tt.want, got, "%d*%d", tt.a, tt.b)
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	got, ok := Slice(data, 1, 3)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Slice(data, 4, 2)
	assert.False(t, ok, "past end")
	_, ok = Slice(data, -1, 1)
	assert.False(t, ok, "negative offset")
	_, ok = Slice(data, 1, math.MaxInt)
	assert.False(t, ok, "overflowing length")

	assert.True(t, Has(data, 0, 5))
	assert.True(t, Has(data, 5, 0))
	assert.False(t, Has(data, 3, 3))
}
