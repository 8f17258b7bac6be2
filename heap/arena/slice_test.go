package arena

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice_GrowReturnsPreviousEnd(t *testing.T) {
	s := NewSlice(&Options{MaxSize: 64})
	assert.Equal(t, -1, s.High())
	assert.Equal(t, 0, s.Low())

	prev, err := s.Grow(16)
	require.NoError(t, err)
	assert.Equal(t, 0, prev)

	prev, err = s.Grow(32)
	require.NoError(t, err)
	assert.Equal(t, 16, prev)
	assert.Equal(t, 47, s.High())
	assert.Len(t, s.Bytes(), 48)
}

func TestSlice_ExhaustedLeavesRegionUnchanged(t *testing.T) {
	s := NewSlice(&Options{MaxSize: 32})
	_, err := s.Grow(24)
	require.NoError(t, err)

	_, err = s.Grow(16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, 23, s.High())
}

func TestSlice_NegativeGrow(t *testing.T) {
	s := NewSlice(nil)
	_, err := s.Grow(-1)
	assert.ErrorIs(t, err, ErrNegativeGrow)
	assert.Equal(t, DefaultMaxSize, s.Cap())
}

func TestSlice_RegionNeverMoves(t *testing.T) {
	s := NewSlice(&Options{MaxSize: 4096})
	_, err := s.Grow(8)
	require.NoError(t, err)
	first := &s.Bytes()[0]
	s.Bytes()[0] = 0xAB

	_, err = s.Grow(4000)
	require.NoError(t, err)
	assert.Same(t, first, &s.Bytes()[0])
	assert.Equal(t, byte(0xAB), s.Bytes()[0])
}

func TestOptions_MaxSizeClamped(t *testing.T) {
	var nilOpts *Options
	assert.Equal(t, DefaultMaxSize, nilOpts.maxSize())
	assert.Equal(t, maxArenaSize, (&Options{MaxSize: maxArenaSize + 1}).maxSize())
	assert.Equal(t, 128, (&Options{MaxSize: 128}).maxSize())
}
