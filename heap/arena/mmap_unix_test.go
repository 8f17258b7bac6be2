//go:build linux || darwin

package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmap_GrowAndWrite(t *testing.T) {
	m, err := NewMmap(&Options{MaxSize: 1 << 20})
	require.NoError(t, err)
	defer m.Close()

	prev, err := m.Grow(8192)
	require.NoError(t, err)
	assert.Equal(t, 0, prev)

	data := m.Bytes()
	require.Len(t, data, 8192)
	for i := range data {
		assert.Zero(t, data[i], "fresh anonymous pages must be zeroed")
		if i > 64 {
			break
		}
	}
	data[8191] = 0x5A

	prev, err = m.Grow(4096)
	require.NoError(t, err)
	assert.Equal(t, 8192, prev)
	assert.Equal(t, byte(0x5A), m.Bytes()[8191])
	assert.Equal(t, 12287, m.High())
}

func TestMmap_Exhausted(t *testing.T) {
	m, err := NewMmap(&Options{MaxSize: 4096})
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Grow(4097)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, -1, m.High())
}

func TestMmap_CloseIsIdempotent(t *testing.T) {
	m, err := NewMmap(&Options{MaxSize: 4096})
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.Grow(8)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, m.Bytes())
}
