package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SizeClass_Boundaries(t *testing.T) {
	tests := []struct {
		size uint32
		want int
	}{
		{16, 0},
		{24, 1},
		{32, 1},
		{33, 2},
		{64, 2},
		{65, 3},
		{128, 3},
		{4096, 8},
		{8192, 9},
		{8193, 10},
		{16384, 10},
		{16385, 11},
		{1 << 24, 11},
		{0xFFFFFFF8, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sizeClass(tt.size), "size %d", tt.size)
	}
}

func Test_SizeClass_MonotonicAndWithinLimit(t *testing.T) {
	prev := 0
	for size := uint32(16); size <= 1<<16; size += 8 {
		c := sizeClass(size)
		if c < prev {
			t.Fatalf("class dropped from %d to %d at size %d", prev, c, size)
		}
		if size > classLimit(c) {
			t.Fatalf("size %d exceeds limit %d of class %d", size, classLimit(c), c)
		}
		if c > 0 && size <= classLimit(c-1) {
			t.Fatalf("size %d fits class %d but mapped to %d", size, c-1, c)
		}
		prev = c
	}
	assert.Equal(t, numClasses-1, prev)
}

func Test_BlockSize(t *testing.T) {
	assert.Equal(t, 16, BlockSize(0))
	assert.Equal(t, 16, BlockSize(1))
	assert.Equal(t, 16, BlockSize(12))
	assert.Equal(t, 24, BlockSize(13))
	assert.Equal(t, 32, BlockSize(24))
	assert.Equal(t, 4008, BlockSize(4000))
}
