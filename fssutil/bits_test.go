package fssutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitDecomposeIsMSBFirst(t *testing.T) {
	bits := BitDecompose(1)
	assert.Equal(t, uint8(1), bits[31])
	for i := 0; i < 31; i++ {
		assert.Equal(t, uint8(0), bits[i])
	}

	bits = BitDecompose(0x80000000)
	assert.Equal(t, uint8(1), bits[0])
	for i := 1; i < 32; i++ {
		assert.Equal(t, uint8(0), bits[i])
	}
}

func TestBitDecomposeRoundTrips(t *testing.T) {
	for _, x := range []uint32{0, 1, 0xFFFFFFFF, 0x12345678, 0xA5A5A5A5} {
		bits := BitDecompose(x)
		var got uint32
		for i := 0; i < 32; i++ {
			got = got<<1 | uint32(bits[i])
		}
		assert.Equal(t, x, got)
	}
}

func TestShareLeafSumsCorrectly(t *testing.T) {
	a, b := uint32(17), uint32(42)
	r := ShareLeaf(a, b, 1, 0)
	assert.Equal(t, b-a+1, r)

	flipped := ShareLeaf(a, b, 1, 1)
	assert.Equal(t, -(b - a + 1), flipped)
}

func TestComputeOutHonorsTauAndFlip(t *testing.T) {
	assert.Equal(t, uint32(5), ComputeOut(5, 3, 0, 0))
	assert.Equal(t, uint32(8), ComputeOut(5, 3, 1, 0))

	eight := uint32(8)
	assert.Equal(t, -eight, ComputeOut(5, 3, 1, 1))
}
