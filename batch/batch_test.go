package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fssinfer/eq"
	"fssinfer/le"
)

func TestKeyLenAndNumSubkeys(t *testing.T) {
	l, err := KeyLen(OpEQ)
	assert.NoError(t, err)
	assert.Equal(t, eq.Len, l)

	l, err = KeyLen(OpLE)
	assert.NoError(t, err)
	assert.Equal(t, le.Len, l)

	_, err = KeyLen(7)
	assert.Error(t, err)

	n, err := NumSubkeys(OpEQ)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = NumSubkeys(OpLE)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPartitionStreamsCoversExactlyNValues(t *testing.T) {
	for _, n := range []int{0, 1, 5, 127, 128, 129, 1000, 4096} {
		streams := partitionStreams(n)

		total := 0
		for _, s := range streams {
			assert.Greater(t, s.length, 0)
			total += s.length
		}
		assert.Equal(t, n, total)
		assert.LessOrEqual(t, len(streams), numStreams)
	}
}

func TestKeygenAndEvalRoundTripEQ(t *testing.T) {
	const n = 100
	keyLen, _ := KeyLen(OpEQ)

	keysA := make([]byte, keyLen*n)
	keysB := make([]byte, keyLen*n)
	assert.NoError(t, Keygen(keysA, keysB, n, 4, OpEQ))

	xs := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		// Recover alpha for slot i from the key pair and use it as x,
		// so every slot exercises the "equal" branch.
		ka, err := eq.ReadFrom(keysA[i*keyLen : (i+1)*keyLen])
		assert.NoError(t, err)
		kb, err := eq.ReadFrom(keysB[i*keyLen : (i+1)*keyLen])
		assert.NoError(t, err)
		alpha := ka.AlphaShare + kb.AlphaShare
		xs[i*4] = byte(alpha)
		xs[i*4+1] = byte(alpha >> 8)
		xs[i*4+2] = byte(alpha >> 16)
		xs[i*4+3] = byte(alpha >> 24)
	}

	resultsA := make([]int64, n)
	resultsB := make([]int64, n)
	assert.NoError(t, Eval(0, xs, keysA, resultsA, n, 4, OpEQ))
	assert.NoError(t, Eval(1, xs, keysB, resultsB, n, 4, OpEQ))

	for i := 0; i < n; i++ {
		sum := uint32(resultsA[i]) + uint32(resultsB[i])
		assert.Equalf(t, uint32(1), sum, "slot %d", i)
	}
}

func TestKeygenAndEvalRoundTripLE(t *testing.T) {
	const n = 50
	keyLen, _ := KeyLen(OpLE)

	keysA := make([]byte, keyLen*n)
	keysB := make([]byte, keyLen*n)
	assert.NoError(t, Keygen(keysA, keysB, n, 4, OpLE))

	xs := make([]byte, 4*n)
	alphas := make([]uint32, n)
	for i := 0; i < n; i++ {
		ka, err := le.ReadFrom(keysA[i*keyLen : (i+1)*keyLen])
		assert.NoError(t, err)
		kb, err := le.ReadFrom(keysB[i*keyLen : (i+1)*keyLen])
		assert.NoError(t, err)
		alphas[i] = ka.AlphaShare + kb.AlphaShare
		x := alphas[i]
		xs[i*4] = byte(x)
		xs[i*4+1] = byte(x >> 8)
		xs[i*4+2] = byte(x >> 16)
		xs[i*4+3] = byte(x >> 24)
	}

	resultsA := make([]int64, n)
	resultsB := make([]int64, n)
	assert.NoError(t, Eval(0, xs, keysA, resultsA, n, 4, OpLE))
	assert.NoError(t, Eval(1, xs, keysB, resultsB, n, 4, OpLE))

	for i := 0; i < n; i++ {
		sum := uint32(resultsA[i]) + uint32(resultsB[i])
		assert.Equalf(t, uint32(1), sum, "slot %d alpha=x=%d", i, alphas[i])
	}
}

func TestKeygenRejectsUndersizedBuffer(t *testing.T) {
	keyLen, _ := KeyLen(OpEQ)
	keysA := make([]byte, keyLen*10-1)
	keysB := make([]byte, keyLen*10)
	err := Keygen(keysA, keysB, 10, 2, OpEQ)
	assert.Error(t, err)
}

func TestEvalRejectsBadOpID(t *testing.T) {
	err := Eval(0, make([]byte, 4), make([]byte, 10), make([]int64, 1), 1, 1, 99)
	assert.Error(t, err)
}
