package eq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fssinfer/internal/detrand"
	"fssinfer/prg"
)

func newPRG(t *testing.T) *prg.AESMMO {
	t.Helper()
	p, err := prg.NewAESMMO(prg.DefaultSubkeys(2))
	assert.NoError(t, err)
	return p
}

func TestGenerateKeypairEvalOnAlpha(t *testing.T) {
	p := newPRG(t)
	seq := detrand.New(t.Name())

	alpha := seq.Uint32()
	keyA, keyB := generateKeypairForAlpha(p, alpha, seq.Seed128(), seq.Seed128(), seq.Uint32())

	outA, err := keyA.Eval(p, 0, alpha)
	assert.NoError(t, err)
	outB, err := keyB.Eval(p, 1, alpha)
	assert.NoError(t, err)

	assert.Equal(t, uint32(1), outA+outB)
}

func TestGenerateKeypairEvalOffAlpha(t *testing.T) {
	p := newPRG(t)
	seq := detrand.New(t.Name())

	alpha := seq.Uint32()
	keyA, keyB := generateKeypairForAlpha(p, alpha, seq.Seed128(), seq.Seed128(), seq.Uint32())

	for _, x := range []uint32{alpha + 1, alpha - 1, 0, 0xFFFFFFFF, alpha ^ 0x1} {
		if x == alpha {
			continue
		}
		outA, err := keyA.Eval(p, 0, x)
		assert.NoError(t, err)
		outB, err := keyB.Eval(p, 1, x)
		assert.NoError(t, err)
		assert.Equalf(t, uint32(0), outA+outB, "x=%d alpha=%d", x, alpha)
	}
}

func TestGenerateKeypairTableDriven(t *testing.T) {
	p := newPRG(t)
	seq := detrand.New(t.Name())

	cases := []struct {
		name  string
		alpha uint32
		xs    []uint32
	}{
		{"zero alpha", 0, []uint32{0, 1, 0xFFFFFFFF}},
		{"max alpha", 0xFFFFFFFF, []uint32{0xFFFFFFFF, 0, 1}},
		{"mid alpha", 0x12345678, []uint32{0x12345678, 0x12345677, 0x12345679}},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			keyA, keyB := generateKeypairForAlpha(p, c.alpha, seq.Seed128(), seq.Seed128(), seq.Uint32())
			for _, x := range c.xs {
				outA, err := keyA.Eval(p, 0, x)
				assert.NoError(t, err)
				outB, err := keyB.Eval(p, 1, x)
				assert.NoError(t, err)

				want := uint32(0)
				if x == c.alpha {
					want = 1
				}
				assert.Equalf(t, want, outA+outB, "alpha=%d x=%d", c.alpha, x)
			}
		})
	}
}

func TestGenerateKeypairRandomAlpha(t *testing.T) {
	p := newPRG(t)
	for i := 0; i < 20; i++ {
		keyA, keyB, err := GenerateKeypair(p)
		assert.NoError(t, err)

		alpha := keyA.AlphaShare + keyB.AlphaShare

		outA, err := keyA.Eval(p, 0, alpha)
		assert.NoError(t, err)
		outB, err := keyB.Eval(p, 1, alpha)
		assert.NoError(t, err)
		assert.Equal(t, uint32(1), outA+outB)

		outA, err = keyA.Eval(p, 0, alpha+1)
		assert.NoError(t, err)
		outB, err = keyB.Eval(p, 1, alpha+1)
		assert.NoError(t, err)
		assert.Equal(t, uint32(0), outA+outB)
	}
}

func TestWireRoundTrip(t *testing.T) {
	p := newPRG(t)
	keyA, _, err := GenerateKeypair(p)
	assert.NoError(t, err)

	buf := make([]byte, Len)
	assert.NoError(t, keyA.WriteTo(buf))

	got, err := ReadFrom(buf)
	assert.NoError(t, err)
	assert.Equal(t, keyA, got)
}

func TestWriteToRejectsShortBuffer(t *testing.T) {
	p := newPRG(t)
	keyA, _, err := GenerateKeypair(p)
	assert.NoError(t, err)

	err = keyA.WriteTo(make([]byte, Len-1))
	assert.Error(t, err)
}

func TestReadFromRejectsShortBuffer(t *testing.T) {
	_, err := ReadFrom(make([]byte, Len-1))
	assert.Error(t, err)
}

func TestEvalRejectsBadPartyID(t *testing.T) {
	p := newPRG(t)
	keyA, _, err := GenerateKeypair(p)
	assert.NoError(t, err)

	_, err = keyA.Eval(p, 2, 0)
	assert.Error(t, err)
}
