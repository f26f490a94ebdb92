package prg

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// AESMMO is a length-doubling (or length-k-tupling) PRG: a fixed set of
// keyed AES-128 instances, each applied to the same seed in
// Matyas-Meyer-Oseas mode. It is a pure function of (subkeys, seed) — the
// same subkeys always expand a given seed to the same output, which is
// the property both parties rely on to walk the tree identically on the
// kept path.
type AESMMO struct {
	ciphers []cipher.Block
}

// NewAESMMO builds one AES-128 cipher per subkey. DPF/EQ evaluation uses
// two subkeys (length-doubling); DIF/LE uses three (two seed halves plus
// a packed value/control block).
func NewAESMMO(subkeys []Seed128) (*AESMMO, error) {
	if len(subkeys) == 0 {
		return nil, fmt.Errorf("prg: NewAESMMO requires at least one subkey")
	}
	ciphers := make([]cipher.Block, len(subkeys))
	for i, k := range subkeys {
		block, err := aes.NewCipher(k[:])
		if err != nil {
			return nil, fmt.Errorf("prg: building AES-128 cipher for subkey %d: %w", i, err)
		}
		ciphers[i] = block
	}
	return &AESMMO{ciphers: ciphers}, nil
}

// NumSubkeys reports k, the number of 128-bit blocks Expand returns.
func (p *AESMMO) NumSubkeys() int {
	return len(p.ciphers)
}

// Expand applies every subkey cipher to seed in MMO mode and returns the
// k resulting blocks: output[i] = E_i(seed) XOR seed.
func (p *AESMMO) Expand(seed Seed128) []Seed128 {
	out := make([]Seed128, len(p.ciphers))
	var ct Seed128
	for i, c := range p.ciphers {
		c.Encrypt(ct[:], seed[:])
		out[i] = ct.XOR(seed)
	}
	return out
}

// DefaultSubkeys implements the deterministic subkey scheme from the
// protocol contract: subkey[i] = i, as a little-endian 128-bit value.
//
// This does not hide alpha across batches generated with the same
// subkey set — it is sufficient for the DPF/DIF protocol itself (keygen
// and eval only need to agree on the same subkeys), but a production
// deployment that wants batches to be indistinguishable from each other
// should derive subkeys from a system RNG instead. This module keeps the
// fixed scheme deliberately, per the protocol note that flags it as
// implementer-defined-but-fixed rather than silently swapping it out.
func DefaultSubkeys(k int) []Seed128 {
	subkeys := make([]Seed128, k)
	for i := range subkeys {
		subkeys[i] = SeedFromUint32(uint32(i))
	}
	return subkeys
}
