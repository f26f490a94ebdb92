// Package fsskey declares the capability every FSS key type (EQ, LE)
// implements, so the batch driver can dispatch on op_id with a plain
// two-arm switch instead of a registry. Grounded on the teacher's
// dpf.Key/dpf.DPF interface pair, generalized from the teacher's
// big.Int/group-element evaluation to this protocol's fixed uint32
// domain and flat-buffer wire format.
package fsskey

import "fssinfer/prg"

// Key is implemented by eq.Key and le.Key.
type Key interface {
	// Eval evaluates the key on x as the given party (0 = Alice,
	// 1 = Bob), returning this party's additive share of f_alpha(x).
	Eval(p *prg.AESMMO, partyID uint8, x uint32) (uint32, error)

	// WriteTo serializes the key into buf, which must be at least
	// Len() bytes long.
	WriteTo(buf []byte) error

	// Len reports the key's fixed serialized length in bytes.
	Len() int
}
