// Package le implements the Distributed Interval Function (DIF) used for
// the less-or-equal predicate f_alpha(x) = [x <= alpha]. It shares the
// tree shape and per-level correction-word loop of package eq (in turn
// grounded on the teacher's dpf/2018_boyle_optimization/optreedpf.go),
// widened to a richer per-level correction word: two seed halves, two
// 32-bit value masks, and four control bits, carried in 3 PRG output
// blocks instead of eq's 2.
package le

import (
	"fmt"

	"fssinfer/fssutil"
	"fssinfer/prg"
)

// Len is the fixed serialized length of an LE key, in bytes.
const Len = 4 + prg.SeedLen + fssutil.NumLevels*(prg.SeedLen+4+4) + (fssutil.NumLevels+1)*4

// CompressedCW is one level's correction word in its compressed,
// wire-ready form: a single value correction z (taken from the branch
// selected by alpha's bit at this level) and a single seed correction s
// (taken from the other branch); decompress copies each into both the
// left and right slots. All four control-bit corrections are carried
// uncompressed since they cost nothing to store directly.
type CompressedCW struct {
	TL, TR byte
	UL, UR byte
	Z      uint32
	S      prg.Seed128
}

// Key is one party's share of an LE (DIF) key pair.
type Key struct {
	AlphaShare uint32
	S          prg.Seed128
	CW         [fssutil.NumLevels]CompressedCW
	CWLeaf     [fssutil.NumLevels + 1]uint32
}

// Len reports the fixed serialized key length.
func (k Key) Len() int { return Len }

// word is the decompressed, in-memory form of one level's PRG expansion
// or correction word: an 8-tuple (s_l, t_l, z_l, u_l, s_r, t_r, z_r, u_r).
type word struct {
	SL, SR prg.Seed128
	TL, TR byte
	ZL, ZR uint32
	UL, UR byte
}

func (w word) xor(o word) word {
	return word{
		SL: w.SL.XOR(o.SL),
		SR: w.SR.XOR(o.SR),
		TL: w.TL ^ o.TL,
		TR: w.TR ^ o.TR,
		ZL: w.ZL ^ o.ZL,
		ZR: w.ZR ^ o.ZR,
		UL: w.UL ^ o.UL,
		UR: w.UR ^ o.UR,
	}
}

// expandWord applies the 3-subkey PRG to seed and unpacks the resulting
// 3 blocks into a word: block 0 and block 1 become the left/right seed
// halves (their LSB peeled off as t_l/t_r, same convention as package
// eq); block 2's first 8 bytes become z_l and z_r (32 bits each), each
// with its own LSB peeled off as u_l/u_r. Block 2's remaining 8 bytes
// are discarded — the 64 bits taken (two 31-bit value masks plus two
// control bits) are all the value/control material a level uses, and
// this module does not reuse leftover PRG output for anything else.
func expandWord(p *prg.AESMMO, seed prg.Seed128) word {
	out := p.Expand(seed)

	zlRaw := out[2].Uint32()
	zrRaw := binLE(out[2][4:8])

	return word{
		SL: out[0].Masked(),
		TL: out[0].Ctrl(),
		SR: out[1].Masked(),
		TR: out[1].Ctrl(),
		ZL: zlRaw &^ 1,
		UL: byte(zlRaw & 1),
		ZR: zrRaw &^ 1,
		UR: byte(zrRaw & 1),
	}
}

func binLE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// compress keeps one z and one s: z from the branch selected by b and s
// from the other branch, i.e. (z, s) = (cw.z_r, cw.s_l) if b == 1, else
// (cw.z_l, cw.s_r).
func compress(cw word, b uint8) CompressedCW {
	var z uint32
	var s prg.Seed128
	if b == 1 {
		z, s = cw.ZR, cw.SL
	} else {
		z, s = cw.ZL, cw.SR
	}
	return CompressedCW{TL: cw.TL, TR: cw.TR, UL: cw.UL, UR: cw.UR, Z: z, S: s}
}

// decompress reconstructs the full 8-tuple by duplicating z into both
// z_l/z_r and s into both s_l/s_r.
func decompress(cw CompressedCW) word {
	return word{
		SL: cw.S, SR: cw.S,
		TL: cw.TL, TR: cw.TR,
		ZL: cw.Z, ZR: cw.Z,
		UL: cw.UL, UR: cw.UR,
	}
}

// template builds the uncompressed correction-word contribution for
// level bit b, before XORing in the two parties' expansions: on the
// off-kept branch (not selected by b), z is the XOR of both parties' z
// on that branch and u is 1; on the kept branch, s is the XOR of both
// parties' off-kept seeds and t is 1. All other fields are zero.
func template(b uint8, wa, wb word) word {
	var t word
	if b == 1 {
		t.ZL = wa.ZL ^ wb.ZL
		t.UL = 1
		t.SR = wa.SL.XOR(wb.SL)
		t.TR = 1
	} else {
		t.ZR = wa.ZR ^ wb.ZR
		t.UR = 1
		t.SL = wa.SR.XOR(wb.SR)
		t.TL = 1
	}
	return t
}

// GenerateKeypair draws a uniform random alpha and a uniform random pair
// of root seeds, and returns the two keys of an LE key pair such that
// Eval(k0, 0, x) + Eval(k1, 1, x) sums to [x <= alpha] (mod 2^32) for
// every x.
//
// As with package eq, alpha itself is never returned; a deterministic,
// alpha-controlled core (generateKeypairForAlpha) exists for this
// package's own tests only.
func GenerateKeypair(p *prg.AESMMO) (Key, Key, error) {
	if p.NumSubkeys() != 3 {
		return Key{}, Key{}, fmt.Errorf("le: PRG must be configured with 3 subkeys, got %d", p.NumSubkeys())
	}

	alpha, err := fssutil.RandomUint32()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("le: drawing alpha: %w", err)
	}
	sA, err := fssutil.RandomSeed128()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("le: drawing root seed for A: %w", err)
	}
	sB, err := fssutil.RandomSeed128()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("le: drawing root seed for B: %w", err)
	}
	mask, err := fssutil.RandomUint32()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("le: drawing alpha-share mask: %w", err)
	}

	cw, cwLeaf := generateCorrectionWords(p, alpha, sA, sB)

	keyA := Key{AlphaShare: alpha - mask, S: sA, CW: cw, CWLeaf: cwLeaf}
	keyB := Key{AlphaShare: mask, S: sB, CW: cw, CWLeaf: cwLeaf}
	return keyA, keyB, nil
}

// generateKeypairForAlpha is the deterministic core of GenerateKeypair,
// used only by this package's own tests.
func generateKeypairForAlpha(p *prg.AESMMO, alpha uint32, sA, sB prg.Seed128, mask uint32) (Key, Key) {
	cw, cwLeaf := generateCorrectionWords(p, alpha, sA, sB)
	keyA := Key{AlphaShare: alpha - mask, S: sA, CW: cw, CWLeaf: cwLeaf}
	keyB := Key{AlphaShare: mask, S: sB, CW: cw, CWLeaf: cwLeaf}
	return keyA, keyB
}

func generateCorrectionWords(p *prg.AESMMO, alpha uint32, sA, sB prg.Seed128) (
	cw [fssutil.NumLevels]CompressedCW,
	cwLeaf [fssutil.NumLevels + 1]uint32,
) {
	alphaBits := fssutil.BitDecompose(alpha)

	tA, tB := uint8(0), uint8(1)
	sAi, sBi := sA, sB

	for i := 0; i < fssutil.NumLevels; i++ {
		wa := expandWord(p, sAi)
		wb := expandWord(p, sBi)

		b := alphaBits[i]
		tmpl := template(b, wa, wb)
		cwFinal := tmpl.xor(wa).xor(wb)
		compressed := compress(cwFinal, b)
		cw[i] = compressed

		decomp := decompress(compressed)
		waPrime, wbPrime := wa, wb
		if tA == 1 {
			waPrime = wa.xor(decomp)
		}
		if tB == 1 {
			wbPrime = wb.xor(decomp)
		}

		var zAoff, zBoff uint32
		var uBoff byte
		if b == 0 {
			sAi, tA = waPrime.SL, waPrime.TL
			zAoff = waPrime.ZR
			sBi, tB = wbPrime.SL, wbPrime.TL
			zBoff = wbPrime.ZR
			uBoff = wbPrime.UR
		} else {
			sAi, tA = waPrime.SR, waPrime.TR
			zAoff = waPrime.ZL
			sBi, tB = wbPrime.SR, wbPrime.TR
			zBoff = wbPrime.ZL
			uBoff = wbPrime.UL
		}

		cwLeaf[i] = fssutil.ShareLeaf(zAoff, zBoff, b, uBoff)
	}

	cwLeaf[fssutil.NumLevels] = fssutil.ShareLeaf(sAi.Uint32(), sBi.Uint32(), 1, tB)
	return cw, cwLeaf
}

// Eval evaluates the key on x as the given party (0 = Alice, 1 = Bob).
func (k Key) Eval(p *prg.AESMMO, partyID uint8, x uint32) (uint32, error) {
	if partyID != 0 && partyID != 1 {
		return 0, fmt.Errorf("le: party id must be 0 or 1, got %d", partyID)
	}
	if p.NumSubkeys() != 3 {
		return 0, fmt.Errorf("le: PRG must be configured with 3 subkeys, got %d", p.NumSubkeys())
	}

	t := partyID
	s := k.S
	var out uint32
	xBits := fssutil.BitDecompose(x)

	for i := 0; i < fssutil.NumLevels; i++ {
		w := expandWord(p, s)
		if t == 1 {
			w = w.xor(decompress(k.CW[i]))
		}

		var zI uint32
		var uI byte
		if xBits[i] == 0 {
			zI, uI, s, t = w.ZL, w.UL, w.SL, w.TL
		} else {
			zI, uI, s, t = w.ZR, w.UR, w.SR, w.TR
		}

		out += fssutil.ComputeOut(zI, k.CWLeaf[i], uI, partyID)
	}

	out += fssutil.ComputeOut(s.Uint32(), k.CWLeaf[fssutil.NumLevels], t, partyID)
	return out, nil
}
