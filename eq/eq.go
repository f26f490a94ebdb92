// Package eq implements the Distributed Point Function (DPF) used for
// the equality predicate f_alpha(x) = [x == alpha]. The tree protocol
// (key generation and evaluation) is grounded on
// dpf/2018_boyle_optimization/optreedpf.go in the teacher repository —
// same Gen/Eval tree shape and per-level correction-word loop — rewritten
// for a fixed 32-level tree over Z/2^32Z (wrapping uint32 arithmetic)
// instead of the teacher's lambda-level tree over a secp256k1 field
// element group, which this protocol has no use for.
package eq

import (
	"fmt"

	"fssinfer/fssutil"
	"fssinfer/prg"
)

// Len is the fixed serialized length of an EQ key, in bytes. The packed
// fields (alpha_share, s, the 32 per-level correction words, cw_leaf)
// only occupy the first 600 bytes; the trailing 21 bytes are reserved,
// zero-filled padding so that Len matches the external key_len = 621
// contract (see serialize.go).
const Len = 621

// Key is one party's share of an EQ (DPF) key pair. All fields other
// than AlphaShare and S are identical between the two keys of a pair.
type Key struct {
	AlphaShare uint32
	S          prg.Seed128
	CW         [fssutil.NumLevels]prg.Seed128
	TL         [fssutil.NumLevels]byte
	TR         [fssutil.NumLevels]byte
	CWLeaf     uint32
}

// Len reports the fixed serialized key length.
func (k Key) Len() int { return Len }

// GenerateKeypair draws a uniform random alpha and a uniform random pair
// of root seeds, and returns the two keys of an EQ key pair such that
// Eval(k0, 0, alpha) + Eval(k1, 1, alpha) == 1 (mod 2^32), and the sum is
// 0 for every other x.
//
// Alpha is never returned or otherwise observable from this function —
// only the two key shares are. An alpha-controlled variant exists for
// this package's own tests only (generateKeypairForAlpha, unexported):
// recovering or choosing alpha is not part of the production API.
func GenerateKeypair(p *prg.AESMMO) (Key, Key, error) {
	if p.NumSubkeys() != 2 {
		return Key{}, Key{}, fmt.Errorf("eq: PRG must be configured with 2 subkeys, got %d", p.NumSubkeys())
	}

	alpha, err := fssutil.RandomUint32()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("eq: drawing alpha: %w", err)
	}
	sA, err := fssutil.RandomSeed128()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("eq: drawing root seed for A: %w", err)
	}
	sB, err := fssutil.RandomSeed128()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("eq: drawing root seed for B: %w", err)
	}
	mask, err := fssutil.RandomUint32()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("eq: drawing alpha-share mask: %w", err)
	}

	cw, tl, tr, cwLeaf := generateCorrectionWords(p, alpha, sA, sB)

	keyA := Key{
		AlphaShare: alpha - mask,
		S:          sA,
		CW:         cw,
		TL:         tl,
		TR:         tr,
		CWLeaf:     cwLeaf,
	}
	keyB := Key{
		AlphaShare: mask,
		S:          sB,
		CW:         cw,
		TL:         tl,
		TR:         tr,
		CWLeaf:     cwLeaf,
	}
	return keyA, keyB, nil
}

// generateKeypairForAlpha is the deterministic core of GenerateKeypair,
// taking alpha and both root seeds explicitly. It exists so this
// package's tests can exercise specific (alpha, x) scenarios
// deterministically; it is not exported.
func generateKeypairForAlpha(p *prg.AESMMO, alpha uint32, sA, sB prg.Seed128, mask uint32) (Key, Key) {
	cw, tl, tr, cwLeaf := generateCorrectionWords(p, alpha, sA, sB)
	keyA := Key{AlphaShare: alpha - mask, S: sA, CW: cw, TL: tl, TR: tr, CWLeaf: cwLeaf}
	keyB := Key{AlphaShare: mask, S: sB, CW: cw, TL: tl, TR: tr, CWLeaf: cwLeaf}
	return keyA, keyB
}

func generateCorrectionWords(p *prg.AESMMO, alpha uint32, sA, sB prg.Seed128) (
	cw [fssutil.NumLevels]prg.Seed128,
	tl [fssutil.NumLevels]byte,
	tr [fssutil.NumLevels]byte,
	cwLeaf uint32,
) {
	alphaBits := fssutil.BitDecompose(alpha)

	tA, tB := uint8(0), uint8(1)
	sAi, sBi := sA, sB

	for i := 0; i < fssutil.NumLevels; i++ {
		outA := p.Expand(sAi)
		outB := p.Expand(sBi)

		sAl, tAl := outA[0].Masked(), outA[0].Ctrl()
		sAr, tAr := outA[1].Masked(), outA[1].Ctrl()
		sBl, tBl := outB[0].Masked(), outB[0].Ctrl()
		sBr, tBr := outB[1].Masked(), outB[1].Ctrl()

		b := alphaBits[i]

		var sAkeep, sAlose, sBkeep, sBlose prg.Seed128
		var tAkeep, tBkeep uint8
		if b == 0 {
			sAkeep, sAlose, tAkeep = sAl, sAr, tAl
			sBkeep, sBlose, tBkeep = sBl, sBr, tBl
		} else {
			sAkeep, sAlose, tAkeep = sAr, sAl, tAr
			sBkeep, sBlose, tBkeep = sBr, sBl, tBr
		}

		sCW := sAlose.XOR(sBlose)
		tCWL := tAl ^ tBl ^ b ^ 1
		tCWR := tAr ^ tBr ^ b
		var tCWKeep uint8
		if b == 0 {
			tCWKeep = tCWL
		} else {
			tCWKeep = tCWR
		}

		cw[i] = sCW
		tl[i] = tCWL
		tr[i] = tCWR

		if tA == 0 {
			sAi, tA = sAkeep, tAkeep
		} else {
			sAi, tA = sAkeep.XOR(sCW), tAkeep^tCWKeep
		}
		if tB == 0 {
			sBi, tB = sBkeep, tBkeep
		} else {
			sBi, tB = sBkeep.XOR(sCW), tBkeep^tCWKeep
		}
	}

	cwLeaf = fssutil.ShareLeaf(sAi.Uint32(), sBi.Uint32(), 1, tB)
	return cw, tl, tr, cwLeaf
}

// Eval evaluates the key on x as the given party (0 = Alice, 1 = Bob).
func (k Key) Eval(p *prg.AESMMO, partyID uint8, x uint32) (uint32, error) {
	if partyID != 0 && partyID != 1 {
		return 0, fmt.Errorf("eq: party id must be 0 or 1, got %d", partyID)
	}
	if p.NumSubkeys() != 2 {
		return 0, fmt.Errorf("eq: PRG must be configured with 2 subkeys, got %d", p.NumSubkeys())
	}

	t := partyID
	s := k.S
	xBits := fssutil.BitDecompose(x)

	for i := 0; i < fssutil.NumLevels; i++ {
		out := p.Expand(s)
		sL, tL := out[0].Masked(), out[0].Ctrl()
		sR, tR := out[1].Masked(), out[1].Ctrl()

		if xBits[i] == 0 {
			if t == 0 {
				s, t = sL, tL
			} else {
				s, t = sL.XOR(k.CW[i]), tL^k.TL[i]
			}
		} else {
			if t == 0 {
				s, t = sR, tR
			} else {
				s, t = sR.XOR(k.CW[i]), tR^k.TR[i]
			}
		}
	}

	return fssutil.ComputeOut(s.Uint32(), k.CWLeaf, t, partyID), nil
}
