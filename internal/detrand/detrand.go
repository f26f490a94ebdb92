// Package detrand derives reproducible pseudo-randomness for tests: a
// counter hashed through blake3 instead of crypto/rand, so a failing
// seed can be printed and the exact run repeated. It is never imported
// by the production keygen path (fssutil.RandomUint32/RandomSeed128
// stay on crypto/rand) — only by this module's own _test.go files.
package detrand

import (
	"encoding/binary"

	"github.com/zeebo/blake3"

	"fssinfer/prg"
)

// Seq is a deterministic sequence of pseudo-random values derived from a
// single label: New(label).Uint32(), .Seed128() and so on are stable
// across runs for the same (label, call index) pair.
type Seq struct {
	label string
	calls uint64
}

// New returns a fresh deterministic sequence rooted at label. Tests
// should pass a label that uniquely names the scenario (e.g. the test
// name) so seeds from different tests never collide.
func New(label string) *Seq {
	return &Seq{label: label}
}

func (s *Seq) next() [32]byte {
	var counter [8]byte
	binary.LittleEndian.PutUint64(counter[:], s.calls)
	s.calls++

	h := blake3.New()
	h.Write([]byte(s.label))
	h.Write(counter[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Uint32 returns the next deterministic 32-bit value in the sequence.
func (s *Seq) Uint32() uint32 {
	b := s.next()
	return binary.LittleEndian.Uint32(b[:4])
}

// Seed128 returns the next deterministic 128-bit seed in the sequence.
func (s *Seq) Seed128() prg.Seed128 {
	b := s.next()
	var seed prg.Seed128
	copy(seed[:], b[:16])
	return seed
}
