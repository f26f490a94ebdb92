package fssutil

import (
	"crypto/rand"
	"fmt"
	"io"

	"fssinfer/prg"
)

// RandomUint32 draws a uniform 32-bit value from the system CSPRNG. Used
// to draw alpha and the alpha-share mask at keygen time.
func RandomUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return 0, fmt.Errorf("fssutil: reading random uint32: %w", err)
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// RandomSeed128 draws a uniform 128-bit root seed from the system CSPRNG.
func RandomSeed128() (prg.Seed128, error) {
	var s prg.Seed128
	if _, err := io.ReadFull(rand.Reader, s[:]); err != nil {
		return s, fmt.Errorf("fssutil: reading random seed: %w", err)
	}
	return s, nil
}
