package eq

import (
	"encoding/binary"
	"fmt"

	"fssinfer/fssutil"
	"fssinfer/prg"
)

// Wire layout (little-endian), Len bytes total:
//
//	offset 0             alpha_share   uint32
//	offset 4             s             16 bytes
//	offset 20 + i*18     cw[i]         16 bytes   (i = 0..31)
//	offset 20 + i*18+16  t_l[i]        1 byte
//	offset 20 + i*18+17  t_r[i]        1 byte
//	offset 596           cw_leaf       uint32
//	offset 600..621      reserved, zero-filled
//
// The packed fields end at offset 600 (20 + 32*18 + 4); the remaining 21
// bytes pad the slot out to the fixed external key_len of 621 bytes used
// by the batch driver and the C-ABI buffer contract.
const (
	offAlphaShare = 0
	offS          = offAlphaShare + 4
	offLevels     = offS + prg.SeedLen
	levelStride   = prg.SeedLen + 2
	offCWLeaf     = offLevels + fssutil.NumLevels*levelStride
	packedLen     = offCWLeaf + 4
)

// WriteTo serializes k into buf, which must be at least Len bytes long.
func (k Key) WriteTo(buf []byte) error {
	if len(buf) < Len {
		return fmt.Errorf("eq: WriteTo: buffer too small: need %d bytes, got %d", Len, len(buf))
	}

	binary.LittleEndian.PutUint32(buf[offAlphaShare:], k.AlphaShare)
	copy(buf[offS:offS+prg.SeedLen], k.S[:])

	for i := 0; i < fssutil.NumLevels; i++ {
		base := offLevels + i*levelStride
		copy(buf[base:base+prg.SeedLen], k.CW[i][:])
		buf[base+prg.SeedLen] = k.TL[i]
		buf[base+prg.SeedLen+1] = k.TR[i]
	}

	binary.LittleEndian.PutUint32(buf[offCWLeaf:], k.CWLeaf)

	for i := packedLen; i < Len; i++ {
		buf[i] = 0
	}
	return nil
}

// ReadFrom deserializes a Key from buf, which must be at least Len bytes
// long.
func ReadFrom(buf []byte) (Key, error) {
	if len(buf) < Len {
		return Key{}, fmt.Errorf("eq: ReadFrom: buffer too small: need %d bytes, got %d", Len, len(buf))
	}

	var k Key
	k.AlphaShare = binary.LittleEndian.Uint32(buf[offAlphaShare:])
	copy(k.S[:], buf[offS:offS+prg.SeedLen])

	for i := 0; i < fssutil.NumLevels; i++ {
		base := offLevels + i*levelStride
		copy(k.CW[i][:], buf[base:base+prg.SeedLen])
		k.TL[i] = buf[base+prg.SeedLen]
		k.TR[i] = buf[base+prg.SeedLen+1]
	}

	k.CWLeaf = binary.LittleEndian.Uint32(buf[offCWLeaf:])
	return k, nil
}
