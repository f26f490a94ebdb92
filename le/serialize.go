package le

import (
	"encoding/binary"
	"fmt"

	"fssinfer/fssutil"
	"fssinfer/prg"
)

// Wire layout (little-endian, no padding), Len bytes total:
//
//	offset 0                alpha_share   uint32
//	offset 4                s             16 bytes
//	offset 20 + i*24        cw[i].s       16 bytes   (i = 0..31)
//	offset 20 + i*24+16     cw[i].z       4 bytes
//	offset 20 + i*24+20     t_l[i]        1 byte
//	offset 20 + i*24+21     t_r[i]        1 byte
//	offset 20 + i*24+22     u_l[i]        1 byte
//	offset 20 + i*24+23     u_r[i]        1 byte
//	offset 788 + j*4        cw_leaf[j]    uint32     (j = 0..32)
const (
	offAlphaShare = 0
	offS          = offAlphaShare + 4
	offLevels     = offS + prg.SeedLen
	levelStride   = prg.SeedLen + 4 + 4
	offCWLeaf     = offLevels + fssutil.NumLevels*levelStride
)

// WriteTo serializes k into buf, which must be at least Len bytes long.
func (k Key) WriteTo(buf []byte) error {
	if len(buf) < Len {
		return fmt.Errorf("le: WriteTo: buffer too small: need %d bytes, got %d", Len, len(buf))
	}

	binary.LittleEndian.PutUint32(buf[offAlphaShare:], k.AlphaShare)
	copy(buf[offS:offS+prg.SeedLen], k.S[:])

	for i := 0; i < fssutil.NumLevels; i++ {
		base := offLevels + i*levelStride
		cw := k.CW[i]
		copy(buf[base:base+prg.SeedLen], cw.S[:])
		binary.LittleEndian.PutUint32(buf[base+prg.SeedLen:], cw.Z)
		buf[base+prg.SeedLen+4] = cw.TL
		buf[base+prg.SeedLen+5] = cw.TR
		buf[base+prg.SeedLen+6] = cw.UL
		buf[base+prg.SeedLen+7] = cw.UR
	}

	for j := 0; j <= fssutil.NumLevels; j++ {
		binary.LittleEndian.PutUint32(buf[offCWLeaf+j*4:], k.CWLeaf[j])
	}
	return nil
}

// ReadFrom deserializes a Key from buf, which must be at least Len bytes
// long.
func ReadFrom(buf []byte) (Key, error) {
	if len(buf) < Len {
		return Key{}, fmt.Errorf("le: ReadFrom: buffer too small: need %d bytes, got %d", Len, len(buf))
	}

	var k Key
	k.AlphaShare = binary.LittleEndian.Uint32(buf[offAlphaShare:])
	copy(k.S[:], buf[offS:offS+prg.SeedLen])

	for i := 0; i < fssutil.NumLevels; i++ {
		base := offLevels + i*levelStride
		var cw CompressedCW
		copy(cw.S[:], buf[base:base+prg.SeedLen])
		cw.Z = binary.LittleEndian.Uint32(buf[base+prg.SeedLen:])
		cw.TL = buf[base+prg.SeedLen+4]
		cw.TR = buf[base+prg.SeedLen+5]
		cw.UL = buf[base+prg.SeedLen+6]
		cw.UR = buf[base+prg.SeedLen+7]
		k.CW[i] = cw
	}

	for j := 0; j <= fssutil.NumLevels; j++ {
		k.CWLeaf[j] = binary.LittleEndian.Uint32(buf[offCWLeaf+j*4:])
	}
	return k, nil
}
