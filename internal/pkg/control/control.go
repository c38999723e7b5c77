// Package control implements the bsdiff 4.x control-triple encoding: three
// signed-magnitude 64-bit integers per instruction, exactly as laid out in
// the BSDIFF40 container format.
package control

import "encoding/binary"

// Size is the on-disk width of one encoded 64-bit signed-magnitude integer.
const Size = 8

// Triple is one control instruction: copy AddLen bytes from the source with
// an additive correction, append ExtraLen literal bytes, then move the
// source cursor by Seek (which may be negative).
type Triple struct {
	AddLen   int64
	ExtraLen int64
	Seek     int64
}

// Encode writes x into b (len(b) >= Size) as 8 little-endian magnitude bytes
// with the sign folded into the top bit of the last byte. -0 never occurs
// since the magnitude of 0 has no sign to set.
func Encode(x int64, b []byte) {
	var y uint64
	if x < 0 {
		y = uint64(-x) | (1 << 63)
	} else {
		y = uint64(x)
	}
	binary.LittleEndian.PutUint64(b, y)
}

// Decode reads an encoded integer from b (len(b) >= Size). A magnitude of 0
// with the sign bit set (encoded -0) decodes to 0, matching the format's
// historical canonicalization rule.
func Decode(b []byte) int64 {
	y := binary.LittleEndian.Uint64(b)
	magnitude := int64(y &^ (1 << 63))
	if y&(1<<63) != 0 {
		return -magnitude
	}
	return magnitude
}

// EncodeTriple writes all three fields of t into b (len(b) >= 3*Size).
func EncodeTriple(t Triple, b []byte) {
	Encode(t.AddLen, b[0:Size])
	Encode(t.ExtraLen, b[Size:2*Size])
	Encode(t.Seek, b[2*Size:3*Size])
}

// DecodeTriple reads a triple from b (len(b) >= 3*Size).
func DecodeTriple(b []byte) Triple {
	return Triple{
		AddLen:   Decode(b[0:Size]),
		ExtraLen: Decode(b[Size : 2*Size]),
		Seek:     Decode(b[2*Size : 3*Size]),
	}
}
