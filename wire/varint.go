package wire

import "math/bits"

// MaxVarintLen is the longest a 64-bit varint can be.
const MaxVarintLen = 10

// VarintSize returns the number of bytes needed to encode the given varint
func VarintSize(v uint64) int {
	// 7 payload bits per byte; zero still takes one byte.
	return (bits.Len64(v|1) + 6) / 7
}

// AppendVarint appends the base-128 encoding of v to b.
func AppendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// putVarint writes v at the start of b, which must have room for
// VarintSize(v) bytes, and returns the number of bytes written.
func putVarint(b []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		b[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	b[i] = byte(v)
	return i + 1
}

// ConsumeVarint parses a varint from the start of b. It returns the value
// and the number of bytes read; n is 0 when b ends mid-varint and -1 when
// the encoding overflows 64 bits.
func ConsumeVarint(b []byte) (v uint64, n int) {
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		// The tenth byte may only carry the top bit of a uint64.
		if i == MaxVarintLen-1 && c > 1 {
			return 0, -1
		}
		v |= uint64(c&0x7F) << shift
		if c < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, 0
}

// UTILITY FUNCTIONS

// EncodeZigZag32 encodes a signed 32-bit integer using zigzag encoding
func EncodeZigZag32(v int32) uint64 {
	return uint64((uint32(v) << 1) ^ uint32(v>>31))
}

// EncodeZigZag64 encodes a signed 64-bit integer using zigzag encoding
func EncodeZigZag64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// DecodeZigZag32 decodes a zigzag-encoded 32-bit integer
func DecodeZigZag32(encoded uint64) int32 {
	return int32((uint32(encoded) >> 1) ^ uint32(-int32(encoded&1)))
}

// DecodeZigZag64 decodes a zigzag-encoded 64-bit integer
func DecodeZigZag64(encoded uint64) int64 {
	return int64((encoded >> 1) ^ uint64(-int64(encoded&1)))
}

// ENCODER METHODS

// EncodeVarint writes v as a varint with no field key.
func (e *Encoder) EncodeVarint(v uint64) {
	putVarint(e.extend(VarintSize(v)), v)
}

// EncodeZigZag writes v zigzag-mapped as a varint with no field key.
func (e *Encoder) EncodeZigZag(v int64) {
	e.EncodeVarint(EncodeZigZag64(v))
}

// EncodeBool writes v as a one-byte varint with no field key.
func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.EncodeVarint(1)
	} else {
		e.EncodeVarint(0)
	}
}

// EncodeTag writes a field key. Together with the key-less encoders it
// writes fields unconditionally, such as zero-valued unpacked repeated
// elements.
func (e *Encoder) EncodeTag(n FieldNumber, wt WireType) {
	e.EncodeVarint(uint64(MakeTag(n, wt)))
}

// DECODER METHODS

// DecodeVarint decodes a varint from the current position
func (d *Decoder) DecodeVarint() (uint64, error) {
	v, n := ConsumeVarint(d.buf[d.pos:d.limit()])
	switch {
	case n == 0:
		return 0, decodeError(d.pos, "truncated varint")
	case n < 0:
		return 0, decodeError(d.pos, "varint overflows 64 bits")
	}
	d.pos += n
	return v, nil
}

// SkipVarint skips over a varint without decoding it
func (d *Decoder) SkipVarint() error {
	_, err := d.DecodeVarint()
	return err
}
