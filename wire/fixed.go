package wire

import (
	"encoding/binary"
	"math"
)

// ENCODER METHODS

// EncodeFixed32 writes a 32-bit little-endian value with no field key.
func (e *Encoder) EncodeFixed32(v uint32) {
	binary.LittleEndian.PutUint32(e.extend(4), v)
}

// EncodeFixed64 writes a 64-bit little-endian value with no field key.
func (e *Encoder) EncodeFixed64(v uint64) {
	binary.LittleEndian.PutUint64(e.extend(8), v)
}

// EncodeFloat writes v's IEEE 754 bits as fixed32.
func (e *Encoder) EncodeFloat(v float32) {
	e.EncodeFixed32(math.Float32bits(v))
}

// EncodeDouble writes v's IEEE 754 bits as fixed64.
func (e *Encoder) EncodeDouble(v float64) {
	e.EncodeFixed64(math.Float64bits(v))
}

// DECODER METHODS

// DecodeFixed32 decodes a 32-bit fixed-width value
func (d *Decoder) DecodeFixed32() (uint32, error) {
	if d.limit()-d.pos < 4 {
		return 0, decodeError(d.pos, "not enough data for fixed32")
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

// DecodeFixed64 decodes a 64-bit fixed-width value
func (d *Decoder) DecodeFixed64() (uint64, error) {
	if d.limit()-d.pos < 8 {
		return 0, decodeError(d.pos, "not enough data for fixed64")
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

// skip advances the cursor by n bytes within the current message.
func (d *Decoder) skip(n int, what string) error {
	if d.limit()-d.pos < n {
		return decodeError(d.pos, "not enough data to skip %s", what)
	}
	d.pos += n
	return nil
}
