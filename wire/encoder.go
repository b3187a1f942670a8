package wire

import (
	"math"
	"math/bits"
	"sync"
)

// minBufferSize is the smallest capacity the encoder allocates.
const minBufferSize = 0x80

// Encoder handles low-level protobuf wire format encoding. All nested
// messages and packed runs are written into one flat buffer; their length
// prefixes are backpatched once the content is complete.
//
// An Encoder must not be used from more than one goroutine.
type Encoder struct {
	buf []byte
	// stack holds the offsets of the one-byte length placeholders of the
	// length-delimited regions that are still open, innermost last.
	stack        []int
	validateUTF8 bool
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{validateUTF8: CurrentConfig().ValidateUTF8}
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer
// and is only valid until the next write or Reset.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer, keeping its capacity.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.stack = e.stack[:0]
}

// idealSize rounds n up to the next power of two, never below minBufferSize.
func idealSize(n int) int {
	if n <= minBufferSize {
		return minBufferSize
	}
	return 1 << bits.Len(uint(n-1))
}

// grow reallocates the buffer so it can hold at least n bytes, keeping
// what was already written.
func (e *Encoder) grow(n int) {
	nb := make([]byte, len(e.buf), idealSize(n))
	copy(nb, e.buf)
	e.buf = nb
}

// extend lengthens the buffer by n bytes and returns them for writing.
func (e *Encoder) extend(n int) []byte {
	old := len(e.buf)
	if cap(e.buf)-old < n {
		e.grow(old + n)
	}
	e.buf = e.buf[:old+n]
	return e.buf[old:]
}

// beginLengthDelimited writes the field key and reserves a single byte for
// the length, which is enough for content shorter than 128 bytes.
func (e *Encoder) beginLengthDelimited(n FieldNumber) {
	e.EncodeTag(n, WireBytes)
	e.stack = append(e.stack, len(e.buf))
	e.extend(1)
}

// endLengthDelimited closes the innermost open region. When the content
// needs a multi-byte length, the content is shifted forward in place to
// make room before the length is written.
func (e *Encoder) endLengthDelimited() {
	top := len(e.stack) - 1
	pos := e.stack[top]
	e.stack = e.stack[:top]

	length := len(e.buf) - (pos + 1)
	count := VarintSize(uint64(length))
	if count > 1 {
		e.extend(count - 1)
		copy(e.buf[pos+count:], e.buf[pos+1:pos+1+length])
	}
	putVarint(e.buf[pos:], uint64(length))
}

// abortLengthDelimited drops the innermost open region together with its
// field key, which started at start.
func (e *Encoder) abortLengthDelimited(start int) {
	e.stack = e.stack[:len(e.stack)-1]
	e.buf = e.buf[:start]
}

// ===== FIELD WRITERS =====
//
// Every scalar writer takes the value and its default; a value equal to
// the default is omitted, since decoders assume the default for absent
// fields. Pass the zero value for proto3 semantics.

// BoolField writes a bool field.
func (e *Encoder) BoolField(n FieldNumber, v, def bool) {
	if v == def {
		return
	}
	e.EncodeTag(n, WireVarint)
	e.EncodeBool(v)
}

// UintField writes a uint field as a varint.
func (e *Encoder) UintField(n FieldNumber, v, def uint) {
	e.Uint64Field(n, uint64(v), uint64(def))
}

// Uint32Field writes a uint32 field as a varint.
func (e *Encoder) Uint32Field(n FieldNumber, v, def uint32) {
	e.Uint64Field(n, uint64(v), uint64(def))
}

// Uint64Field writes a uint64 field as a varint.
func (e *Encoder) Uint64Field(n FieldNumber, v, def uint64) {
	if v == def {
		return
	}
	e.EncodeTag(n, WireVarint)
	e.EncodeVarint(v)
}

// IntField writes an int field zigzag-encoded (protobuf sint64).
func (e *Encoder) IntField(n FieldNumber, v, def int) {
	e.Int64Field(n, int64(v), int64(def))
}

// Int32Field writes an int32 field zigzag-encoded (protobuf sint32).
func (e *Encoder) Int32Field(n FieldNumber, v, def int32) {
	if v == def {
		return
	}
	e.EncodeTag(n, WireVarint)
	e.EncodeVarint(EncodeZigZag32(v))
}

// Int64Field writes an int64 field zigzag-encoded (protobuf sint64).
func (e *Encoder) Int64Field(n FieldNumber, v, def int64) {
	if v == def {
		return
	}
	e.EncodeTag(n, WireVarint)
	e.EncodeVarint(EncodeZigZag64(v))
}

// EnumField writes an enum field. A nil def means the value is always
// written; a nil v writes nothing.
func (e *Encoder) EnumField(n FieldNumber, v, def Enum) {
	if v == nil {
		return
	}
	if def != nil && v.ProtobufValue() == def.ProtobufValue() {
		return
	}
	e.EncodeTag(n, WireVarint)
	e.EncodeVarint(v.ProtobufValue())
}

// Fixed32Field writes a fixed32 field.
func (e *Encoder) Fixed32Field(n FieldNumber, v, def uint32) {
	if v == def {
		return
	}
	e.EncodeTag(n, WireFixed32)
	e.EncodeFixed32(v)
}

// Fixed64Field writes a fixed64 field.
func (e *Encoder) Fixed64Field(n FieldNumber, v, def uint64) {
	if v == def {
		return
	}
	e.EncodeTag(n, WireFixed64)
	e.EncodeFixed64(v)
}

// FloatField writes a float field. Values are compared bitwise, so -0 is
// written when the default is 0.
func (e *Encoder) FloatField(n FieldNumber, v, def float32) {
	if math.Float32bits(v) == math.Float32bits(def) {
		return
	}
	e.EncodeTag(n, WireFixed32)
	e.EncodeFloat(v)
}

// DoubleField writes a double field, comparing bitwise like FloatField.
func (e *Encoder) DoubleField(n FieldNumber, v, def float64) {
	if math.Float64bits(v) == math.Float64bits(def) {
		return
	}
	e.EncodeTag(n, WireFixed64)
	e.EncodeDouble(v)
}

// StringField writes a string field. Empty strings and strings equal to
// def are omitted.
func (e *Encoder) StringField(n FieldNumber, v, def string) error {
	if v == def || v == "" {
		return nil
	}
	start := len(e.buf)
	e.EncodeTag(n, WireBytes)
	if err := e.EncodeString(v); err != nil {
		e.buf = e.buf[:start]
		return wrapWithField(err, n, ErrEncodingFailed)
	}
	return nil
}

// BytesField writes a bytes field; empty values are omitted.
func (e *Encoder) BytesField(n FieldNumber, v []byte) {
	if len(v) == 0 {
		return
	}
	e.EncodeTag(n, WireBytes)
	e.EncodeBytes(v)
}

// EmptyField writes a zero-length length-delimited field. Decoders see it
// as an empty embedded message, which makes it usable as a presence marker.
func (e *Encoder) EmptyField(n FieldNumber) {
	e.EncodeTag(n, WireBytes)
	e.EncodeVarint(0)
}

// MessageField writes v as an embedded message. A nil v writes nothing.
func (e *Encoder) MessageField(n FieldNumber, v Encodable) error {
	if v == nil {
		return nil
	}
	return e.MessageFunc(n, v.MarshalProtobuf)
}

// MessageFunc writes an embedded message whose fields are produced by body.
// The message is written even when body writes nothing. If body fails,
// everything written for this field is discarded.
func (e *Encoder) MessageFunc(n FieldNumber, body func(*Encoder) error) error {
	start := len(e.buf)
	e.beginLengthDelimited(n)
	depth := len(e.stack)
	if err := body(e); err != nil {
		// Nested regions opened by body are already closed or aborted.
		e.stack = e.stack[:depth]
		e.abortLengthDelimited(start)
		return wrapWithField(err, n, ErrEncodingFailed)
	}
	e.endLengthDelimited()
	return nil
}

// ===== ENCODER POOL =====

var encoderPool = sync.Pool{
	New: func() any { return new(Encoder) },
}

func getEncoder() *Encoder {
	e := encoderPool.Get().(*Encoder)
	e.validateUTF8 = CurrentConfig().ValidateUTF8
	return e
}

// putEncoder releases e. It must be called exactly once per getEncoder.
func putEncoder(e *Encoder) {
	if cap(e.buf) > CurrentConfig().MaxPooledBuffer {
		return
	}
	e.Reset()
	encoderPool.Put(e)
}
