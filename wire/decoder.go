package wire

import "math"

// Decoder handles low-level protobuf wire format decoding. It reads a
// borrowed byte slice it never modifies, so any number of Decoders may
// share one input concurrently. A single Decoder is not safe for
// concurrent use.
type Decoder struct {
	buf []byte
	pos int
	// end is where the current message stops; it moves inward while an
	// embedded message is decoded and is restored from stack afterwards.
	end    int
	stack  []int
	packed packedRun

	maxDepth     int
	validateUTF8 bool
}

// NewDecoder creates a new wire format decoder
func NewDecoder(data []byte) *Decoder {
	c := CurrentConfig()
	return &Decoder{
		buf:          data,
		end:          len(data),
		maxDepth:     c.MaxDepth,
		validateUTF8: c.ValidateUTF8,
	}
}

// Offset returns the cursor position in the input.
func (d *Decoder) Offset() int {
	return d.pos
}

// Remaining returns the number of bytes left in the current message.
func (d *Decoder) Remaining() int {
	return d.end - d.pos
}

// Depth returns how many embedded messages the cursor is inside.
func (d *Decoder) Depth() int {
	return len(d.stack)
}

// limit is the furthest the next read may go: the end of the active packed
// run, or else the end of the current message.
func (d *Decoder) limit() int {
	if d.packed.active() {
		return d.packed.end
	}
	return d.end
}

// NextField reads the next field key. ok is false once the current message
// is exhausted. While a packed run is being replayed it returns the run's
// synthetic key without consuming input, once per remaining element.
func (d *Decoder) NextField() (tag Tag, ok bool, err error) {
	if d.packed.active() {
		switch {
		case d.pos < d.packed.end:
			return d.packed.tag, true, nil
		case d.pos > d.packed.end:
			return 0, false, decodeError(d.pos, "element overran packed run ending at %d", d.packed.end)
		}
		d.packed = packedRun{}
	}
	if d.pos >= d.end {
		return 0, false, nil
	}

	start := d.pos
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, false, err
	}
	if n := v >> 3; n == 0 || n > uint64(MaxFieldNumber) {
		return 0, false, decodeError(start, "invalid field number %d", n)
	}
	tag = Tag(v)
	if !tag.WireType().Valid() {
		return 0, false, decodeError(start, "unsupported wire type %d for field %d", tag.WireType(), tag.FieldNumber())
	}
	return tag, true, nil
}

// SkipField advances past the value of a field the caller does not
// recognize.
func (d *Decoder) SkipField(tag Tag) error {
	switch tag.WireType() {
	case WireVarint:
		return d.SkipVarint()
	case WireFixed64:
		return d.skip(8, "fixed64")
	case WireBytes:
		return d.SkipBytes()
	case WireFixed32:
		return d.skip(4, "fixed32")
	default:
		return decodeError(d.pos, "cannot skip wire type %d", tag.WireType())
	}
}

func (d *Decoder) mismatch(tag Tag, want WireType) error {
	return decodeError(d.pos, "field %d has wire type %s, want %s", tag.FieldNumber(), tag.WireType(), want)
}

// ===== SCALAR READERS =====
//
// Each reader accepts its own wire type or, for a packed run, WireBytes.
// On a packed run the first element is returned and the rest are handed
// out by subsequent NextField calls.

func (d *Decoder) varintValue(tag Tag) (uint64, error) {
	switch tag.WireType() {
	case WireVarint:
	case WireBytes:
		if err := d.beginPacked(tag, WireVarint); err != nil {
			return 0, err
		}
	default:
		return 0, d.mismatch(tag, WireVarint)
	}
	return d.DecodeVarint()
}

func (d *Decoder) fixed32Value(tag Tag) (uint32, error) {
	switch tag.WireType() {
	case WireFixed32:
	case WireBytes:
		if err := d.beginPacked(tag, WireFixed32); err != nil {
			return 0, err
		}
	default:
		return 0, d.mismatch(tag, WireFixed32)
	}
	return d.DecodeFixed32()
}

func (d *Decoder) fixed64Value(tag Tag) (uint64, error) {
	switch tag.WireType() {
	case WireFixed64:
	case WireBytes:
		if err := d.beginPacked(tag, WireFixed64); err != nil {
			return 0, err
		}
	default:
		return 0, d.mismatch(tag, WireFixed64)
	}
	return d.DecodeFixed64()
}

// boundedVarint reads a varint that must fit in max.
func (d *Decoder) boundedVarint(tag Tag, max uint64) (uint64, error) {
	start := d.pos
	v, err := d.varintValue(tag)
	if err != nil {
		return 0, err
	}
	if v > max {
		return 0, decodeError(start, "value %d of field %d overflows %d", v, tag.FieldNumber(), max)
	}
	return v, nil
}

// BoolField reads a bool field.
func (d *Decoder) BoolField(tag Tag) (bool, error) {
	v, err := d.varintValue(tag)
	return v != 0, err
}

// UintField reads a varint field as uint.
func (d *Decoder) UintField(tag Tag) (uint, error) {
	v, err := d.boundedVarint(tag, uint64(math.MaxUint))
	return uint(v), err
}

// Uint8Field reads a varint field that must fit in a uint8.
func (d *Decoder) Uint8Field(tag Tag) (uint8, error) {
	v, err := d.boundedVarint(tag, math.MaxUint8)
	return uint8(v), err
}

// Uint16Field reads a varint field that must fit in a uint16.
func (d *Decoder) Uint16Field(tag Tag) (uint16, error) {
	v, err := d.boundedVarint(tag, math.MaxUint16)
	return uint16(v), err
}

// Uint32Field reads a varint field that must fit in a uint32.
func (d *Decoder) Uint32Field(tag Tag) (uint32, error) {
	v, err := d.boundedVarint(tag, math.MaxUint32)
	return uint32(v), err
}

// Uint64Field reads a varint field.
func (d *Decoder) Uint64Field(tag Tag) (uint64, error) {
	return d.varintValue(tag)
}

// IntField reads a zigzag-encoded field as int.
func (d *Decoder) IntField(tag Tag) (int, error) {
	v, err := d.Int64Field(tag)
	if err == nil && (v < math.MinInt || v > math.MaxInt) {
		return 0, decodeError(d.pos, "value %d of field %d overflows int", v, tag.FieldNumber())
	}
	return int(v), err
}

// Int32Field reads a zigzag-encoded sint32 field.
func (d *Decoder) Int32Field(tag Tag) (int32, error) {
	v, err := d.boundedVarint(tag, math.MaxUint32)
	if err != nil {
		return 0, err
	}
	return DecodeZigZag32(v), nil
}

// Int64Field reads a zigzag-encoded sint64 field.
func (d *Decoder) Int64Field(tag Tag) (int64, error) {
	v, err := d.varintValue(tag)
	if err != nil {
		return 0, err
	}
	return DecodeZigZag64(v), nil
}

// EnumField reads the raw value of an enum field; see DecodeEnum for
// mapping it to a Go type.
func (d *Decoder) EnumField(tag Tag) (uint64, error) {
	return d.varintValue(tag)
}

// Fixed32Field reads a fixed32 field.
func (d *Decoder) Fixed32Field(tag Tag) (uint32, error) {
	return d.fixed32Value(tag)
}

// Fixed64Field reads a fixed64 field.
func (d *Decoder) Fixed64Field(tag Tag) (uint64, error) {
	return d.fixed64Value(tag)
}

// FloatField reads a float field.
func (d *Decoder) FloatField(tag Tag) (float32, error) {
	v, err := d.fixed32Value(tag)
	return math.Float32frombits(v), err
}

// DoubleField reads a double field. A fixed32 value is accepted too and
// widened, for fields that were written as float.
func (d *Decoder) DoubleField(tag Tag) (float64, error) {
	if tag.WireType() == WireFixed32 {
		v, err := d.DecodeFixed32()
		return float64(math.Float32frombits(v)), err
	}
	v, err := d.fixed64Value(tag)
	return math.Float64frombits(v), err
}

// ===== LENGTH-DELIMITED READERS =====

// StringField reads a string field, failing on invalid UTF-8.
func (d *Decoder) StringField(tag Tag) (string, error) {
	if tag.WireType() != WireBytes {
		return "", d.mismatch(tag, WireBytes)
	}
	return d.DecodeString()
}

// BytesField reads a bytes field into a new slice.
func (d *Decoder) BytesField(tag Tag) ([]byte, error) {
	if tag.WireType() != WireBytes {
		return nil, d.mismatch(tag, WireBytes)
	}
	return d.DecodeBytes()
}

// RawBytesField reads a bytes field without copying; the result aliases the
// input.
func (d *Decoder) RawBytesField(tag Tag) ([]byte, error) {
	if tag.WireType() != WireBytes {
		return nil, d.mismatch(tag, WireBytes)
	}
	return d.DecodeRawBytes()
}

// MessageField decodes the embedded message under tag into v.
func (d *Decoder) MessageField(tag Tag, v Decodable) error {
	return d.MessageFunc(tag, v.UnmarshalProtobuf)
}

// MessageFunc runs body restricted to the embedded message under tag: inside
// body, NextField stops at the end of the embedded message. The enclosing
// scope is restored when body returns, whether or not it failed. Bytes of
// the embedded message that body leaves unread are skipped.
func (d *Decoder) MessageFunc(tag Tag, body func(*Decoder) error) error {
	if tag.WireType() != WireBytes {
		return d.mismatch(tag, WireBytes)
	}
	start := d.pos
	if len(d.stack) >= d.maxDepth {
		return decodeError(start, "message nesting exceeds %d levels", d.maxDepth)
	}
	length, err := d.DecodeVarint()
	if err != nil {
		return err
	}
	if length > uint64(d.end-d.pos) {
		return decodeError(start, "message of %d bytes exceeds the %d bytes left", length, d.end-d.pos)
	}

	subEnd := d.pos + int(length)
	d.enter(subEnd)
	defer d.leave()

	if err := body(d); err != nil {
		return wrapWithField(err, tag.FieldNumber(), ErrDecodingFailed)
	}
	d.pos = subEnd
	return nil
}

func (d *Decoder) enter(end int) {
	d.stack = append(d.stack, d.end)
	d.end = end
}

func (d *Decoder) leave() {
	top := len(d.stack) - 1
	d.end = d.stack[top]
	d.stack = d.stack[:top]
	d.packed = packedRun{}
}
