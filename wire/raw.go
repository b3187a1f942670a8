package wire

import "fmt"

// RawField is one field read without knowing the message shape.
type RawField struct {
	Number   FieldNumber
	WireType WireType
	Offset   int // offset of the field key in the parsed input

	// Exactly one of these holds the value, selected by WireType.
	Varint uint64
	Fixed  uint64 // fixed32 values are zero-extended
	Bytes  []byte // aliases the parsed input
}

// ReadRawField reads the next field of the current message without
// interpreting it. ok is false at the end of the message.
func (d *Decoder) ReadRawField() (f RawField, ok bool, err error) {
	start := d.pos
	tag, ok, err := d.NextField()
	if err != nil || !ok {
		return RawField{}, false, err
	}
	f = RawField{Number: tag.FieldNumber(), WireType: tag.WireType(), Offset: start}
	switch f.WireType {
	case WireVarint:
		f.Varint, err = d.DecodeVarint()
	case WireFixed64:
		f.Fixed, err = d.DecodeFixed64()
	case WireFixed32:
		var v uint32
		v, err = d.DecodeFixed32()
		f.Fixed = uint64(v)
	case WireBytes:
		f.Bytes, err = d.DecodeRawBytes()
	}
	if err != nil {
		return RawField{}, false, err
	}
	return f, true, nil
}

// ParseRaw splits data into its top-level fields.
func ParseRaw(data []byte) ([]RawField, error) {
	d := NewDecoder(data)
	var fields []RawField
	for {
		f, ok, err := d.ReadRawField()
		if err != nil {
			return nil, err
		}
		if !ok {
			return fields, nil
		}
		fields = append(fields, f)
	}
}

// Nested parses a length-delimited value as an embedded message. It fails
// when the field is not length-delimited or the bytes do not parse as
// fields, which is the usual way to tell strings from messages.
func (f RawField) Nested() ([]RawField, error) {
	if f.WireType != WireBytes {
		return nil, decodeError(f.Offset, "field %d has wire type %s, not a message", f.Number, f.WireType)
	}
	fields, err := ParseRaw(f.Bytes)
	if err != nil {
		return nil, wrapWithField(err, f.Number, ErrDecodingFailed)
	}
	return fields, nil
}

// Value returns the field value as a Go value: uint64 for varints, uint32
// or uint64 for fixed-width values, and []byte for length-delimited ones.
func (f RawField) Value() any {
	switch f.WireType {
	case WireVarint:
		return f.Varint
	case WireFixed32:
		return uint32(f.Fixed)
	case WireFixed64:
		return f.Fixed
	case WireBytes:
		return f.Bytes
	}
	return nil
}

func (f RawField) String() string {
	switch f.WireType {
	case WireBytes:
		return fmt.Sprintf("%d:%s[%d]", f.Number, f.WireType, len(f.Bytes))
	default:
		return fmt.Sprintf("%d:%s=%v", f.Number, f.WireType, f.Value())
	}
}
