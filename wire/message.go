package wire

// ===== CAPABILITY CONTRACTS =====

// Encodable is implemented by types that write themselves as protobuf
// fields. Implementations call the Encoder's field writers, usually in
// field-number order, and return the first error they get.
type Encodable interface {
	MarshalProtobuf(e *Encoder) error
}

// Decodable is implemented by types that populate themselves from
// protobuf fields. Implementations loop on NextField, dispatch on the field
// number, and call SkipField for numbers they do not know:
//
//	for {
//		tag, ok, err := d.NextField()
//		if err != nil {
//			return err
//		}
//		if !ok {
//			return nil
//		}
//		switch tag.FieldNumber() {
//		case 1:
//			if u.Name, err = d.StringField(tag); err != nil {
//				return err
//			}
//		default:
//			if err := d.SkipField(tag); err != nil {
//				return err
//			}
//		}
//	}
type Decodable interface {
	UnmarshalProtobuf(d *Decoder) error
}

// Message is a type that can be both encoded and decoded.
type Message interface {
	Encodable
	Decodable
}

// Enum is implemented by types that map to a protobuf enum.
type Enum interface {
	ProtobufValue() uint64
}

// decodablePtr matches *T when *T implements Decodable.
type decodablePtr[T any] interface {
	*T
	Decodable
}

// ===== ENTRY POINTS =====

// Marshal encodes v into a newly allocated byte slice. The encoder buffer
// is borrowed from a pool and released on every return path; nothing is
// returned on failure.
func Marshal(v Encodable) ([]byte, error) {
	e := getEncoder()
	defer putEncoder(e)

	if err := v.MarshalProtobuf(e); err != nil {
		return nil, err
	}
	out := make([]byte, len(e.buf))
	copy(out, e.buf)
	return out, nil
}

// Unmarshal decodes data into v. When it fails, v may be partially
// populated; use UnmarshalAs to get all-or-nothing behavior.
func Unmarshal(data []byte, v Decodable) error {
	return v.UnmarshalProtobuf(NewDecoder(data))
}

// UnmarshalAs decodes data into a new T. On failure the zero T is returned.
func UnmarshalAs[T any, PT decodablePtr[T]](data []byte) (T, error) {
	var v T
	if err := PT(&v).UnmarshalProtobuf(NewDecoder(data)); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ReadMessage decodes the embedded message under tag into a new T.
func ReadMessage[T any, PT decodablePtr[T]](d *Decoder, tag Tag) (T, error) {
	var v T
	if err := d.MessageField(tag, PT(&v)); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// DecodeEnum reads an enum field. from converts a raw wire value and
// reports whether it names a known value; unknown values decode as
// fallback instead of failing, as protobuf enums are open.
func DecodeEnum[E Enum](d *Decoder, tag Tag, from func(uint64) (E, bool), fallback E) (E, error) {
	raw, err := d.EnumField(tag)
	if err != nil {
		return fallback, err
	}
	if v, ok := from(raw); ok {
		return v, nil
	}
	return fallback, nil
}
