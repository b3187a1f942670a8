package wire

// ===== PACKED REPEATED FIELDS =====
//
// A packed field is one length-delimited run holding the concatenated
// encodings of its elements, without per-element keys.

// PackedField writes a packed run whose elements are produced by body with
// the key-less encoders (EncodeVarint, EncodeZigZag, EncodeFixed32, ...).
// Nothing is written when body writes nothing.
func (e *Encoder) PackedField(n FieldNumber, body func(*Encoder)) {
	start := len(e.buf)
	e.beginLengthDelimited(n)
	body(e)
	if len(e.buf) == e.stack[len(e.stack)-1]+1 {
		e.abortLengthDelimited(start)
		return
	}
	e.endLengthDelimited()
}

// PackedUint64s writes vs as a packed varint run; an empty slice is omitted.
func (e *Encoder) PackedUint64s(n FieldNumber, vs []uint64) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeVarint(v)
		}
	})
}

// PackedInt64s writes vs as a packed zigzag varint run (sint64).
func (e *Encoder) PackedInt64s(n FieldNumber, vs []int64) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeZigZag(v)
		}
	})
}

// PackedBools writes vs as a packed varint run.
func (e *Encoder) PackedBools(n FieldNumber, vs []bool) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeBool(v)
		}
	})
}

// PackedFixed32s writes vs as a packed fixed32 run.
func (e *Encoder) PackedFixed32s(n FieldNumber, vs []uint32) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeFixed32(v)
		}
	})
}

// PackedFixed64s writes vs as a packed fixed64 run.
func (e *Encoder) PackedFixed64s(n FieldNumber, vs []uint64) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeFixed64(v)
		}
	})
}

// PackedFloats writes vs as a packed fixed32 run.
func (e *Encoder) PackedFloats(n FieldNumber, vs []float32) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeFloat(v)
		}
	})
}

// PackedDoubles writes vs as a packed fixed64 run.
func (e *Encoder) PackedDoubles(n FieldNumber, vs []float64) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeDouble(v)
		}
	})
}

// PackedEnums writes vs as a packed varint run.
func PackedEnums[E Enum](e *Encoder, n FieldNumber, vs []E) {
	if len(vs) == 0 {
		return
	}
	e.PackedField(n, func(e *Encoder) {
		for _, v := range vs {
			e.EncodeVarint(v.ProtobufValue())
		}
	})
}

// packedRun is the decoder's packed-replay state. The zero value is
// inactive. While active, NextField keeps returning tag until the cursor
// reaches end, so each element is read by one reader call, the same way
// unpacked repeated fields are read.
type packedRun struct {
	tag Tag // synthetic key carrying the element wire type
	end int
}

func (p packedRun) active() bool {
	return p.tag != 0
}

// beginPacked installs packed-replay state for the run starting at the
// cursor. elem is the wire type of the run's elements.
func (d *Decoder) beginPacked(tag Tag, elem WireType) error {
	start := d.pos
	if d.packed.active() {
		return decodeError(start, "packed run for field %d started inside another run", tag.FieldNumber())
	}
	length, err := d.DecodeVarint()
	if err != nil {
		return err
	}
	if length > uint64(d.end-d.pos) {
		return decodeError(start, "packed run of %d bytes exceeds the %d bytes left in the message", length, d.end-d.pos)
	}
	if length == 0 {
		// A reader must return an element, and an empty run has none.
		// AppendRepeated consumes empty runs before a reader sees them.
		return decodeError(start, "empty packed run for field %d", tag.FieldNumber())
	}
	d.packed = packedRun{
		tag: MakeTag(tag.FieldNumber(), elem),
		end: d.pos + int(length),
	}
	return nil
}

// AppendRepeated reads every element of a repeated scalar field under tag
// and appends them to dst. It accepts a single unpacked element or a whole
// packed run, including an empty one. read is the element reader, such as
// d.Uint64Field; it must not be a length-delimited reader like StringField.
//
//	m.Values, err = wire.AppendRepeated(d, tag, m.Values, d.Uint64Field)
func AppendRepeated[T any](d *Decoder, tag Tag, dst []T, read func(Tag) (T, error)) ([]T, error) {
	if tag.WireType() == WireBytes && !d.packed.active() {
		start := d.pos
		length, err := d.DecodeVarint()
		if err != nil {
			return dst, err
		}
		if length == 0 {
			return dst, nil
		}
		d.pos = start
	}
	v, err := read(tag)
	if err != nil {
		return dst, err
	}
	dst = append(dst, v)
	for d.packed.active() && d.pos < d.packed.end {
		if v, err = read(d.packed.tag); err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}
