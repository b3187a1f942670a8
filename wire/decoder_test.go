package wire_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anirudhraja/protokit/internal/testmsg"
	"github.com/anirudhraja/protokit/wire"
)

func TestDecoder_ScalarsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  testmsg.Scalars
	}{
		{"zero", testmsg.Scalars{}},
		{"small", testmsg.Scalars{
			Flag: true, U64: 1, U32: 1, S64: -1, S32: -1, F32: 1, F64: 1,
			Ratio: 0.5, Score: -2.25, Name: "hi", Data: []byte{0}, Color: testmsg.ColorRed,
			Count: -3, Size: 3,
		}},
		{"extremes", testmsg.Scalars{
			U64: math.MaxUint64, U32: math.MaxUint32,
			S64: math.MinInt64, S32: math.MinInt32,
			F32: math.MaxUint32, F64: math.MaxUint64,
			Ratio: math.MaxFloat32, Score: math.SmallestNonzeroFloat64,
			Count: math.MaxInt, Size: math.MaxUint,
		}},
		{"unicode", testmsg.Scalars{Name: "héllo, 世界", Color: testmsg.ColorBlue}},
		{"long bytes", testmsg.Scalars{Data: bytes.Repeat([]byte("abc"), 1000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := wire.Marshal(&tt.msg)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			got, err := wire.UnmarshalAs[testmsg.Scalars](data)
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if diff := cmp.Diff(tt.msg, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoder_AllDefaultsEncodeEmpty(t *testing.T) {
	data, err := wire.Marshal(&testmsg.Scalars{})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty encoding, got %x", data)
	}

	got, err := wire.UnmarshalAs[testmsg.Scalars](nil)
	if err != nil {
		t.Fatalf("empty input should decode: %v", err)
	}
	if diff := cmp.Diff(testmsg.Scalars{}, got); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestDecoder_LengthPrefixBoundary(t *testing.T) {
	tests := []struct {
		name     string
		dataLen  int
		expected []byte // leading bytes of the encoding
	}{
		// Blob encodes to 2+125 = 127 bytes: one-byte length.
		{"127 byte embedded message", 125, []byte{0x1a, 0x7f, 0x0a, 0x7d}},
		// Blob encodes to 2+126 = 128 bytes: two-byte length.
		{"128 byte embedded message", 126, []byte{0x1a, 0x80, 0x01, 0x0a, 0x7e}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := testmsg.Outer{
				ID:   7,
				Blob: &testmsg.Blob{Data: bytes.Repeat([]byte{0x55}, tt.dataLen)},
				Note: "tail",
			}
			data, err := wire.Marshal(&msg)
			if err != nil {
				t.Fatal(err)
			}
			// Skip the leading id field (08 07).
			if !bytes.HasPrefix(data[2:], tt.expected) {
				t.Fatalf("expected prefix %x, got %x", tt.expected, data[2:2+len(tt.expected)])
			}
			got, err := wire.UnmarshalAs[testmsg.Outer](data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(msg, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoder_NestedRoundTrip(t *testing.T) {
	msg := testmsg.Outer{
		ID:   1,
		Leaf: &testmsg.Leaf{Name: "root", Value: -42},
		Children: []*testmsg.Leaf{
			{Name: "a", Value: 1},
			{},
			{Name: string(bytes.Repeat([]byte("z"), 300))},
		},
		Note: "done",
	}
	data, err := wire.Marshal(&msg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := wire.UnmarshalAs[testmsg.Outer](data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(msg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoder_UnknownFieldsAreSkipped(t *testing.T) {
	want := testmsg.Leaf{Name: "known", Value: 9}

	e := wire.NewEncoder()
	e.Uint64Field(50, 12345, 0)
	if err := e.StringField(testmsg.LeafName, want.Name, ""); err != nil {
		t.Fatal(err)
	}
	e.Fixed32Field(51, 7, 0)
	e.Fixed64Field(52, 8, 0)
	if err := e.MessageField(53, &testmsg.Outer{ID: 1, Leaf: &testmsg.Leaf{Name: "deep"}}); err != nil {
		t.Fatal(err)
	}
	e.PackedUint64s(54, []uint64{1, 2, 3})
	e.Int64Field(testmsg.LeafValue, want.Value, 0)
	e.EmptyField(55)
	e.Uint64Field(wire.MaxFieldNumber, 1, 0)

	got, err := wire.UnmarshalAs[testmsg.Leaf](e.Bytes())
	if err != nil {
		t.Fatalf("unknown fields should be skipped: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// decodeAny decodes data into a fresh value of the same type as proto.
func decodeAny(proto wire.Decodable, data []byte) error {
	switch proto.(type) {
	case *testmsg.Scalars:
		return wire.Unmarshal(data, new(testmsg.Scalars))
	case *testmsg.Outer:
		return wire.Unmarshal(data, new(testmsg.Outer))
	case *testmsg.Repeated:
		return wire.Unmarshal(data, new(testmsg.Repeated))
	}
	panic("unexpected type")
}

func TestDecoder_TruncationAlwaysFails(t *testing.T) {
	bigKey := wire.NewEncoder()
	bigKey.Uint64Field(1000, 1, 0)

	tests := []struct {
		name string
		msg  wire.Message
		raw  []byte
	}{
		{name: "varint", msg: &testmsg.Scalars{U64: 300}},
		{name: "fixed32", msg: &testmsg.Scalars{F32: 1}},
		{name: "fixed64", msg: &testmsg.Scalars{F64: 1}},
		{name: "string", msg: &testmsg.Scalars{Name: "hello"}},
		{name: "embedded message", msg: &testmsg.Outer{Leaf: &testmsg.Leaf{Name: "x", Value: 5}}},
		{name: "long embedded message", msg: &testmsg.Outer{Blob: &testmsg.Blob{Data: make([]byte, 200)}}},
		{name: "packed run", msg: &testmsg.Repeated{Values: []uint64{1, 300}}},
		{name: "multi-byte key", msg: &testmsg.Scalars{}, raw: bigKey.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.raw
			if data == nil {
				var err error
				if data, err = wire.Marshal(tt.msg); err != nil {
					t.Fatal(err)
				}
			}
			if err := decodeAny(tt.msg, data); err != nil {
				t.Fatalf("full input should decode: %v", err)
			}
			for n := 1; n < len(data); n++ {
				err := decodeAny(tt.msg, data[:n])
				if !errors.Is(err, wire.ErrDecodingFailed) {
					t.Fatalf("prefix of %d/%d bytes: expected decoding failure, got %v", n, len(data), err)
				}
			}
		})
	}
}

func TestDecoder_PackedAndUnpackedAreEquivalent(t *testing.T) {
	msg := testmsg.Repeated{
		Values: []uint64{0, 1, 300, math.MaxUint64},
		Deltas: []int64{-1, 0, 1, math.MinInt64},
		Flags:  []bool{true, false, true},
		Ratios: []float64{0, -1.5, math.Inf(1)},
		Colors: []testmsg.Color{testmsg.ColorGreen, testmsg.ColorUnspecified, testmsg.ColorBlue},
		Codes:  []uint32{0, 0xdeadbeef},
		Labels: []string{"", "b"},
	}

	packed, err := wire.Marshal(&msg)
	if err != nil {
		t.Fatal(err)
	}
	unpackedMsg := msg
	unpackedMsg.Unpacked = true
	unpacked, err := wire.Marshal(&unpackedMsg)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(packed, unpacked) {
		t.Fatal("packed and unpacked encodings should differ")
	}
	if len(packed) >= len(unpacked) {
		t.Errorf("packed encoding (%d bytes) should be smaller than unpacked (%d bytes)", len(packed), len(unpacked))
	}

	for name, data := range map[string][]byte{"packed": packed, "unpacked": unpacked} {
		t.Run(name, func(t *testing.T) {
			got, err := wire.UnmarshalAs[testmsg.Repeated](data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(msg, got); diff != "" {
				t.Errorf("decoded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoder_PackedRunsConcatenate(t *testing.T) {
	e := wire.NewEncoder()
	e.PackedUint64s(testmsg.RepeatedValues, []uint64{1, 2})
	e.Uint64Field(testmsg.RepeatedValues, 3, 0)
	e.PackedBools(testmsg.RepeatedFlags, []bool{true})
	e.PackedUint64s(testmsg.RepeatedValues, []uint64{4})

	got, err := wire.UnmarshalAs[testmsg.Repeated](e.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	want := testmsg.Repeated{Values: []uint64{1, 2, 3, 4}, Flags: []bool{true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoder_EmptyPackedRun(t *testing.T) {
	e := wire.NewEncoder()
	e.PackedField(testmsg.RepeatedValues, func(*wire.Encoder) {})
	e.PackedUint64s(testmsg.RepeatedDeltas, nil)
	if e.Len() != 0 {
		t.Fatalf("empty runs should encode to nothing, got %x", e.Bytes())
	}
	got, err := wire.UnmarshalAs[testmsg.Repeated](e.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testmsg.Repeated{}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// Other encoders may still write a zero-length run.
	input := []byte{0x0a, 0x00, 0x08, 0x05, 0x32, 0x00, 0x0a, 0x01, 0x06}
	got, err = wire.UnmarshalAs[testmsg.Repeated](input)
	if err != nil {
		t.Fatalf("zero-length runs should decode: %v", err)
	}
	want := testmsg.Repeated{Values: []uint64{5, 6}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoder_EmptyPackedRunNeedsAppendRepeated(t *testing.T) {
	d := wire.NewDecoder([]byte{0x0a, 0x00})
	tag, ok, err := d.NextField()
	if err != nil || !ok {
		t.Fatalf("NextField: ok=%v err=%v", ok, err)
	}
	if _, err := d.Uint64Field(tag); !errors.Is(err, wire.ErrDecodingFailed) {
		t.Errorf("a single-element reader has nothing to return, got %v", err)
	}
}

func TestAppendRepeated_StopsAtRunEnd(t *testing.T) {
	// A packed run for field 1 followed by an unpacked element of field 2.
	d := wire.NewDecoder([]byte{0x0a, 0x02, 0x01, 0x02, 0x10, 0x03})
	tag, _, err := d.NextField()
	if err != nil {
		t.Fatal(err)
	}
	values, err := wire.AppendRepeated(d, tag, []uint64{9}, d.Uint64Field)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint64{9, 1, 2}, values); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	tag, ok, err := d.NextField()
	if err != nil || !ok || tag != wire.MakeTag(2, wire.WireVarint) {
		t.Fatalf("expected field 2 after the run, got tag=%v ok=%v err=%v", tag, ok, err)
	}
}

func TestDecoder_PackedRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"element straddles run end", []byte{0x0a, 0x01, 0x80, 0x01}},
		{"fixed element straddles run end", []byte{0x32, 0x03, 0x01, 0x02, 0x03, 0x04}},
		{"run longer than message", []byte{0x0a, 0x05, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wire.UnmarshalAs[testmsg.Repeated](tt.input)
			if !errors.Is(err, wire.ErrDecodingFailed) {
				t.Errorf("expected decoding failure, got %v", err)
			}
		})
	}
}

func TestDecoder_InvalidKeys(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"field number zero", []byte{0x00, 0x01}},
		{"start group", []byte{0x0b}},
		{"end group", []byte{0x0c}},
		{"wire type 6", []byte{0x0e, 0x00}},
		{"wire type 7", []byte{0x0f, 0x00}},
		{"field number too large", wire.AppendVarint(nil, uint64(wire.MaxFieldNumber+1)<<3)},
		{"overlong key", append(bytes.Repeat([]byte{0xff}, 10), 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wire.Unmarshal(tt.input, new(testmsg.Scalars))
			if !errors.Is(err, wire.ErrDecodingFailed) {
				t.Errorf("expected decoding failure, got %v", err)
			}
		})
	}
}

func TestDecoder_WireTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		write func(e *wire.Encoder)
	}{
		{"varint read as fixed32", func(e *wire.Encoder) { e.Uint64Field(testmsg.ScalarsF32, 1, 0) }},
		{"fixed64 read as varint", func(e *wire.Encoder) { e.Fixed64Field(testmsg.ScalarsU64, 1, 0) }},
		{"varint read as string", func(e *wire.Encoder) { e.Uint64Field(testmsg.ScalarsName, 1, 0) }},
		{"fixed32 read as bytes", func(e *wire.Encoder) { e.Fixed32Field(testmsg.ScalarsData, 1, 0) }},
		{"varint read as float", func(e *wire.Encoder) { e.Uint64Field(testmsg.ScalarsRatio, 1, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := wire.NewEncoder()
			tt.write(e)
			err := wire.Unmarshal(e.Bytes(), new(testmsg.Scalars))
			if !errors.Is(err, wire.ErrDecodingFailed) {
				t.Errorf("expected decoding failure, got %v", err)
			}
		})
	}
}

func TestDecoder_Narrowing(t *testing.T) {
	read := func(v uint64, fn func(*wire.Decoder, wire.Tag) error) error {
		e := wire.NewEncoder()
		e.Uint64Field(1, v, math.MaxUint64)
		d := wire.NewDecoder(e.Bytes())
		tag, ok, err := d.NextField()
		if err != nil || !ok {
			t.Fatalf("NextField: ok=%v err=%v", ok, err)
		}
		return fn(d, tag)
	}
	uint8Field := func(d *wire.Decoder, tag wire.Tag) error { _, err := d.Uint8Field(tag); return err }
	uint16Field := func(d *wire.Decoder, tag wire.Tag) error { _, err := d.Uint16Field(tag); return err }
	uint32Field := func(d *wire.Decoder, tag wire.Tag) error { _, err := d.Uint32Field(tag); return err }

	tests := []struct {
		name    string
		value   uint64
		fn      func(*wire.Decoder, wire.Tag) error
		wantErr bool
	}{
		{"uint8 max", math.MaxUint8, uint8Field, false},
		{"uint8 overflow", math.MaxUint8 + 1, uint8Field, true},
		{"uint16 max", math.MaxUint16, uint16Field, false},
		{"uint16 overflow", math.MaxUint16 + 1, uint16Field, true},
		{"uint32 max", math.MaxUint32, uint32Field, false},
		{"uint32 overflow", math.MaxUint32 + 1, uint32Field, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := read(tt.value, tt.fn)
			if tt.wantErr != (err != nil) {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, wire.ErrDecodingFailed) {
				t.Errorf("expected decoding failure kind, got %v", err)
			}
		})
	}
}

func TestDecoder_DoubleAcceptsFloat(t *testing.T) {
	e := wire.NewEncoder()
	e.FloatField(testmsg.ScalarsScore, 1.5, 0)
	got, err := wire.UnmarshalAs[testmsg.Scalars](e.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 1.5 {
		t.Errorf("expected widened 1.5, got %v", got.Score)
	}
}

func TestDecoder_UnknownEnumUsesFallback(t *testing.T) {
	e := wire.NewEncoder()
	e.Uint64Field(testmsg.ScalarsColor, 99, 0)
	got, err := wire.UnmarshalAs[testmsg.Scalars](e.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got.Color != testmsg.ColorUnspecified {
		t.Errorf("expected fallback color, got %v", got.Color)
	}
}

func TestDecoder_ErrorCarriesPath(t *testing.T) {
	// Outer.leaf (2) -> Leaf.name (1) holding the invalid byte 0xff.
	input := []byte{0x12, 0x03, 0x0a, 0x01, 0xff}

	var partial testmsg.Outer
	err := wire.Unmarshal(input, &partial)
	if !errors.Is(err, wire.ErrDecodingFailed) {
		t.Fatalf("expected decoding failure, got %v", err)
	}
	var fe *wire.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldError, got %T", err)
	}
	if diff := cmp.Diff([]wire.FieldNumber{testmsg.OuterLeaf}, fe.FieldPath); diff != "" {
		t.Errorf("field path mismatch (-want +got):\n%s", diff)
	}
	if fe.Offset != 3 {
		t.Errorf("expected offset 3, got %d", fe.Offset)
	}

	got, err := wire.UnmarshalAs[testmsg.Outer](input)
	if err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff(testmsg.Outer{}, got); diff != "" {
		t.Errorf("UnmarshalAs should return the zero value on failure (-want +got):\n%s", diff)
	}
}

func TestDecoder_DepthLimit(t *testing.T) {
	prev := wire.CurrentConfig()
	t.Cleanup(func() { wire.SetConfig(prev) })

	cfg := prev
	cfg.MaxDepth = 5
	wire.SetConfig(cfg)

	// A chain of n nodes nests n-1 embedded messages.
	data, err := wire.Marshal(testmsg.Chain(6))
	if err != nil {
		t.Fatal(err)
	}
	got, err := wire.UnmarshalAs[testmsg.Node](data)
	if err != nil {
		t.Fatalf("5 nested levels should decode: %v", err)
	}
	if got.Depth() != 6 {
		t.Errorf("expected depth 6, got %d", got.Depth())
	}

	data, err = wire.Marshal(testmsg.Chain(7))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wire.UnmarshalAs[testmsg.Node](data); !errors.Is(err, wire.ErrDecodingFailed) {
		t.Fatalf("6 nested levels should fail, got %v", err)
	}

	wire.SetConfig(prev)
	data, err = wire.Marshal(testmsg.Chain(1000))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wire.UnmarshalAs[testmsg.Node](data); !errors.Is(err, wire.ErrDecodingFailed) {
		t.Fatalf("1000 levels should exceed the default limit, got %v", err)
	}
}

type failingBody struct{ err error }

func (f failingBody) UnmarshalProtobuf(d *wire.Decoder) error {
	if _, _, err := d.NextField(); err != nil {
		return err
	}
	return f.err
}

func TestDecoder_ScopeRestoredAfterEmbeddedMessage(t *testing.T) {
	e := wire.NewEncoder()
	if err := e.MessageField(1, &testmsg.Leaf{Name: "inner", Value: 3}); err != nil {
		t.Fatal(err)
	}
	e.Uint64Field(2, 77, 0)
	data := e.Bytes()

	t.Run("body leaves bytes unread", func(t *testing.T) {
		d := wire.NewDecoder(data)
		tag, _, _ := d.NextField()
		if err := d.MessageFunc(tag, func(*wire.Decoder) error { return nil }); err != nil {
			t.Fatal(err)
		}
		if d.Depth() != 0 {
			t.Fatalf("expected depth 0, got %d", d.Depth())
		}
		tag, ok, err := d.NextField()
		if err != nil || !ok || tag.FieldNumber() != 2 {
			t.Fatalf("expected field 2 after the embedded message, got %d ok=%v err=%v", tag.FieldNumber(), ok, err)
		}
		if v, err := d.Uint64Field(tag); err != nil || v != 77 {
			t.Fatalf("expected 77, got %d err=%v", v, err)
		}
	})

	t.Run("body fails", func(t *testing.T) {
		boom := errors.New("boom")
		d := wire.NewDecoder(data)
		tag, _, _ := d.NextField()
		err := d.MessageField(tag, failingBody{err: boom})
		if !errors.Is(err, boom) || !errors.Is(err, wire.ErrDecodingFailed) {
			t.Fatalf("expected wrapped boom, got %v", err)
		}
		if d.Depth() != 0 {
			t.Errorf("scope not restored: depth %d", d.Depth())
		}
		if d.Remaining() != len(data)-d.Offset() {
			t.Errorf("outer end not restored: remaining %d at offset %d", d.Remaining(), d.Offset())
		}
	})
}

func TestDecoder_Strings(t *testing.T) {
	t.Run("invalid utf8", func(t *testing.T) {
		err := wire.Unmarshal([]byte{0x52, 0x01, 0xff}, new(testmsg.Scalars))
		if !errors.Is(err, wire.ErrDecodingFailed) {
			t.Errorf("expected decoding failure, got %v", err)
		}
	})

	t.Run("raw bytes alias the input", func(t *testing.T) {
		input := []byte{0x5a, 0x02, 'o', 'k', 0x08, 0x01}
		d := wire.NewDecoder(input)
		tag, _, _ := d.NextField()
		raw, err := d.RawBytesField(tag)
		if err != nil {
			t.Fatal(err)
		}
		if string(raw) != "ok" || cap(raw) != 2 {
			t.Fatalf("unexpected view %q cap %d", raw, cap(raw))
		}
		input[2] = 'n'
		if string(raw) != "nk" {
			t.Errorf("raw view should alias the input, got %q", raw)
		}
		_ = append(raw, 'x')
		if input[4] != 0x08 {
			t.Error("appending to the raw view overwrote the input")
		}
	})

	t.Run("bytes are copied", func(t *testing.T) {
		input := []byte{0x5a, 0x02, 'o', 'k'}
		got, err := wire.UnmarshalAs[testmsg.Scalars](input)
		if err != nil {
			t.Fatal(err)
		}
		input[2] = 'n'
		if string(got.Data) != "ok" {
			t.Errorf("decoded bytes should not alias the input, got %q", got.Data)
		}
	})
}
