// Package testmsg holds hand-written message types used to exercise the
// codec. Their field layout mirrors testdata/sample.proto so encodings can be
// compared against the reference protobuf runtime.
package testmsg

import (
	"github.com/anirudhraja/protokit/wire"
)

// Color mirrors the sample.proto Color enum.
type Color int32

const (
	ColorUnspecified Color = 0
	ColorRed         Color = 1
	ColorGreen       Color = 2
	ColorBlue        Color = 3
)

// ProtobufValue implements wire.Enum.
func (c Color) ProtobufValue() uint64 {
	return uint64(c)
}

// ColorFromValue maps a wire value to a known Color.
func ColorFromValue(v uint64) (Color, bool) {
	if v > uint64(ColorBlue) {
		return ColorUnspecified, false
	}
	return Color(v), true
}

// Field numbers of Scalars.
const (
	ScalarsFlag  wire.FieldNumber = 1
	ScalarsU64   wire.FieldNumber = 2
	ScalarsU32   wire.FieldNumber = 3
	ScalarsS64   wire.FieldNumber = 4
	ScalarsS32   wire.FieldNumber = 5
	ScalarsF32   wire.FieldNumber = 6
	ScalarsF64   wire.FieldNumber = 7
	ScalarsRatio wire.FieldNumber = 8
	ScalarsScore wire.FieldNumber = 9
	ScalarsName  wire.FieldNumber = 10
	ScalarsData  wire.FieldNumber = 11
	ScalarsColor wire.FieldNumber = 12
	ScalarsCount wire.FieldNumber = 13
	ScalarsSize  wire.FieldNumber = 14
)

// Scalars has one field of every scalar kind.
type Scalars struct {
	Flag  bool
	U64   uint64
	U32   uint32
	S64   int64
	S32   int32
	F32   uint32
	F64   uint64
	Ratio float32
	Score float64
	Name  string
	Data  []byte
	Color Color
	Count int
	Size  uint
}

func (m *Scalars) MarshalProtobuf(e *wire.Encoder) error {
	e.BoolField(ScalarsFlag, m.Flag, false)
	e.Uint64Field(ScalarsU64, m.U64, 0)
	e.Uint32Field(ScalarsU32, m.U32, 0)
	e.Int64Field(ScalarsS64, m.S64, 0)
	e.Int32Field(ScalarsS32, m.S32, 0)
	e.Fixed32Field(ScalarsF32, m.F32, 0)
	e.Fixed64Field(ScalarsF64, m.F64, 0)
	e.FloatField(ScalarsRatio, m.Ratio, 0)
	e.DoubleField(ScalarsScore, m.Score, 0)
	if err := e.StringField(ScalarsName, m.Name, ""); err != nil {
		return err
	}
	e.BytesField(ScalarsData, m.Data)
	e.EnumField(ScalarsColor, m.Color, ColorUnspecified)
	e.IntField(ScalarsCount, m.Count, 0)
	e.UintField(ScalarsSize, m.Size, 0)
	return nil
}

func (m *Scalars) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch tag.FieldNumber() {
		case ScalarsFlag:
			m.Flag, err = d.BoolField(tag)
		case ScalarsU64:
			m.U64, err = d.Uint64Field(tag)
		case ScalarsU32:
			m.U32, err = d.Uint32Field(tag)
		case ScalarsS64:
			m.S64, err = d.Int64Field(tag)
		case ScalarsS32:
			m.S32, err = d.Int32Field(tag)
		case ScalarsF32:
			m.F32, err = d.Fixed32Field(tag)
		case ScalarsF64:
			m.F64, err = d.Fixed64Field(tag)
		case ScalarsRatio:
			m.Ratio, err = d.FloatField(tag)
		case ScalarsScore:
			m.Score, err = d.DoubleField(tag)
		case ScalarsName:
			m.Name, err = d.StringField(tag)
		case ScalarsData:
			m.Data, err = d.BytesField(tag)
		case ScalarsColor:
			m.Color, err = wire.DecodeEnum(d, tag, ColorFromValue, ColorUnspecified)
		case ScalarsCount:
			m.Count, err = d.IntField(tag)
		case ScalarsSize:
			m.Size, err = d.UintField(tag)
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

// Field numbers of Leaf.
const (
	LeafName  wire.FieldNumber = 1
	LeafValue wire.FieldNumber = 2
)

type Leaf struct {
	Name  string
	Value int64
}

func (m *Leaf) MarshalProtobuf(e *wire.Encoder) error {
	if err := e.StringField(LeafName, m.Name, ""); err != nil {
		return err
	}
	e.Int64Field(LeafValue, m.Value, 0)
	return nil
}

func (m *Leaf) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch tag.FieldNumber() {
		case LeafName:
			m.Name, err = d.StringField(tag)
		case LeafValue:
			m.Value, err = d.Int64Field(tag)
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

// BlobData is the only field of Blob.
const BlobData wire.FieldNumber = 1

// Blob wraps a bytes payload; its encoded size is easy to steer, which makes
// it handy for length-prefix boundary cases.
type Blob struct {
	Data []byte
}

func (m *Blob) MarshalProtobuf(e *wire.Encoder) error {
	e.BytesField(BlobData, m.Data)
	return nil
}

func (m *Blob) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if tag.FieldNumber() == BlobData {
			m.Data, err = d.BytesField(tag)
		} else {
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

// Field numbers of Outer.
const (
	OuterID       wire.FieldNumber = 1
	OuterLeaf     wire.FieldNumber = 2
	OuterBlob     wire.FieldNumber = 3
	OuterChildren wire.FieldNumber = 4
	OuterNote     wire.FieldNumber = 5
)

// Outer nests other messages, singly and repeated.
type Outer struct {
	ID       uint64
	Leaf     *Leaf
	Blob     *Blob
	Children []*Leaf
	Note     string
}

func (m *Outer) MarshalProtobuf(e *wire.Encoder) error {
	e.Uint64Field(OuterID, m.ID, 0)
	if m.Leaf != nil {
		if err := e.MessageField(OuterLeaf, m.Leaf); err != nil {
			return err
		}
	}
	if m.Blob != nil {
		if err := e.MessageField(OuterBlob, m.Blob); err != nil {
			return err
		}
	}
	for _, c := range m.Children {
		if err := e.MessageField(OuterChildren, c); err != nil {
			return err
		}
	}
	return e.StringField(OuterNote, m.Note, "")
}

func (m *Outer) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch tag.FieldNumber() {
		case OuterID:
			m.ID, err = d.Uint64Field(tag)
		case OuterLeaf:
			m.Leaf = new(Leaf)
			err = d.MessageField(tag, m.Leaf)
		case OuterBlob:
			m.Blob = new(Blob)
			err = d.MessageField(tag, m.Blob)
		case OuterChildren:
			var c Leaf
			if c, err = wire.ReadMessage[Leaf](d, tag); err == nil {
				m.Children = append(m.Children, &c)
			}
		case OuterNote:
			m.Note, err = d.StringField(tag)
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

// Field numbers of Repeated.
const (
	RepeatedValues wire.FieldNumber = 1
	RepeatedDeltas wire.FieldNumber = 2
	RepeatedFlags  wire.FieldNumber = 3
	RepeatedRatios wire.FieldNumber = 4
	RepeatedColors wire.FieldNumber = 5
	RepeatedCodes  wire.FieldNumber = 6
	RepeatedLabels wire.FieldNumber = 7
)

// Repeated has repeated fields of each element encoding. Scalars are written
// as packed runs unless Unpacked is set; decoding accepts both forms.
type Repeated struct {
	Values []uint64
	Deltas []int64
	Flags  []bool
	Ratios []float64
	Colors []Color
	Codes  []uint32
	Labels []string

	Unpacked bool
}

func (m *Repeated) MarshalProtobuf(e *wire.Encoder) error {
	if m.Unpacked {
		m.marshalUnpacked(e)
	} else {
		e.PackedUint64s(RepeatedValues, m.Values)
		e.PackedInt64s(RepeatedDeltas, m.Deltas)
		e.PackedBools(RepeatedFlags, m.Flags)
		e.PackedDoubles(RepeatedRatios, m.Ratios)
		wire.PackedEnums(e, RepeatedColors, m.Colors)
		e.PackedFixed32s(RepeatedCodes, m.Codes)
	}
	for _, s := range m.Labels {
		e.EncodeTag(RepeatedLabels, wire.WireBytes)
		if err := e.EncodeString(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *Repeated) marshalUnpacked(e *wire.Encoder) {
	for _, v := range m.Values {
		e.EncodeTag(RepeatedValues, wire.WireVarint)
		e.EncodeVarint(v)
	}
	for _, v := range m.Deltas {
		e.EncodeTag(RepeatedDeltas, wire.WireVarint)
		e.EncodeZigZag(v)
	}
	for _, v := range m.Flags {
		e.EncodeTag(RepeatedFlags, wire.WireVarint)
		e.EncodeBool(v)
	}
	for _, v := range m.Ratios {
		e.EncodeTag(RepeatedRatios, wire.WireFixed64)
		e.EncodeDouble(v)
	}
	for _, v := range m.Colors {
		e.EncodeTag(RepeatedColors, wire.WireVarint)
		e.EncodeVarint(v.ProtobufValue())
	}
	for _, v := range m.Codes {
		e.EncodeTag(RepeatedCodes, wire.WireFixed32)
		e.EncodeFixed32(v)
	}
}

func (m *Repeated) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch tag.FieldNumber() {
		case RepeatedValues:
			m.Values, err = wire.AppendRepeated(d, tag, m.Values, d.Uint64Field)
		case RepeatedDeltas:
			m.Deltas, err = wire.AppendRepeated(d, tag, m.Deltas, d.Int64Field)
		case RepeatedFlags:
			m.Flags, err = wire.AppendRepeated(d, tag, m.Flags, d.BoolField)
		case RepeatedRatios:
			m.Ratios, err = wire.AppendRepeated(d, tag, m.Ratios, d.DoubleField)
		case RepeatedColors:
			m.Colors, err = wire.AppendRepeated(d, tag, m.Colors, func(tag wire.Tag) (Color, error) {
				return wire.DecodeEnum(d, tag, ColorFromValue, ColorUnspecified)
			})
		case RepeatedCodes:
			m.Codes, err = wire.AppendRepeated(d, tag, m.Codes, d.Fixed32Field)
		case RepeatedLabels:
			var v string
			if v, err = d.StringField(tag); err == nil {
				m.Labels = append(m.Labels, v)
			}
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

// Field numbers of Node.
const (
	NodeChild wire.FieldNumber = 1
	NodeValue wire.FieldNumber = 2
)

// nodeField lets the Node decode loop switch on its own constants.
type nodeField uint32

const (
	nodeChild = nodeField(NodeChild)
	nodeValue = nodeField(NodeValue)
)

// Node is a recursive message, used for nesting-depth cases.
type Node struct {
	Child *Node
	Value uint64
}

// Chain returns a Node nested depth levels deep.
func Chain(depth int) *Node {
	n := &Node{Value: uint64(depth)}
	for i := depth - 1; i > 0; i-- {
		n = &Node{Child: n, Value: uint64(i)}
	}
	return n
}

// Depth returns the number of nodes in the chain starting at m.
func (m *Node) Depth() int {
	n := 0
	for ; m != nil; m = m.Child {
		n++
	}
	return n
}

func (m *Node) MarshalProtobuf(e *wire.Encoder) error {
	if m.Child != nil {
		if err := e.MessageField(NodeChild, m.Child); err != nil {
			return err
		}
	}
	e.Uint64Field(NodeValue, m.Value, 0)
	return nil
}

func (m *Node) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch wire.TagAs[nodeField](tag) {
		case nodeChild:
			m.Child = new(Node)
			err = d.MessageField(tag, m.Child)
		case nodeValue:
			m.Value, err = d.Uint64Field(tag)
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}
