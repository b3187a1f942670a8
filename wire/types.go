package wire

// ===== PROTOBUF WIRE FORMAT TYPES =====

// WireType represents protobuf wire format types
type WireType uint8

const (
	WireVarint  WireType = 0 // uint32, uint64, sint32, sint64, bool, enum
	WireFixed64 WireType = 1 // fixed64, double
	WireBytes   WireType = 2 // string, bytes, embedded messages, packed repeated fields
	WireFixed32 WireType = 5 // fixed32, float
)

// Valid reports whether wt is one of the supported wire types. The group
// wire types (3 and 4) are not supported.
func (wt WireType) Valid() bool {
	switch wt {
	case WireVarint, WireFixed64, WireBytes, WireFixed32:
		return true
	}
	return false
}

func (wt WireType) String() string {
	switch wt {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireBytes:
		return "bytes"
	case WireFixed32:
		return "fixed32"
	default:
		return "invalid"
	}
}

// FieldNumber represents a protobuf field number
type FieldNumber uint32

// MaxFieldNumber is the largest field number protobuf allows.
const MaxFieldNumber FieldNumber = 1<<29 - 1

// Tag represents a protobuf field key (field number + wire type)
type Tag uint64

// MakeTag creates a tag from field number and wire type
func MakeTag(fieldNumber FieldNumber, wireType WireType) Tag {
	return Tag(uint64(fieldNumber)<<3 | uint64(wireType))
}

// ParseTag parses a tag into field number and wire type
func ParseTag(tag Tag) (FieldNumber, WireType) {
	return tag.FieldNumber(), tag.WireType()
}

// FieldNumber returns the field number packed into the tag.
func (t Tag) FieldNumber() FieldNumber {
	return FieldNumber(t >> 3)
}

// WireType returns the wire type packed into the tag.
func (t Tag) WireType() WireType {
	return WireType(t & 7)
}

// TagAs converts the field number of t into a collaborator-defined tag
// enumeration, so decode loops can switch on their own constants:
//
//	switch wire.TagAs[userField](tag) {
//	case userName:
//		...
//	}
func TagAs[T ~uint32](t Tag) T {
	return T(t.FieldNumber())
}
