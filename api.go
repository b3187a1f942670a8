// Package protokit encodes and decodes the protobuf wire format without
// generated code. Message types describe themselves by implementing
// Encodable and Decodable against the field-level codec in package wire.
//
// Encode never returns partial output. For decoding, DecodeAs is
// all-or-nothing: on failure it returns the zero value. Decode fills a
// caller-owned value in place and may leave it partially populated when it
// fails.
package protokit

import (
	"github.com/anirudhraja/protokit/wire"
)

// ===== CAPABILITY CONTRACTS =====

type (
	// Encodable is implemented by types that can encode themselves.
	Encodable = wire.Encodable
	// Decodable is implemented by types that can decode themselves.
	Decodable = wire.Decodable
	// Message is both Encodable and Decodable.
	Message = wire.Message
	// Enum is implemented by types that map to a protobuf enum.
	Enum = wire.Enum
)

// Encoding and decoding failures match one of these under errors.Is.
var (
	ErrEncodingFailed = wire.ErrEncodingFailed
	ErrDecodingFailed = wire.ErrDecodingFailed
)

// ===== TOP-LEVEL OPERATIONS =====

// Encode returns the wire encoding of v.
func Encode(v Encodable) ([]byte, error) {
	return wire.Marshal(v)
}

// Decode populates v from data. Fields absent from data are left as they
// are, so v should normally be a fresh value. On failure v may hold the
// fields decoded before the error; discard it, or use DecodeAs.
func Decode(data []byte, v Decodable) error {
	return wire.Unmarshal(data, v)
}

// DecodeAs decodes data into a new value of type T:
//
//	user, err := protokit.DecodeAs[User](data)
func DecodeAs[T any, PT interface {
	*T
	Decodable
}](data []byte) (T, error) {
	return wire.UnmarshalAs[T, PT](data)
}
