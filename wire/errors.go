package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// The two error kinds. Every error returned by this package matches exactly
// one of them under errors.Is.
var (
	ErrEncodingFailed = errors.New("protokit: encoding failed")
	ErrDecodingFailed = errors.New("protokit: decoding failed")
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []FieldNumber // outermost first, e.g. [4 2 1]
	Offset    int           // byte offset into the decoded input, -1 when encoding
	Err       error         // wraps ErrEncodingFailed or ErrDecodingFailed
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if len(e.FieldPath) > 0 {
		b.WriteString(" at field path ")
		for i, n := range e.FieldPath {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(strconv.FormatUint(uint64(n), 10))
		}
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

func decodeError(offset int, format string, args ...any) error {
	return &FieldError{
		Offset: offset,
		Err:    fmt.Errorf("%w: %s", ErrDecodingFailed, fmt.Sprintf(format, args...)),
	}
}

func encodeError(format string, args ...any) error {
	return &FieldError{
		Offset: -1,
		Err:    fmt.Errorf("%w: %s", ErrEncodingFailed, fmt.Sprintf(format, args...)),
	}
}

// wrapWithField prefixes the error's field path with the enclosing field.
// Errors produced outside this package (collaborator errors) keep their
// identity under errors.Is and are tagged with the kind of the operation.
func wrapWithField(err error, n FieldNumber, kind error) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]FieldNumber{n}, fe.FieldPath...),
			Offset:    fe.Offset,
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []FieldNumber{n},
		Offset:    -1,
		Err:       fmt.Errorf("%w: %w", kind, err),
	}
}
