// Package dump renders protobuf binaries without a schema, in the spirit of
// protoc --decode_raw.
package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anirudhraja/protokit/wire"
)

// Options controls how payloads are rendered.
type Options struct {
	// MaxDepth is how many levels of length-delimited payloads are tried as
	// embedded messages. Zero prints every payload as a string or bytes.
	MaxDepth int
	JSON     bool
}

// Node is one field of a dumped message. Offsets are relative to the payload
// that holds the field.
type Node struct {
	Field    wire.FieldNumber `json:"field"`
	Type     string           `json:"type"`
	Offset   int              `json:"offset"`
	Value    any              `json:"value,omitempty"`
	Children []Node           `json:"children,omitempty"`
}

// Tree parses data into nodes, guessing which payloads are embedded
// messages.
func Tree(data []byte, maxDepth int) ([]Node, error) {
	fields, err := wire.ParseRaw(data)
	if err != nil {
		return nil, err
	}
	return buildNodes(fields, maxDepth), nil
}

func buildNodes(fields []wire.RawField, depth int) []Node {
	nodes := make([]Node, 0, len(fields))
	for _, f := range fields {
		nodes = append(nodes, buildNode(f, depth))
	}
	return nodes
}

func buildNode(f wire.RawField, depth int) Node {
	n := Node{Field: f.Number, Type: f.WireType.String(), Offset: f.Offset}
	if f.WireType != wire.WireBytes {
		n.Value = f.Value()
		return n
	}

	// Readable text wins over the message guess: short strings often
	// parse as valid fields too.
	if isText(f.Bytes) {
		n.Type = "string"
		n.Value = string(f.Bytes)
		return n
	}
	if depth > 0 && len(f.Bytes) > 0 {
		if children, err := f.Nested(); err == nil {
			n.Type = "message"
			n.Children = buildNodes(children, depth-1)
			return n
		}
	}
	n.Value = f.Bytes
	return n
}

func isText(b []byte) bool {
	if len(b) == 0 || !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Write renders data to w.
func Write(w io.Writer, data []byte, opts Options) error {
	nodes, err := Tree(data, opts.MaxDepth)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	}
	var buf bytes.Buffer
	writeText(&buf, nodes, 0)
	_, err = w.Write(buf.Bytes())
	return err
}

func writeText(buf *bytes.Buffer, nodes []Node, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, n := range nodes {
		if n.Type == "message" {
			fmt.Fprintf(buf, "%s%d {\n", pad, n.Field)
			writeText(buf, n.Children, indent+1)
			fmt.Fprintf(buf, "%s}\n", pad)
			continue
		}
		fmt.Fprintf(buf, "%s%d: %s\n", pad, n.Field, formatValue(n))
	}
}

func formatValue(n Node) string {
	switch v := n.Value.(type) {
	case uint64:
		if n.Type == wire.WireFixed64.String() {
			return fmt.Sprintf("0x%016x", v)
		}
		return strconv.FormatUint(v, 10)
	case uint32:
		return fmt.Sprintf("0x%08x", v)
	case string:
		return strconv.Quote(v)
	case []byte:
		return strconv.Quote(string(v))
	case nil:
		return `""`
	default:
		return fmt.Sprint(v)
	}
}
