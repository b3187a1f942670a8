package wire

import "unicode/utf8"

// ENCODER METHODS

// EncodeBytes writes a varint length followed by data, with no field key.
func (e *Encoder) EncodeBytes(data []byte) {
	e.EncodeVarint(uint64(len(data)))
	copy(e.extend(len(data)), data)
}

// EncodeString writes s as length-delimited bytes. It fails when s is not
// valid UTF-8, since protobuf strings must be.
func (e *Encoder) EncodeString(s string) error {
	if e.validateUTF8 && !utf8.ValidString(s) {
		return encodeError("string is not valid UTF-8")
	}
	e.EncodeVarint(uint64(len(s)))
	copy(e.extend(len(s)), s)
	return nil
}

// UTILITY FUNCTIONS

// BytesSize returns the size needed to encode the given bytes
func BytesSize(data []byte) int {
	return VarintSize(uint64(len(data))) + len(data)
}

// DECODER METHODS

// DecodeRawBytes decodes a length-delimited region without copying. The
// returned slice shares the decoder's input and has its capacity clipped,
// so appending to it never overwrites the input.
func (d *Decoder) DecodeRawBytes() ([]byte, error) {
	start := d.pos
	length, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(d.end-d.pos) {
		return nil, decodeError(start, "length %d exceeds the %d bytes left in the message", length, d.end-d.pos)
	}
	n := int(length)
	data := d.buf[d.pos : d.pos+n : d.pos+n]
	d.pos += n
	return data, nil
}

// DecodeBytes decodes a length-delimited byte array into a fresh copy.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	raw, err := d.DecodeRawBytes()
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

// DecodeString decodes a length-delimited string
func (d *Decoder) DecodeString() (string, error) {
	start := d.pos
	raw, err := d.DecodeRawBytes()
	if err != nil {
		return "", err
	}
	if d.validateUTF8 && !utf8.Valid(raw) {
		return "", decodeError(start, "string is not valid UTF-8")
	}
	return string(raw), nil
}

// SkipBytes skips over a length-delimited byte array
func (d *Decoder) SkipBytes() error {
	_, err := d.DecodeRawBytes()
	return err
}
