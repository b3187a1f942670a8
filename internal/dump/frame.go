package dump

import (
	"encoding/binary"
	"fmt"
)

// gRPC length-prefixed framing:
// - 1 byte: flags
// - 4 bytes: big-endian message length
// - N bytes: message payload
const (
	// FlagCompressed marks a payload compressed with the negotiated encoding.
	FlagCompressed byte = 0x01
	// FlagTrailer marks a gRPC-Web trailer frame.
	FlagTrailer byte = 0x80
	// HeaderSize is the size of the frame header (1 byte flags + 4 bytes length)
	HeaderSize = 5
)

// Frame is one length-prefixed gRPC message.
type Frame struct {
	Flags byte
	Data  []byte
}

// EncodeFrame encodes a single frame.
func EncodeFrame(frame Frame) []byte {
	buffer := make([]byte, HeaderSize+len(frame.Data))
	buffer[0] = frame.Flags
	binary.BigEndian.PutUint32(buffer[1:5], uint32(len(frame.Data)))
	copy(buffer[HeaderSize:], frame.Data)
	return buffer
}

// SplitFrames splits buffer into frames. Unlike a streaming reader it
// rejects a trailing partial frame, since the whole capture is at hand.
// Frame data aliases buffer.
func SplitFrames(buffer []byte) ([]Frame, error) {
	var frames []Frame
	offset := 0
	for offset < len(buffer) {
		if offset+HeaderSize > len(buffer) {
			return nil, fmt.Errorf("incomplete frame header at offset %d", offset)
		}
		length := binary.BigEndian.Uint32(buffer[offset+1 : offset+HeaderSize])
		end := offset + HeaderSize + int(length)
		if end > len(buffer) {
			return nil, fmt.Errorf("frame at offset %d needs %d bytes, %d left", offset, length, len(buffer)-offset-HeaderSize)
		}
		frames = append(frames, Frame{
			Flags: buffer[offset],
			Data:  buffer[offset+HeaderSize : end : end],
		})
		offset = end
	}
	return frames, nil
}
