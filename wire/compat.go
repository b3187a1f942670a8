package wire

import (
	"os"
	"strconv"
	"sync/atomic"
)

// Config controls optional behaviors of encoders and decoders. Defaults
// follow standard protobuf semantics.
type Config struct {
	// MaxDepth bounds how deeply embedded messages may nest while decoding.
	// Input nested deeper than this fails rather than exhausting the stack.
	MaxDepth int

	// ValidateUTF8: when true (default), strings are checked for valid
	// UTF-8 on both encode and decode and invalid text fails the operation.
	ValidateUTF8 bool

	// MaxPooledBuffer: encoder buffers that grew beyond this many bytes are
	// dropped after Marshal instead of being kept for reuse.
	MaxPooledBuffer int
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        100,
		ValidateUTF8:    true,
		MaxPooledBuffer: 64 << 10,
	}
}

var config atomic.Pointer[Config]

// SetConfig sets the global wire configuration. Encoders and decoders
// capture the configuration when they are created.
func SetConfig(c Config) {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultConfig().MaxDepth
	}
	config.Store(&c)
}

// CurrentConfig returns the configuration in effect.
func CurrentConfig() Config {
	return *config.Load()
}

func init() {
	c := DefaultConfig()
	// Optional env toggles for test harnesses; defaults stay unchanged if unset.
	if v, err := strconv.Atoi(os.Getenv("PROTOKIT_MAX_DEPTH")); err == nil && v > 0 {
		c.MaxDepth = v
	}
	if v := os.Getenv("PROTOKIT_SKIP_UTF8_CHECK"); v == "1" || v == "true" {
		c.ValidateUTF8 = false
	}
	if v, err := strconv.Atoi(os.Getenv("PROTOKIT_MAX_POOLED_BUFFER")); err == nil && v >= 0 {
		c.MaxPooledBuffer = v
	}
	config.Store(&c)
}
