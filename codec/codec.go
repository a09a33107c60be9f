// Package codec centralizes model snapshot payload encoding.
//
// Snapshots are self-describing: the container header records the codec
// and compression names, and ByName / CompressionByName resolve them on
// load. Changing a codec is a breaking-change boundary for persisted
// bytes.
package codec

import "fmt"

// Codec encodes/decodes snapshot payloads.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = JSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal marshals v with c, falling back to Default when c is
// nil, and panics on failure. Intended for tests and fixtures.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
