// Package codec encodes Value trees as JSON text or as a BSON-like binary
// document. Both encodings round-trip the numeric aggregates: JSON wraps
// them as {"TypeName": [...]} and the binary form gives each aggregate its
// own tag.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeusync/thunder/internal/core/variant"
)

var (
	ErrMalformed   = errors.New("codec: malformed input")
	ErrUnsupported = errors.New("codec: unsupported value")
	ErrUnknown     = errors.New("codec: unknown format")
)

type Format string

const (
	JSON Format = "json"
	BSON Format = "bson"
)

// FormatOf picks a format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "json":
		return JSON, nil
	case "bson", "bin":
		return BSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknown, path)
}

func Encode(f Format, v variant.Value) ([]byte, error) {
	switch f {
	case JSON:
		return MarshalJSON(v)
	case BSON:
		return MarshalBSON(v)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, f)
}

func Decode(f Format, data []byte) (variant.Value, error) {
	switch f {
	case JSON:
		return UnmarshalJSON(data)
	case BSON:
		return UnmarshalBSON(data)
	}
	return variant.Value{}, fmt.Errorf("%w: %q", ErrUnknown, f)
}
