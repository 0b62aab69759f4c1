package store

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Codec encodes/decodes a store snapshot to/from a slice of bytes.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Convenience instances.
var (
	JSON = JSONCodec{}
	Gob  = GobCodec{}
)

// CodecFor resolves a config format name to a codec.
func CodecFor(format string) (Codec, error) {
	switch format {
	case "", "json":
		return JSON, nil
	case "gob":
		return Gob, nil
	default:
		return nil, fmt.Errorf("unsupported storage format: %s", format)
	}
}

// JSONCodec encodes/decodes snapshots as JSON.
type JSONCodec struct{}

func (c JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// GobCodec encodes/decodes snapshots as gob.
type GobCodec struct{}

func (c GobCodec) Marshal(v any) ([]byte, error) {
	buffer := new(bytes.Buffer)
	if err := gob.NewEncoder(buffer).Encode(v); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (c GobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
