package daycache

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Encode serializes an entry as zstd-compressed JSON for byte-valued stores.
func Encode(e Entry) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal day %s: %w", e.Date, err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func Decode(b []byte) (Entry, error) {
	raw, err := decoder.DecodeAll(b, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("decompress day: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal day: %w", err)
	}
	return e, nil
}
