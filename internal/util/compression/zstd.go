// Package compression provides the compressors used for stored post bodies.
package compression

import (
	"strings"

	"github.com/klauspost/compress/zstd"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ForName selects a compressor by its configured name. Unrecognized or empty
// names fall back to zstd, the default for stored post bodies. Posts written
// with one compressor must be read with the same one.
func ForName(name string) Compressor {
	if strings.ToLower(name) == "gzip" {
		return GzipCompressor{}
	}
	return ZstdCompressor{}
}

type ZstdCompressor struct{}

func (z ZstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

func (z ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	return decoder.DecodeAll(data, nil)
}
