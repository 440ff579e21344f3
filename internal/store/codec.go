package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
)

const (
	encodingRaw = "raw"
	encodingLZ4 = "lz4"
)

// compressLZ4 compresses data using LZ4 frames.
func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressLZ4 decompresses LZ4 frame data.
func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(encoding string, raw []byte) ([]byte, error) {
	switch encoding {
	case encodingLZ4:
		out, err := decompressLZ4(raw)
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		return out, nil
	case encodingRaw:
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}
