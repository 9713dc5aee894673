package cache

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// compress deflates data with gzip. Used for payloads at or above the
// configured compression threshold.
func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	return buf.Bytes(), nil
}

// decompress reverses compress. Any error here means the stored bytes are
// not what compress produced.
func decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	return out, nil
}
