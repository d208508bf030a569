package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

type GzipDecompressor struct{}

var _ Decompressor = (*GzipDecompressor)(nil)

// NewGzipDecompressor creates a new gzip decompressor.
func NewGzipDecompressor() GzipDecompressor {
	return GzipDecompressor{}
}

// Decompress appends the inflated contents of the gzip stream src to dst.
func (c GzipDecompressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()

	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, zr); err != nil { //nolint:gosec
		return nil, fmt.Errorf("gzip stream: %w", err)
	}

	return buf.Bytes(), nil
}
