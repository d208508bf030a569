//go:build cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// Decompress appends the decompressed form of the Zstd stream src to dst
// using the native libzstd decoder.
func (c ZstdDecompressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	out, err := gozstd.Decompress(dst, src)
	if err != nil {
		return nil, fmt.Errorf("zstd stream: %w", err)
	}

	return out, nil
}
