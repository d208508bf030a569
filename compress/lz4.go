package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4ReaderPool pools lz4.Reader instances for reuse across files.
// The reader maintains internal frame state that benefits from reuse.
var lz4ReaderPool = sync.Pool{
	New: func() any {
		return lz4.NewReader(nil)
	},
}

type LZ4Decompressor struct{}

var _ Decompressor = (*LZ4Decompressor)(nil)

// NewLZ4Decompressor creates a new LZ4 frame decompressor.
func NewLZ4Decompressor() LZ4Decompressor {
	return LZ4Decompressor{}
}

// Decompress appends the contents of the LZ4 frame src to dst.
func (c LZ4Decompressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	zr, _ := lz4ReaderPool.Get().(*lz4.Reader)
	defer lz4ReaderPool.Put(zr)
	zr.Reset(bytes.NewReader(src))

	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, zr); err != nil { //nolint:gosec
		return nil, fmt.Errorf("lz4 frame: %w", err)
	}

	return buf.Bytes(), nil
}
