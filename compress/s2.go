package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/s2"
)

// s2ReaderPool pools s2.Reader instances; they are designed for reuse
// through Reset.
var s2ReaderPool = sync.Pool{
	New: func() any {
		return s2.NewReader(nil)
	},
}

type S2Decompressor struct{}

var _ Decompressor = (*S2Decompressor)(nil)

// NewS2Decompressor creates a decompressor for framed s2 and snappy
// streams.
func NewS2Decompressor() S2Decompressor {
	return S2Decompressor{}
}

// Decompress appends the contents of the framed stream src to dst.
func (c S2Decompressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	zr, _ := s2ReaderPool.Get().(*s2.Reader)
	defer s2ReaderPool.Put(zr)
	zr.Reset(bytes.NewReader(src))

	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, zr); err != nil { //nolint:gosec
		return nil, fmt.Errorf("s2 stream: %w", err)
	}

	return buf.Bytes(), nil
}
