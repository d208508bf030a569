// Package binio provides a bounds-checked sequential reader over an
// in-memory byte buffer.
//
// Reader is the primitive the DAT decoding layers are built on: it owns a
// cursor into an immutable buffer and decodes fixed-width integers, floats,
// byte runs, and length-prefixed fields using a configurable byte order.
// Every operation either succeeds completely or fails without consuming
// input, so decoders never observe partial values.
//
// Failure modes map onto the shared error taxonomy: reads past the end of
// the buffer return an error wrapping errs.ErrTruncated, and cursor moves
// outside [0, Len] return an error wrapping errs.ErrOutOfRange.
package binio

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/jhh67/extractdat/endian"
	"github.com/jhh67/extractdat/errs"
)

// Reader decodes binary data from a byte slice with strict bounds checking.
//
// The zero value is not usable; construct with NewReader. Reader does not
// copy the input slice, and callers must not mutate it while decoding.
// A Reader is not safe for concurrent use.
type Reader struct {
	data   []byte
	off    int
	engine endian.EndianEngine
}

// NewReader creates a Reader positioned at the start of data.
//
// The engine determines multi-byte integer and float interpretation;
// DAT streams use endian.GetLittleEndianEngine().
func NewReader(data []byte, engine endian.EndianEngine) *Reader {
	return &Reader{data: data, engine: engine}
}

// Len returns the total size of the underlying buffer in bytes.
func (r *Reader) Len() int { return len(r.data) }

// Offset returns the current cursor position from the start of the buffer.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// require verifies that n more bytes can be consumed at the cursor.
func (r *Reader) require(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative read size %d", errs.ErrOutOfRange, n)
	}
	if r.off+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			errs.ErrTruncated, n, r.off, len(r.data)-r.off)
	}

	return nil
}

// Seek moves the cursor to an absolute offset.
//
// Offsets in [0, Len] are valid; Len positions the cursor at end of input.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return fmt.Errorf("%w: seek to %d in buffer of %d bytes", errs.ErrOutOfRange, off, len(r.data))
	}
	r.off = off

	return nil
}

// Skip advances the cursor by n bytes without decoding them.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return fmt.Errorf("%w: skip %d at offset %d in buffer of %d bytes",
			errs.ErrOutOfRange, n, r.off, len(r.data))
	}
	r.off += n

	return nil
}

func (r *Reader) Uint8() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++

	return v, nil
}

func (r *Reader) Uint16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := r.engine.Uint16(r.data[r.off:])
	r.off += 2

	return v, nil
}

func (r *Reader) Uint32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := r.engine.Uint32(r.data[r.off:])
	r.off += 4

	return v, nil
}

func (r *Reader) Uint64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := r.engine.Uint64(r.data[r.off:])
	r.off += 8

	return v, nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	return math.Float64frombits(v), err
}

// Bytes consumes and returns the next n bytes.
//
// The returned slice aliases the underlying buffer; callers that retain it
// across decode steps must copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n : r.off+n]
	r.off += n

	return b, nil
}

// VarBytes consumes a uint32 length prefix followed by that many payload
// bytes. A prefix larger than the remaining input fails with ErrTruncated
// and leaves the cursor on the prefix.
func (r *Reader) VarBytes() ([]byte, error) {
	start := r.off
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(len(r.data)-r.off) {
		r.off = start
		return nil, fmt.Errorf("%w: declared %d payload bytes at offset %d, have %d",
			errs.ErrTruncated, n, start, len(r.data)-start-4)
	}

	return r.Bytes(int(n))
}

// Uint32s consumes and decodes a block of n consecutive uint32 words.
//
// When the engine matches the host byte order the block is converted with
// a single bulk pass, which matters for scan index and header word blocks.
func (r *Reader) Uint32s(n int) ([]uint32, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative word count %d", errs.ErrOutOfRange, n)
	}
	if err := r.require(n * 4); err != nil {
		return nil, err
	}

	words := make([]uint32, n)
	if endian.CompareNativeEndian(r.engine) {
		copyNativeWords(words, r.data[r.off:r.off+n*4])
	} else {
		for i := range words {
			words[i] = r.engine.Uint32(r.data[r.off+i*4:])
		}
	}
	r.off += n * 4

	return words, nil
}

// copyNativeWords bulk-converts src into dst. Callers guarantee the host
// byte order matches the stream order and len(src) == len(dst)*4.
func copyNativeWords(dst []uint32, src []byte) {
	if len(src) == 0 {
		return
	}
	// Zero-copy view of src as uint32 words, then one copy into dst.
	words := unsafe.Slice((*uint32)(unsafe.Pointer(&src[0])), len(src)/4)
	copy(dst, words)
}

// Peek returns the next n bytes without moving the cursor.
func (r *Reader) Peek(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}

	return r.data[r.off : r.off+n : r.off+n], nil
}

// PeekUint32 decodes the next word without moving the cursor.
func (r *Reader) PeekUint32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}

	return r.engine.Uint32(r.data[r.off:]), nil
}
