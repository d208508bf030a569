// Package compress provides transparent decompression of archived DAT
// files.
//
// Acquisition archives are often stored gzip-, zstd-, lz4- or s2/snappy-
// compressed. This package sniffs the codec from the stream's magic bytes
// and decompresses to the raw DAT image before decoding:
//
//	data, ctype, err := compress.DetectAndDecompress(nil, raw)
//	if err != nil {
//	    return err
//	}
//	run, err := dat.Decode(data, path)
//
// Uncompressed input passes through untouched; a DAT revision word never
// collides with any supported magic.
//
// # Codecs
//
//   - Gzip: klauspost/compress/gzip
//   - Zstd: valyala/gozstd under cgo, klauspost/compress/zstd otherwise
//   - S2: klauspost/compress/s2, reads both s2 and snappy framed streams
//   - LZ4: pierrec/lz4 frame format
//
// All Decompress methods follow the append convention of the underlying
// libraries: output is appended to dst and the extended slice returned,
// so callers can reuse buffers across files.
//
// Decompressors are stateless or internally pooled and safe for
// concurrent use.
package compress
