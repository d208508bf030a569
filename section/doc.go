// Package section defines the low-level binary structures and constants of
// the Element DAT acquisition format.
//
// This package provides the foundational types that describe the physical
// layout of a DAT file: the fixed file header block, the per-scan record
// header, and the tagged data words carrying measurements. It handles
// structural parsing and serialization only; interpretation of the parsed
// words (channel assembly, applying shift exponents, calibration) lives in
// the dat package.
//
// # File Structure
//
// A DAT file is a sequence of little-endian uint32 words:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Revision word (4 bytes, offset 0x00)                    │
//	├─────────────────────────────────────────────────────────┤
//	│ Reserved (12 bytes)                                     │
//	├─────────────────────────────────────────────────────────┤
//	│ File header block (85 words, offset 0x10)               │
//	│  - word 33: scan index offset                           │
//	│  - word 39: scan index length (scan count)              │
//	│  - word 40: acquisition timestamp (unix seconds)        │
//	│  - remaining words reserved                             │
//	├─────────────────────────────────────────────────────────┤
//	│ Scan records (variable)                                 │
//	│  - 47-word scan header, then tagged words to EOS        │
//	├─────────────────────────────────────────────────────────┤
//	│ Scan offset index (indexed revision only)               │
//	│  - 4 reserved bytes, then one absolute file offset      │
//	│    word per scan                                        │
//	└─────────────────────────────────────────────────────────┘
//
// The indexed revision addresses every scan record through the trailing
// offset index; the streamed revision packs records back-to-back after the
// header block until the stream ends.
//
// # Scan Header Format
//
// Each scan record opens with 47 words:
//
//	Word  | Field     | Description
//	------|-----------|------------------------------------------
//	3-5   | Signature | Always 0xD, 0xE, 0xF
//	7     | Delta     | Scan delta counter
//	9     | Number    | 1-based scan sequence number
//	12    | ACF       | Analog calibration factor
//	18    | PrevTime  | Elapsed time of the previous scan (ms)
//	19    | Time      | Elapsed time of this scan (ms)
//	31    | EDAC      | EDAC value used by voltage words
//	34    | FCF       | Faraday calibration factor
//
// Unlisted words are reserved and preserved verbatim when a header is
// re-serialized.
//
// # Tagged Words
//
// After its header a scan carries tagged words until an end-of-scan word.
// The key lives in the top nibble, the value in the low 28 bits:
//
//	Key | Meaning
//	----|---------------------------------------------
//	0x1 | Measurement data word (see below)
//	0x2 | Magnet mass, 18-bit fixed point
//	0x3 | Channel dwell time
//	0x4 | Accelerating voltage, derived with EDAC
//	0x8 | End of mass, value is the dwell duration
//	0xB | Unknown purpose, carried but ignored
//	0xC | B-scan marker, ignored
//	0xF | End of scan
//
// A measurement data word subdivides its 28-bit value:
//
//	Bits  | Field    | Description
//	------|----------|--------------------------------
//	24-27 | Flag     | Non-zero negates the reading
//	20-23 | Type     | Detector: 0 analog, 1 pulse, 8 faraday
//	16-19 | Exp      | Left-shift applied to the mantissa
//	0-15  | Mantissa | Raw counter value
//
// # Usage
//
// Every structure provides a Parse method consuming from a binio.Reader
// and a Bytes method producing the serialized form, so the same
// definitions serve the decoder and test fixture construction:
//
//	r := binio.NewReader(data, endian.GetLittleEndianEngine())
//	var hdr section.FileHeader
//	if err := hdr.Parse(r); err != nil { ... }
package section
