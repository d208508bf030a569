// Package format defines the shared enums of the DAT decoding pipeline:
// file format revisions, detector acquisition modes, and input compression
// codecs.
package format

type (
	Revision        uint32
	DetectorMode    uint8
	CompressionType uint8
)

const (
	// RevisionIndexed identifies files whose scans are addressed through a
	// trailing offset index; the index length declares the scan count.
	RevisionIndexed Revision = 0x1
	// RevisionStreamed identifies files whose scans follow the header
	// back-to-back until the stream ends.
	RevisionStreamed Revision = 0x2
)

const (
	ModeAnalog  DetectorMode = 0x0 // ModeAnalog represents the analog detector.
	ModePulse   DetectorMode = 0x1 // ModePulse represents the pulse counting detector.
	ModeFaraday DetectorMode = 0x8 // ModeFaraday represents the faraday cup detector.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents an uncompressed stream.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2/Snappy framed compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 frame compression.
	CompressionGzip CompressionType = 0x5 // CompressionGzip represents gzip compression.
)

func (r Revision) String() string {
	switch r {
	case RevisionIndexed:
		return "Indexed"
	case RevisionStreamed:
		return "Streamed"
	default:
		return "Unknown"
	}
}

// Valid reports whether r is a recognized format revision.
func (r Revision) Valid() bool {
	return r == RevisionIndexed || r == RevisionStreamed
}

func (m DetectorMode) String() string {
	switch m {
	case ModeAnalog:
		return "Analog"
	case ModePulse:
		return "Pulse"
	case ModeFaraday:
		return "Faraday"
	default:
		return "Unknown"
	}
}

// Letter returns the single-letter channel label suffix for the mode:
// "a" for analog, "p" for pulse, "f" for faraday.
func (m DetectorMode) Letter() string {
	switch m {
	case ModeAnalog:
		return "a"
	case ModePulse:
		return "p"
	case ModeFaraday:
		return "f"
	default:
		return "?"
	}
}

// Valid reports whether m is a recognized detector mode.
func (m DetectorMode) Valid() bool {
	return m == ModeAnalog || m == ModePulse || m == ModeFaraday
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}
