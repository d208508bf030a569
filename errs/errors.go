// Package errs defines the sentinel errors shared across extractdat packages.
//
// Errors are organized as a small taxonomy: four base categories describe
// the failure class, and more specific sentinels wrap a base so callers can
// match either level with errors.Is:
//
//	if errors.Is(err, errs.ErrMalformedHeader) { ... } // any structural fault
//	if errors.Is(err, errs.ErrDuplicateChannel) { ... } // this one exactly
package errs

import (
	"errors"
	"fmt"
)

// Base categories. Every decode failure wraps exactly one of these.
var (
	// ErrTruncated indicates the input ended before a complete value or
	// record could be read.
	ErrTruncated = errors.New("input truncated")

	// ErrMalformedHeader indicates structurally invalid metadata: bad
	// signatures, impossible counts, or self-inconsistent declarations.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrUnsupportedVersion indicates the file declares a format revision
	// this package does not recognize.
	ErrUnsupportedVersion = errors.New("unsupported format revision")

	// ErrOutOfRange indicates a cursor operation outside the valid bounds
	// of the underlying buffer.
	ErrOutOfRange = errors.New("offset out of range")
)

// Decode-level specifics.
var (
	// ErrNoScans indicates a file that decodes to zero scan records.
	ErrNoScans = fmt.Errorf("%w: no scans", ErrMalformedHeader)

	// ErrNoChannels indicates a scan that declares zero data channels.
	ErrNoChannels = fmt.Errorf("%w: no channels", ErrMalformedHeader)

	// ErrDuplicateChannel indicates two channels resolved to the same
	// label within one acquisition run.
	ErrDuplicateChannel = fmt.Errorf("%w: duplicate channel label", ErrMalformedHeader)

	// ErrBadScanSignature indicates a scan record whose fixed signature
	// words do not match the expected pattern.
	ErrBadScanSignature = fmt.Errorf("%w: bad scan signature", ErrMalformedHeader)

	// ErrScanShapeMismatch indicates a scan whose mass/mode layout differs
	// from the schema established by the first scan of the run.
	ErrScanShapeMismatch = fmt.Errorf("%w: scan shape mismatch", ErrMalformedHeader)

	// ErrUnknownTag indicates a tagged data word with an unrecognized key.
	ErrUnknownTag = fmt.Errorf("%w: unknown data word tag", ErrMalformedHeader)

	// ErrUnknownDetector indicates a data word naming a detector type
	// outside the known pulse/analog/faraday set.
	ErrUnknownDetector = fmt.Errorf("%w: unknown detector type", ErrMalformedHeader)

	// ErrBadIndex indicates a scan index entry pointing outside the file.
	ErrBadIndex = fmt.Errorf("%w: scan index out of bounds", ErrTruncated)
)

// Reconcile and batch specifics.
var (
	// ErrNoRuns indicates a merge or batch invoked with no input runs.
	ErrNoRuns = errors.New("no runs to process")
)

// Compression specifics.
var (
	// ErrUnsupportedCompression indicates input compressed with a codec
	// this build does not provide.
	ErrUnsupportedCompression = errors.New("unsupported compression codec")
)
