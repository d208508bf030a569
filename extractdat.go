// Package extractdat decodes ICP mass spectrometer DAT acquisition files
// and renders them as CSV.
//
// A DAT file holds one acquisition run: a file header with the
// acquisition timestamp, a sequence of scans, and, in indexed files, an
// offset index locating each scan. Every scan sweeps the configured mass
// slots and records detector readings per slot, together with per-scan
// calibration factors. The dat package decodes that layout into a Run:
// a fixed channel schema (one channel per mass, detector mode, and
// sample position) plus one value row per scan.
//
// # Basic Usage
//
// Decoding a file on disk, with element names from a FIN2 sidecar when
// one sits next to the input:
//
//	run, err := extractdat.DecodeFile("sample.dat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, scan := range run.Scans {
//	    fmt.Println(scan.Number, scan.Values)
//	}
//
// Rendering CSV:
//
//	writer, err := output.NewWriter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = writer.WriteRun(os.Stdout, run)
//
// Combining several acquisitions into one table over the union of their
// channels:
//
//	table, err := extractdat.Reconcile([]*dat.Run{first, second})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = writer.WriteTable(os.Stdout, table)
//
// Salvaging scans from a damaged file whose index or header no longer
// decodes:
//
//	run, err := extractdat.RecoverFile("damaged.dat")
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the dat and
// reconcile packages, covering the common file-in, run-out cases.
// Compressed inputs (gzip, zstd, lz4, s2) are decompressed transparently.
// For fine-grained control use dat directly; for batch conversion with
// CSV output files and collision-free naming, use the pipeline package.
package extractdat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhh67/extractdat/compress"
	"github.com/jhh67/extractdat/dat"
	"github.com/jhh67/extractdat/reconcile"
)

// Decode decodes a raw DAT image into a Run. The source string labels
// the run in errors, warnings, and combined output.
//
// This is a thin wrapper over dat.Decode; it does not decompress.
func Decode(data []byte, source string, opts ...dat.DecoderOption) (*dat.Run, error) {
	return dat.Decode(data, source, opts...)
}

// DecodeRecovered decodes a damaged DAT image by sweeping for scan
// signatures instead of trusting the header and index.
//
// This is a thin wrapper over dat.DecodeRecovered; it does not
// decompress.
func DecodeRecovered(data []byte, source string, opts ...dat.DecoderOption) (*dat.Run, error) {
	return dat.DecodeRecovered(data, source, opts...)
}

// DecodeFile reads, decompresses, and decodes the DAT file at path.
//
// When a FIN2 sidecar sits next to path (same stem, .FIN2 or .fin2
// extension), its element names label the mass channels. An explicit
// dat.WithElementNames option overrides sidecar names; an unreadable
// sidecar is ignored.
//
// Example:
//
//	run, err := extractdat.DecodeFile("042.dat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(run.Labels())
func DecodeFile(path string, opts ...dat.DecoderOption) (*dat.Run, error) {
	return decodeFile(path, dat.Decode, opts)
}

// RecoverFile reads, decompresses, and decodes the damaged DAT file at
// path through the scan signature sweep. Sidecar handling matches
// DecodeFile.
func RecoverFile(path string, opts ...dat.DecoderOption) (*dat.Run, error) {
	return decodeFile(path, dat.DecodeRecovered, opts)
}

// Reconcile builds a table over the given runs: the union of their
// channels in first-appearance order, one row per scan in run order.
//
// This is a thin wrapper over reconcile.Reconcile.
//
// Example:
//
//	table, err := extractdat.Reconcile(runs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range table.Rows() {
//	    fmt.Println(row.Source, row.Values)
//	}
func Reconcile(runs []*dat.Run) (*reconcile.Table, error) {
	return reconcile.Reconcile(runs)
}

// Inspect reports the header facts of a DAT image without decoding its
// scans: revision, compression, acquisition time, declared scan count,
// and sizes.
//
// This is a thin wrapper over dat.Inspect.
func Inspect(data []byte) (*dat.Info, error) {
	return dat.Inspect(data)
}

// InspectFile reads the file at path and reports its header facts, as
// Inspect does.
func InspectFile(path string) (*dat.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return dat.Inspect(data)
}

// decodeFile is the shared body of DecodeFile and RecoverFile: read,
// decompress, prepend sidecar names, decode.
func decodeFile(path string, decode func([]byte, string, ...dat.DecoderOption) (*dat.Run, error), opts []dat.DecoderOption) (*dat.Run, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data, _, err := compress.DetectAndDecompress(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}

	// Sidecar names go first so explicit caller options win.
	if names := sidecarNames(path); names != nil {
		opts = append([]dat.DecoderOption{dat.WithElementNames(names)}, opts...)
	}

	return decode(data, path, opts...)
}

// sidecarNames returns the element names from the FIN2 sidecar next to
// input, or nil when no readable sidecar exists.
func sidecarNames(input string) []string {
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	for _, ext := range []string{".FIN2", ".fin2"} {
		data, err := os.ReadFile(stem + ext)
		if err != nil {
			continue
		}

		names, err := dat.ParseFIN2(data)
		if err != nil {
			continue
		}

		return names
	}

	return nil
}
