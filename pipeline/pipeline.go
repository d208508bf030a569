// Package pipeline drives DAT-to-CSV conversion end to end: read,
// decompress, decode, render, and name outputs without overwriting.
//
// Process converts a batch sequentially. Per-input failures are recorded
// on the returned Batch and never abort the remaining inputs. With two
// or more inputs, the decoded runs are additionally reconciled into one
// combined CSV named after the first combined run.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jhh67/extractdat/compress"
	"github.com/jhh67/extractdat/dat"
	"github.com/jhh67/extractdat/internal/pool"
	"github.com/jhh67/extractdat/output"
	"github.com/jhh67/extractdat/reconcile"
)

// Options configures a Process batch.
type Options struct {
	// SortByTime orders the combined output by run acquisition time.
	// Input order is kept otherwise. Per-file outputs are unaffected.
	SortByTime bool

	// Recover decodes through the scan signature sweep instead of the
	// scan index, salvaging readable scans from damaged files.
	Recover bool

	// Lenient skips scans carrying unknown tag keys or detector types
	// instead of failing the decode.
	Lenient bool

	// OutputDir is an optional directory receiving all outputs. It is
	// created when missing. When empty, each output lands next to its
	// input.
	OutputDir string

	// WriterOptions is applied to all rendered CSV.
	WriterOptions []output.WriterOption
}

// File is the outcome for one input path.
type File struct {
	// Path is the input path as given.
	Path string

	// Run is the decoded run. It stays set when decoding succeeded but
	// rendering the output failed, so the run still joins the combined
	// table.
	Run *dat.Run

	// OutputPath is where the per-file CSV was written; empty when the
	// input failed before rendering.
	OutputPath string

	// Sidecar is the FIN2 sidecar that supplied element names; empty
	// when none was found.
	Sidecar string

	// Notes holds advisories that did not stop the conversion, such as
	// an unreadable sidecar.
	Notes []string

	// Err is the failure that stopped processing this input.
	Err error
}

// Batch is the outcome of processing a set of inputs.
type Batch struct {
	// Files holds one entry per input path, in input order.
	Files []File

	// Table is the reconciled view over the decoded runs. It is nil
	// when fewer than two inputs were given or nothing decoded.
	Table *reconcile.Table

	// CombinedPath is where the combined CSV was written; empty when no
	// combined output was built.
	CombinedPath string

	// CombinedErr is the failure that prevented the combined output.
	CombinedErr error
}

// Decoded returns the number of inputs that decoded to a run.
func (b *Batch) Decoded() int {
	n := 0
	for _, file := range b.Files {
		if file.Run != nil {
			n++
		}
	}

	return n
}

// Failed returns the number of inputs whose processing stopped on an
// error.
func (b *Batch) Failed() int {
	n := 0
	for _, file := range b.Files {
		if file.Err != nil {
			n++
		}
	}

	return n
}

// Process converts every path to CSV and reports the per-input outcomes.
// It fails outright only on an empty path list, invalid writer options,
// or an output directory that cannot be created; everything else is
// recorded on the Batch.
func Process(paths []string, opts Options) (*Batch, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input paths")
	}

	writer, err := output.NewWriter(opts.WriterOptions...)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	batch := &Batch{Files: make([]File, 0, len(paths))}
	for _, path := range paths {
		batch.Files = append(batch.Files, processFile(path, opts, writer))
	}

	if len(paths) >= 2 {
		batch.combine(opts, writer)
	}

	return batch, nil
}

// processFile converts one input: read, decompress, decode with sidecar
// names, render CSV to a collision-free path.
func processFile(path string, opts Options, writer *output.Writer) File {
	file := File{Path: path}

	raw := pool.GetFileBuffer()
	defer pool.PutFileBuffer(raw)

	if err := readInto(raw, path); err != nil {
		file.Err = err
		return file
	}

	payload := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(payload)

	data, _, err := compress.DetectAndDecompress(payload.Bytes(), raw.Bytes())
	if err != nil {
		file.Err = fmt.Errorf("decompress %s: %w", path, err)
		return file
	}

	decodeOpts := []dat.DecoderOption{dat.WithLenientTags(opts.Lenient)}
	if sidecar := sidecarPath(path); sidecar != "" {
		names, err := readSidecar(sidecar)
		if err != nil {
			file.Notes = append(file.Notes, fmt.Sprintf("sidecar %s: %v", filepath.Base(sidecar), err))
		} else {
			file.Sidecar = sidecar
			decodeOpts = append(decodeOpts, dat.WithElementNames(names))
		}
	}

	decode := dat.Decode
	if opts.Recover {
		decode = dat.DecodeRecovered
	}

	run, err := decode(data, path, decodeOpts...)
	if err != nil {
		file.Err = fmt.Errorf("decode %s: %w", path, err)
		return file
	}
	file.Run = run

	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}

	target, err := output.UniquePath(dir, inputBase(path), ".csv")
	if err != nil {
		file.Err = err
		return file
	}

	if err := writeCSV(target, func(w io.Writer) error {
		return writer.WriteRun(w, run)
	}); err != nil {
		file.Err = err
		return file
	}
	file.OutputPath = target

	return file
}

// combine reconciles the decoded runs and writes the combined CSV, named
// after the first combined run with a "combined" suffix.
func (b *Batch) combine(opts Options, writer *output.Writer) {
	var runs []*dat.Run
	for _, file := range b.Files {
		if file.Run != nil {
			runs = append(runs, file.Run)
		}
	}

	if len(runs) == 0 {
		return
	}

	if opts.SortByTime {
		slices.SortStableFunc(runs, func(a, b *dat.Run) int {
			return a.Header.AcquiredAt.Compare(b.Header.AcquiredAt)
		})
	}

	table, err := reconcile.Reconcile(runs)
	if err != nil {
		b.CombinedErr = err
		return
	}
	b.Table = table

	first := runs[0].Source
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(first)
	}

	target, err := output.UniquePath(dir, inputBase(first)+"combined", ".csv")
	if err != nil {
		b.CombinedErr = err
		return
	}

	if err := writeCSV(target, func(w io.Writer) error {
		return writer.WriteTable(w, table)
	}); err != nil {
		b.CombinedErr = err
		return
	}
	b.CombinedPath = target
}

// readInto reads the whole file at path into buf.
func readInto(buf *pool.ByteBuffer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := buf.ReadFrom(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

// sidecarPath returns the FIN2 sidecar next to input, probing the upper-
// and lowercase extension spellings.
func sidecarPath(input string) string {
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	for _, ext := range []string{".FIN2", ".fin2"} {
		candidate := stem + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// readSidecar loads and parses a FIN2 sidecar into element names.
func readSidecar(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return dat.ParseFIN2(data)
}

// inputBase returns the input filename without directory or extension.
func inputBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// writeCSV creates path exclusively and renders through emit, removing
// the partial file when rendering fails. The exclusive create keeps the
// no-overwrite guarantee even when another process grabs the probed name
// first.
func writeCSV(path string, emit func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := emit(f); err != nil {
		f.Close()
		os.Remove(path)

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
