// Package output renders decoded runs and reconciled tables as CSV.
//
// The default run layout is one column per channel, labeled with the
// channel labels, and one row per scan. Scan position, acquisition time,
// and calibration factor columns are opt-in through WithScanColumns and
// WithCalibrationColumns. Table output always leads with Source, Scan,
// and Time columns because rows from different runs are interleaved.
//
// All numeric cells use the shortest decimal form that parses back to
// the identical float64, so emitted CSV is lossless. Times render as
// RFC 3339 UTC.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/jhh67/extractdat/dat"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/internal/options"
	"github.com/jhh67/extractdat/internal/pool"
	"github.com/jhh67/extractdat/reconcile"
)

// Writer renders runs and tables as CSV.
//
// A Writer holds only configuration. It keeps no state across calls and
// is safe to reuse for any number of outputs.
type Writer struct {
	config *WriterConfig
}

// NewWriter creates a Writer with the given options.
//
// Example:
//
//	writer, err := output.NewWriter(output.WithDelimiter('\t'))
//	if err != nil {
//		return err
//	}
//	if err := writer.WriteRun(dst, run); err != nil {
//		return err
//	}
func NewWriter(opts ...WriterOption) (*Writer, error) {
	config := &WriterConfig{
		delimiter: ',',
	}
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Writer{config: config}, nil
}

// WriteRun renders run as CSV on dst: a header row of channel labels and
// one row per scan in acquisition order.
func (w *Writer) WriteRun(dst io.Writer, run *dat.Run) error {
	cw := csv.NewWriter(dst)
	cw.Comma = w.config.delimiter

	lead := w.runLead(run)
	record, release := pool.GetStringSlice(len(lead) + len(run.Channels))
	defer release()

	n := copy(record, lead)
	for i, ch := range run.Channels {
		record[n+i] = ch.Label
	}

	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	withFCF := w.config.calibration && run.HasFaraday()

	for i, scan := range run.Scans {
		if len(scan.Values) != len(run.Channels) {
			return fmt.Errorf("%w: scan %d carries %d values for %d channels",
				errs.ErrScanShapeMismatch, i, len(scan.Values), len(run.Channels))
		}

		col := 0
		if w.config.scanColumns {
			record[col] = strconv.Itoa(i + 1)
			record[col+1] = formatTime(run.At(i))
			col += 2
		}

		if w.config.calibration {
			record[col] = formatValue(scan.ACF)
			col++

			if withFCF {
				record[col] = formatValue(scan.FCF)
				col++
			}
		}

		for vi, v := range scan.Values {
			record[col+vi] = formatValue(v)
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write scan %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteTable renders table as CSV on dst. The lead columns identify the
// row origin: Source is the run's source path, Scan the 1-based scan
// position within its run, and Time the absolute acquisition time.
// Cells for channels a row's run does not carry hold the missing marker.
func (w *Writer) WriteTable(dst io.Writer, table *reconcile.Table) error {
	cw := csv.NewWriter(dst)
	cw.Comma = w.config.delimiter

	record, release := pool.GetStringSlice(3 + len(table.Columns))
	defer release()

	record[0], record[1], record[2] = "Source", "Scan", "Time"
	copy(record[3:], table.Columns)

	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows() {
		record[0] = row.Source
		record[1] = strconv.Itoa(row.Scan + 1)
		record[2] = formatTime(row.At)

		for ci, v := range row.Values {
			if math.IsNaN(v) {
				record[3+ci] = w.config.missing
			} else {
				record[3+ci] = formatValue(v)
			}
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// runLead returns the lead column names the configuration selects for
// run output.
func (w *Writer) runLead(run *dat.Run) []string {
	var lead []string
	if w.config.scanColumns {
		lead = append(lead, "Scan", "Time")
	}

	if w.config.calibration {
		lead = append(lead, "ACF")
		if run.HasFaraday() {
			lead = append(lead, "FCF")
		}
	}

	return lead
}

// formatValue renders a value with the shortest decimal form that parses
// back to the identical float64.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatTime renders an absolute time as RFC 3339 UTC, carrying only the
// fractional second digits the value needs.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
