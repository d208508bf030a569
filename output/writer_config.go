package output

import (
	"fmt"
	"unicode/utf8"

	"github.com/jhh67/extractdat/internal/options"
)

// WriterConfig holds the writer configuration applied through functional
// options.
type WriterConfig struct {
	delimiter   rune
	missing     string
	scanColumns bool
	calibration bool
}

// setDelimiter validates and stores the CSV field delimiter.
func (c *WriterConfig) setDelimiter(d rune) error {
	if d == 0 || d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		return fmt.Errorf("invalid field delimiter %q", d)
	}

	c.delimiter = d

	return nil
}

// setMissing stores the marker emitted for absent table cells.
func (c *WriterConfig) setMissing(marker string) {
	c.missing = marker
}

// setScanColumns enables or disables the Scan and Time lead columns on
// run output.
func (c *WriterConfig) setScanColumns(enabled bool) {
	c.scanColumns = enabled
}

// setCalibration enables or disables the calibration factor lead columns
// on run output.
func (c *WriterConfig) setCalibration(enabled bool) {
	c.calibration = enabled
}

// WriterOption represents a functional option for configuring a Writer.
// This is a type alias for the generic Option interface specialized for
// WriterConfig.
type WriterOption = options.Option[*WriterConfig]

// WithDelimiter sets the field delimiter for emitted CSV. The default is
// a comma. The double quote, carriage return, newline, and null runes
// are rejected because the CSV quoting rules reserve them.
func WithDelimiter(d rune) WriterOption {
	return options.New(func(c *WriterConfig) error {
		return c.setDelimiter(d)
	})
}

// WithMissingMarker sets the text emitted for table cells whose run does
// not carry the column's channel. The default is an empty cell.
func WithMissingMarker(marker string) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.setMissing(marker)
	})
}

// WithScanColumns controls whether run output carries lead Scan and Time
// columns ahead of the channel values. Scan is the 1-based scan position
// and Time the absolute acquisition time of the scan. Table output
// always carries these columns.
func WithScanColumns(enabled bool) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.setScanColumns(enabled)
	})
}

// WithCalibrationColumns controls whether run output carries an ACF lead
// column with the per-scan calibration factor, plus an FCF column when
// the run has faraday channels.
func WithCalibrationColumns(enabled bool) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.setCalibration(enabled)
	})
}
