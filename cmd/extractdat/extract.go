package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/jhh67/extractdat/internal/logger"
	"github.com/jhh67/extractdat/output"
	"github.com/jhh67/extractdat/pipeline"
)

func extractCmd() *cli.Command {
	var (
		outputDir   string
		recoverMode bool
		lenient     bool
		sortByTime  bool
		scanColumns bool
		calibration bool
		delimiter   string
		missing     string
		logLevel    string
	)

	return &cli.Command{
		Name:      "extract",
		Usage:     "Decode DAT files and write CSV alongside them",
		ArgsUsage: "<file-or-directory>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "directory receiving all outputs (created when missing)",
				Destination: &outputDir,
			},
			&cli.BoolFlag{
				Name:        "recover",
				Usage:       "salvage scans from damaged files by signature sweep",
				Destination: &recoverMode,
			},
			&cli.BoolFlag{
				Name:        "lenient",
				Usage:       "skip scans with unknown words instead of failing the file",
				Destination: &lenient,
			},
			&cli.BoolFlag{
				Name:        "sort-by-time",
				Usage:       "order combined output by acquisition time",
				Destination: &sortByTime,
			},
			&cli.BoolFlag{
				Name:        "scan-columns",
				Usage:       "include Scan and Time columns in per-file output",
				Destination: &scanColumns,
			},
			&cli.BoolFlag{
				Name:        "calibration-columns",
				Usage:       "include ACF and FCF columns in per-file output",
				Destination: &calibration,
			},
			&cli.StringFlag{
				Name:        "delimiter",
				Usage:       "CSV field delimiter (single character, or \\t)",
				Value:       ",",
				Destination: &delimiter,
			},
			&cli.StringFlag{
				Name:        "missing",
				Usage:       "marker for absent cells in combined output",
				Destination: &missing,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log verbosity: debug, info, warn, error",
				Value:       "info",
				Destination: &logLevel,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			applyExtractConfig(c, LoadConfig(), extractSettings{
				outputDir:   &outputDir,
				sortByTime:  &sortByTime,
				recoverMode: &recoverMode,
				lenient:     &lenient,
				scanColumns: &scanColumns,
				calibration: &calibration,
				delimiter:   &delimiter,
				missing:     &missing,
				logLevel:    &logLevel,
			})

			if c.Args().Len() == 0 {
				return errors.New("no inputs: pass DAT files or directories")
			}

			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log := logger.Text(os.Stderr, level)

			d, err := parseDelimiter(delimiter)
			if err != nil {
				return err
			}

			paths, err := pipeline.Resolve(c.Args().Slice())
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no DAT files found")
			}

			batch, err := pipeline.Process(paths, pipeline.Options{
				SortByTime: sortByTime,
				Recover:    recoverMode,
				Lenient:    lenient,
				OutputDir:  outputDir,
				WriterOptions: []output.WriterOption{
					output.WithDelimiter(d),
					output.WithMissingMarker(missing),
					output.WithScanColumns(scanColumns),
					output.WithCalibrationColumns(calibration),
				},
			})
			if err != nil {
				return err
			}

			report(log, batch)

			if failed := batch.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(batch.Files))
			}
			if batch.CombinedErr != nil {
				return fmt.Errorf("combined output: %w", batch.CombinedErr)
			}

			return nil
		},
	}
}

// report logs the per-input outcomes and the combined result.
func report(log logger.Logger, batch *pipeline.Batch) {
	for _, file := range batch.Files {
		flog := log.With("input", file.Path)

		if file.Err != nil {
			flog.Error("conversion failed", "error", file.Err)
			continue
		}

		for _, note := range file.Notes {
			flog.Warn(note)
		}

		for _, w := range file.Run.Warnings {
			if w.Scan < 0 {
				flog.Warn(w.Message)
			} else {
				flog.Warn(w.Message, "scan", w.Scan)
			}
		}

		flog.Info("converted",
			"scans", len(file.Run.Scans),
			"channels", len(file.Run.Channels),
			"output", file.OutputPath)
	}

	if batch.CombinedErr != nil {
		log.Error("combined output failed", "error", batch.CombinedErr)
	} else if batch.CombinedPath != "" {
		log.Info("combined",
			"rows", batch.Table.RowCount(),
			"columns", len(batch.Table.Columns),
			"output", batch.CombinedPath)
	}
}

// parseDelimiter converts the flag text to a single rune. The two
// character sequence \t is accepted as a tab because typing a literal
// tab through most shells is awkward.
func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}

	return r, nil
}
