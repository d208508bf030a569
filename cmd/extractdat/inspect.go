package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/jhh67/extractdat/dat"
)

// inspectReport is the JSON shape of the inspect command output.
type inspectReport struct {
	Revision      string    `json:"revision"`
	Compression   string    `json:"compression"`
	AcquiredAt    time.Time `json:"acquired_at"`
	DeclaredScans int       `json:"declared_scans"`
	InputSize     int       `json:"input_size"`
	ImageSize     int       `json:"image_size"`
}

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header facts of a DAT file without decoding its scans",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the report as JSON (declared_scans is -1 for streamed files)",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			if c.Args().Len() != 1 {
				return errors.New("inspect takes exactly one DAT file")
			}
			path := c.Args().First()

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			info, err := dat.Inspect(data)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}

			if asJSON {
				return printJSON(info)
			}

			printText(info)

			return nil
		},
	}
}

func printJSON(info *dat.Info) error {
	out, err := json.MarshalIndent(inspectReport{
		Revision:      info.Revision.String(),
		Compression:   info.Compression.String(),
		AcquiredAt:    info.AcquiredAt,
		DeclaredScans: info.DeclaredScans,
		InputSize:     info.InputSize,
		ImageSize:     info.Size,
	}, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

func printText(info *dat.Info) {
	fmt.Printf("revision:       %s\n", info.Revision)
	fmt.Printf("compression:    %s\n", info.Compression)
	fmt.Printf("acquired:       %s\n", info.AcquiredAt.UTC().Format(time.RFC3339))
	if info.DeclaredScans >= 0 {
		fmt.Printf("declared scans: %d\n", info.DeclaredScans)
	} else {
		fmt.Printf("declared scans: unknown (streamed file)\n")
	}
	fmt.Printf("input bytes:    %d\n", info.InputSize)
	fmt.Printf("image bytes:    %d\n", info.Size)
}
