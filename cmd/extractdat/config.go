package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the extractdat configuration file
// (~/.config/extractdat/config.yaml). Pointer fields distinguish "not
// set" from zero values.
type Config struct {
	OutputDir          string  `yaml:"output_dir"`
	SortByTime         *bool   `yaml:"sort_by_time"`
	Recover            *bool   `yaml:"recover"`
	Lenient            *bool   `yaml:"lenient"`
	ScanColumns        *bool   `yaml:"scan_columns"`
	CalibrationColumns *bool   `yaml:"calibration_columns"`
	Delimiter          string  `yaml:"delimiter"`
	Missing            *string `yaml:"missing"`
	LogLevel           string  `yaml:"log_level"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "extractdat", "config.yaml")
}

// LoadConfig reads the config file. A missing or unreadable file yields
// a zero Config.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}

	return cfg
}

// extractSettings collects the extract command's flag destinations so
// config file defaults can fill the ones the command line left unset.
type extractSettings struct {
	outputDir   *string
	sortByTime  *bool
	recoverMode *bool
	lenient     *bool
	scanColumns *bool
	calibration *bool
	delimiter   *string
	missing     *string
	logLevel    *string
}

// applyExtractConfig applies config file defaults to the extract command
// variables whose flags were not set on the command line.
func applyExtractConfig(c *cli.Command, cfg Config, s extractSettings) {
	if cfg.OutputDir != "" && !c.IsSet("output") {
		*s.outputDir = cfg.OutputDir
	}
	if cfg.SortByTime != nil && !c.IsSet("sort-by-time") {
		*s.sortByTime = *cfg.SortByTime
	}
	if cfg.Recover != nil && !c.IsSet("recover") {
		*s.recoverMode = *cfg.Recover
	}
	if cfg.Lenient != nil && !c.IsSet("lenient") {
		*s.lenient = *cfg.Lenient
	}
	if cfg.ScanColumns != nil && !c.IsSet("scan-columns") {
		*s.scanColumns = *cfg.ScanColumns
	}
	if cfg.CalibrationColumns != nil && !c.IsSet("calibration-columns") {
		*s.calibration = *cfg.CalibrationColumns
	}
	if cfg.Delimiter != "" && !c.IsSet("delimiter") {
		*s.delimiter = cfg.Delimiter
	}
	if cfg.Missing != nil && !c.IsSet("missing") {
		*s.missing = *cfg.Missing
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*s.logLevel = cfg.LogLevel
	}
}
