// Package configs loads the configuration of the qbsdiff command-line front
// end: diff tuning knobs plus logging fields, following the same "defaults
// overridden by an optional file" pattern as the file utilities it leans
// on. Both YAML and JSON files are accepted. The logging fields are loaded
// but not applied; qbsdiff takes its log level and format from its flags.
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unbasical/qbsdiff/internal/pkg/fileutils"
	"github.com/unbasical/qbsdiff/internal/pkg/planner"
)

// Config holds the tunable knobs of the diff producer plus logging setup,
// loadable from a YAML file.
type Config struct {
	SmallMatchThreshold int    `yaml:"small_match_threshold" json:"small_match_threshold"`
	BufferSize          int    `yaml:"buffer_size" json:"buffer_size"`
	CompressionLevel    int    `yaml:"compression_level" json:"compression_level"`
	Parallelism         int    `yaml:"parallelism" json:"parallelism"`
	LogLevel            string `yaml:"log_level" json:"log_level"`
	LogFormat           string `yaml:"log_format" json:"log_format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		SmallMatchThreshold: planner.DefaultSmallMatch,
		BufferSize:          32 * 1024,
		CompressionLevel:    9,
		Parallelism:         1,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Load reads path over Default(); a missing or empty file is not an error
// and yields the defaults unchanged. Files named *.json are parsed as JSON,
// everything else as YAML.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		_, err = fileutils.SafeReadJSON(path, &cfg, 0o644)
	} else {
		_, err = fileutils.SafeReadYAML(path, &cfg, 0o644)
	}
	if err != nil {
		return Config{}, fmt.Errorf("configs: load %s: %w", path, err)
	}
	return cfg, nil
}
