package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"streamsplit/internal/domain/media"
	"streamsplit/internal/domain/split"
)

// OutputConfig controls where and how segments are written.
type OutputConfig struct {
	Directory        string `yaml:"directory" json:"directory"`
	Format           string `yaml:"format" json:"format"`
	NamingPattern    string `yaml:"naming_pattern" json:"naming_pattern"`
	MaxSegmentLength int    `yaml:"max_segment_length" json:"max_segment_length"`
}

// IntroOutroConfig points at the optional clips stitched around each segment.
type IntroOutroConfig struct {
	IntroPath string `yaml:"intro_path,omitempty" json:"intro_path,omitempty"`
	OutroPath string `yaml:"outro_path,omitempty" json:"outro_path,omitempty"`
}

// ProcessingConfig carries the transcoder quality parameters. Validated
// once, then threaded immutably through the pipeline.
type ProcessingConfig struct {
	Quality  string `yaml:"quality" json:"quality"`
	Codec    string `yaml:"codec" json:"codec"`
	Threads  int    `yaml:"threads" json:"threads"`
	Preset   string `yaml:"preset" json:"preset"`
	CRF      int    `yaml:"crf" json:"crf"`
	Parallel int    `yaml:"parallel,omitempty" json:"parallel,omitempty"`

	// KeepPartialOutput leaves already-written segment files on disk when a
	// batch aborts mid-run.
	KeepPartialOutput bool `yaml:"keep_partial_output" json:"keep_partial_output"`
}

// Config is the validated bundle for one split run.
type Config struct {
	InputPath  string           `yaml:"input_path" json:"input_path"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	IntroOutro IntroOutroConfig `yaml:"intro_outro" json:"intro_outro"`
	Processing ProcessingConfig `yaml:"processing" json:"processing"`
}

// Default returns a config with the stock output and processing values.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Directory:        "./segments",
			Format:           "mp4",
			NamingPattern:    split.DefaultNamingPattern,
			MaxSegmentLength: 1200,
		},
		Processing: ProcessingConfig{
			Quality:           "high",
			Codec:             "h264",
			Threads:           4,
			Preset:            "medium",
			CRF:               23,
			Parallel:          1,
			KeepPartialOutput: true,
		},
	}
}

var validQualities = map[string]bool{"high": true, "medium": true, "low": true}

// Validate checks every field against its bounds and verifies referenced
// files exist. Returns a config_validation error on the first problem.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return split.Errorf(split.KindConfigValidation, "input path is required")
	}
	info, err := os.Stat(c.InputPath)
	if err != nil {
		return split.Errorf(split.KindConfigValidation, "input file not found: %s", c.InputPath)
	}
	if info.IsDir() {
		return split.Errorf(split.KindConfigValidation, "input path is not a file: %s", c.InputPath)
	}
	if !media.IsSupportedVideoExt(filepath.Ext(c.InputPath)) {
		return split.Errorf(split.KindConfigValidation, "unsupported file format: %s", filepath.Ext(c.InputPath))
	}

	if c.Output.MaxSegmentLength < split.MinSegmentSeconds {
		return split.Errorf(split.KindConfigValidation, "segment length must be at least %d seconds", split.MinSegmentSeconds)
	}
	if c.Output.MaxSegmentLength > split.MaxSegmentSeconds {
		return split.Errorf(split.KindConfigValidation, "segment length cannot exceed %d seconds", split.MaxSegmentSeconds)
	}

	// Without an index token every segment would render the same path.
	if p := c.Output.NamingPattern; p != "" && !strings.Contains(p, "{index") {
		return split.Errorf(split.KindConfigValidation, "naming pattern must contain {index}: %q", p)
	}

	for _, clip := range []string{c.IntroOutro.IntroPath, c.IntroOutro.OutroPath} {
		if clip == "" {
			continue
		}
		if _, err := os.Stat(clip); err != nil {
			return split.Errorf(split.KindConfigValidation, "file not found: %s", clip)
		}
	}

	if !validQualities[c.Processing.Quality] {
		return split.Errorf(split.KindConfigValidation, "quality must be high, medium or low, got %q", c.Processing.Quality)
	}
	if c.Processing.Threads < 1 || c.Processing.Threads > 16 {
		return split.Errorf(split.KindConfigValidation, "threads must be between 1 and 16, got %d", c.Processing.Threads)
	}
	if c.Processing.CRF < 0 || c.Processing.CRF > 51 {
		return split.Errorf(split.KindConfigValidation, "crf must be between 0 and 51, got %d", c.Processing.CRF)
	}
	if c.Processing.Parallel < 0 {
		return split.Errorf(split.KindConfigValidation, "parallel must not be negative, got %d", c.Processing.Parallel)
	}

	return nil
}

// Load reads a config file, dispatching on extension (.yaml/.yml/.json).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, split.Wrap(split.KindConfigValidation, err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return Config{}, split.Errorf(split.KindConfigValidation, "unsupported config format: %s", filepath.Ext(path))
	}
	if err != nil {
		return Config{}, split.Wrap(split.KindConfigValidation, err, "parse config %s", path)
	}
	return cfg, nil
}

// Save writes the config back out in the format matching the extension.
// YAML and JSON outputs reload to the same config.
func (c Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		return split.Errorf(split.KindConfigValidation, "unsupported config format: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
