package headless

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration for a batch run
type Config struct {
	// Questions are asked in order, one turn each.
	Questions []string `yaml:"questions" json:"questions"`

	// StopOnSendFailure ends the run at the first question that could not
	// be submitted. Later questions are recorded as skipped.
	StopOnSendFailure bool `yaml:"stop_on_send_failure" json:"stop_on_send_failure"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Individual format flags
	JSON     bool `yaml:"json" json:"json"`
	Markdown bool `yaml:"markdown" json:"markdown"`
}

// DefaultConfig returns a configuration that writes both artifact formats
// to .hawk/artifacts.
func DefaultConfig() *Config {
	return &Config{
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: ".hawk/artifacts",
			JSON:      true,
			Markdown:  true,
		},
	}
}

// LoadConfig reads a batch file over DefaultConfig and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch file: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("at least one question is required")
	}

	for i, q := range c.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts.output_dir is required when artifacts are enabled")
	}

	return nil
}
