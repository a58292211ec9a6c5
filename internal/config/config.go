// Package config provides configuration loading for deliberd.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DELIBERD_DELIBERATION_MAX_ROUNDS, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/deliberd/internal/logging"
)

// ErrInvalidConfig indicates a configuration that must not start a run.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration.
type Config struct {
	Deliberation DeliberationConfig `koanf:"deliberation"`
	Validation   ValidationConfig   `koanf:"validation"`
	LLM          LLMConfig          `koanf:"llm"`
	Logging      logging.Config     `koanf:"logging"`
	Report       ReportConfig       `koanf:"report"`
}

// DeliberationConfig controls the run shape.
type DeliberationConfig struct {
	// MaxRounds is the total turn budget for a run.
	MaxRounds int `koanf:"max_rounds"`

	// Participants are the participant IDs in speaking order.
	Participants []string `koanf:"participants"`

	// MaxMemorySize trims each participant memory after every turn.
	// 0 disables trimming.
	MaxMemorySize int `koanf:"max_memory_size"`
}

// ValidationConfig controls the quality gate and retry budget.
type ValidationConfig struct {
	MinWords            int     `koanf:"min_words"`
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	NoveltyWindow       int     `koanf:"novelty_window"`
	MaxAttempts         int     `koanf:"max_attempts"`
	SelfMemoryWindow    int     `koanf:"self_memory_window"`
	GlobalRecentWindow  int     `koanf:"global_recent_window"`
}

// LLMConfig configures the content and verdict capabilities. The API key is
// never read from files; it comes from OPENAI_API_KEY.
type LLMConfig struct {
	BaseURL          string  `koanf:"base_url"`
	Model            string  `koanf:"model"`
	JudgeModel       string  `koanf:"judge_model"`
	Temperature      float64 `koanf:"temperature"`
	JudgeTemperature float64 `koanf:"judge_temperature"`
}

// ReportConfig controls final report output.
type ReportConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Deliberation: DeliberationConfig{
			MaxRounds:     8,
			Participants:  []string{"scientist", "philosopher"},
			MaxMemorySize: 10,
		},
		Validation: ValidationConfig{
			MinWords:            10,
			SimilarityThreshold: 0.7,
			NoveltyWindow:       5,
			MaxAttempts:         3,
			SelfMemoryWindow:    2,
			GlobalRecentWindow:  3,
		},
		LLM: LLMConfig{
			BaseURL:          "https://api.openai.com/v1",
			Model:            "gpt-3.5-turbo",
			JudgeModel:       "gpt-4",
			Temperature:      0.7,
			JudgeTemperature: 0.3,
		},
		Logging: logging.NewDefaultConfig(),
		Report: ReportConfig{
			Enabled: true,
			Dir:     "deliberation_logs",
		},
	}
}

// Validate rejects configurations that would break a run. Failures here are
// fatal and happen before any turn executes.
func (c *Config) Validate() error {
	if c.Deliberation.MaxRounds < 1 {
		return fmt.Errorf("%w: deliberation.max_rounds must be at least 1, got %d", ErrInvalidConfig, c.Deliberation.MaxRounds)
	}
	if len(c.Deliberation.Participants) < 2 {
		return fmt.Errorf("%w: deliberation.participants requires at least 2 entries, got %d", ErrInvalidConfig, len(c.Deliberation.Participants))
	}
	if c.Validation.SimilarityThreshold <= 0 || c.Validation.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: validation.similarity_threshold must be in (0,1], got %g", ErrInvalidConfig, c.Validation.SimilarityThreshold)
	}
	if c.Validation.MaxAttempts < 1 {
		return fmt.Errorf("%w: validation.max_attempts must be at least 1, got %d", ErrInvalidConfig, c.Validation.MaxAttempts)
	}
	if c.Validation.MinWords < 1 {
		return fmt.Errorf("%w: validation.min_words must be at least 1, got %d", ErrInvalidConfig, c.Validation.MinWords)
	}
	if c.LLM.Model == "" || c.LLM.JudgeModel == "" {
		return fmt.Errorf("%w: llm.model and llm.judge_model are required", ErrInvalidConfig)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Report.Enabled && c.Report.Dir == "" {
		return fmt.Errorf("%w: report.dir is required when report.enabled", ErrInvalidConfig)
	}
	return nil
}
