// Package config loads the call agent's configuration from a yaml file,
// applying defaults for everything not set.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Model   string        `yaml:"model"`
	Session SessionConfig `yaml:"session"`
	Audio   AudioConfig   `yaml:"audio"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

type SessionConfig struct {
	// InactivityTimeout ends the call when neither side has produced
	// activity for this long.
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"`
	// CheckInterval is how often the inactivity monitor wakes up.
	CheckInterval time.Duration `yaml:"check_interval"`
	// GraceDelay is the pause between the last answered question and the
	// automatic end of the call.
	GraceDelay time.Duration `yaml:"grace_delay"`
	// ClosingMarkers are substrings of connection errors that signal a
	// deliberate remote hangup rather than a failure.
	ClosingMarkers []string `yaml:"closing_markers"`
}

type AudioConfig struct {
	TargetSampleRate int           `yaml:"target_sample_rate"`
	FrameDuration    time.Duration `yaml:"frame_duration"`
}

func Default() Config {
	return Config{
		Model: "models/gemini-2.0-flash-live-001",
		Session: SessionConfig{
			InactivityTimeout: 10 * time.Second,
			CheckInterval:     5 * time.Second,
			GraceDelay:        15 * time.Second,
			ClosingMarkers:    []string{"meeting has ended"},
		},
		Audio: AudioConfig{
			TargetSampleRate: 16000,
			FrameDuration:    100 * time.Millisecond,
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must be set")
	}
	if c.Session.InactivityTimeout <= 0 {
		return fmt.Errorf("session.inactivity_timeout must be positive")
	}
	if c.Session.CheckInterval <= 0 {
		return fmt.Errorf("session.check_interval must be positive")
	}
	if c.Session.CheckInterval > c.Session.InactivityTimeout {
		return fmt.Errorf("session.check_interval must not exceed session.inactivity_timeout")
	}
	if c.Session.GraceDelay < 0 {
		return fmt.Errorf("session.grace_delay must not be negative")
	}
	if c.Audio.TargetSampleRate <= 0 {
		return fmt.Errorf("audio.target_sample_rate must be positive")
	}
	if c.Audio.FrameDuration <= 0 {
		return fmt.Errorf("audio.frame_duration must be positive")
	}
	return nil
}
