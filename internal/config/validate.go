package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDereverb(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateDereverb() error {
	switch c.Dereverb.Backend {
	case "pytorch", "onnx":
		return nil
	default:
		return fmt.Errorf("dereverb.backend must be \"pytorch\" or \"onnx\", got %q", c.Dereverb.Backend)
	}
}

func (c *Config) validateTranscription() error {
	if c.Transcription.VolumeGateDB > 0 {
		return fmt.Errorf("transcription.volume_gate_db must be negative (dBFS), got %g", c.Transcription.VolumeGateDB)
	}
	if c.Transcription.MaxSegmentSeconds < 5 {
		return fmt.Errorf("transcription.max_segment_seconds must be at least 5, got %g", c.Transcription.MaxSegmentSeconds)
	}
	if c.Transcription.MaxLineChars < 10 {
		return fmt.Errorf("transcription.max_line_chars must be at least 10, got %d", c.Transcription.MaxLineChars)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
}
