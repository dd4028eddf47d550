package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateDispatch(); err != nil {
		return err
	}
	if err := c.validateStreams(); err != nil {
		return err
	}
	switch c.Chapters.Mode {
	case "cell", "program":
	default:
		return fmt.Errorf("chapters.mode must be cell or program, got %q", c.Chapters.Mode)
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.ContainsAny(c.Output.Extension, `/\ `) {
		return fmt.Errorf("output.extension %q must be a bare file extension", c.Output.Extension)
	}
	if c.Output.DSDSampleRate < 0 {
		return errors.New("output.dsd_sample_rate must be positive")
	}
	return nil
}

func (c *Config) validateDispatch() error {
	if c.Dispatch.MaxParallel < 0 {
		return errors.New("dispatch.max_parallel must be zero (unbounded) or positive")
	}
	return nil
}

func (c *Config) validateStreams() error {
	if len(c.Streams.DVDVideo) == 0 {
		return errors.New("streams.dvd_video must list at least one codec")
	}
	if len(c.Streams.DVDAudio) == 0 {
		return errors.New("streams.dvd_audio must list at least one codec")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
