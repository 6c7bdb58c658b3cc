package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTime(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return fmt.Errorf("config validation: paths.source_dir is required")
	}
	if strings.TrimSpace(c.Paths.DestDir) == "" {
		return fmt.Errorf("config validation: paths.dest_dir is required")
	}
	if strings.TrimSpace(c.TrialLog.File) == "" {
		return fmt.Errorf("config validation: trial_log.file is required")
	}
	return nil
}

func (c *Config) validateTime() error {
	zone := strings.TrimSpace(c.Time.Zone)
	if zone == "" {
		return fmt.Errorf("config validation: time.zone is required")
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return fmt.Errorf("config validation: time.zone %q: %w", zone, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config validation: logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config validation: logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
