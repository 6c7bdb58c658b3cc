package config

import (
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return err
	}
	if c.Paths.DestDir, err = expandPath(c.Paths.DestDir); err != nil {
		return err
	}
	if c.Paths.IntrinsicsDir, err = expandPath(c.Paths.IntrinsicsDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.ArtifactFile, err = expandPath(c.Paths.ArtifactFile); err != nil {
		return err
	}
	if c.TrialLog.File, err = expandPath(c.TrialLog.File); err != nil {
		return err
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeVideo() {
	ext := strings.ToLower(strings.TrimSpace(c.Video.Extension))
	if ext == "" {
		ext = defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Video.Extension = ext
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
