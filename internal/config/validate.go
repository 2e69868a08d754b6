package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrigin(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		return errors.New("paths.archive_dir must be set")
	}
	return nil
}

func (c *Config) validateOrigin() error {
	if c.Origin.BaseURL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Origin.BaseURL)
	if err != nil {
		return fmt.Errorf("origin.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("origin.base_url must be http or https, got %q", c.Origin.BaseURL)
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.Workers > 64 {
		return fmt.Errorf("download.workers must be at most 64, got %d", c.Download.Workers)
	}
	if c.Download.TimeoutSeconds > 3600 {
		return fmt.Errorf("download.timeout_seconds must be at most 3600, got %d", c.Download.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
