package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrigin()
	c.normalizeDownload()
	c.normalizePacks()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = defaultDatabasePath
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrigin() {
	base := strings.TrimSpace(c.Origin.BaseURL)
	if base == "" {
		if value, ok := os.LookupEnv("SCENEPACK_ORIGIN_URL"); ok {
			base = strings.TrimSpace(value)
		}
	}
	base = strings.TrimRight(base, "/")
	c.Origin.BaseURL = base
}

func (c *Config) normalizeDownload() {
	if c.Download.Workers <= 0 {
		c.Download.Workers = defaultDownloadWorkers
	}
	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = defaultDownloadTimeout
	}
}

func (c *Config) normalizePacks() {
	modules := make([]string, 0, len(c.Packs.AllowedModules))
	for _, name := range c.Packs.AllowedModules {
		if name = strings.TrimSpace(name); name != "" {
			modules = append(modules, name)
		}
	}
	c.Packs.AllowedModules = modules

	prefixes := make([]string, 0, len(c.Packs.StripPrefixes))
	for _, prefix := range c.Packs.StripPrefixes {
		prefix = strings.TrimSpace(prefix)
		prefix = strings.TrimPrefix(prefix, "/")
		if prefix != "" {
			prefixes = append(prefixes, prefix)
		}
	}
	c.Packs.StripPrefixes = prefixes
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
}
