package main

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scenepack/internal/config"
	"scenepack/internal/logging"
	"scenepack/internal/registry"
	"scenepack/internal/store/localblob"
	"scenepack/internal/store/sqlite"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openInstance builds a registered packer instance backed by the
// configured database and workspace file store. The returned cleanup
// closes the database.
func (c *commandContext) openInstance() (*registry.Registry, *registry.Instance, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := sqlite.Open(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	blobs, err := localblob.New(filepath.Join(cfg.Paths.WorkspaceDir, "files"))
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	instance, err := registry.NewInstance(cfg, db, db, blobs, logger)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	reg := registry.New()
	if err := reg.Register(instance); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	cleanup := func() { db.Close() }
	return reg, instance, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
