package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"clipvault/internal/clipstore"
	"clipvault/internal/config"
	"clipvault/internal/logging"
	"clipvault/internal/timeindex"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
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
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// openStore builds the two-tier store. The returned backend is nil when no
// remote tier is configured; the store degrades to local-only in that case.
func (c *commandContext) openStore(logger *slog.Logger) (*clipstore.Store, clipstore.RemoteBackend, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	var remote clipstore.RemoteBackend
	backend, err := clipstore.NewS3Backend(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	if backend != nil {
		remote = backend
	}

	store := clipstore.New(cfg.Paths.StagingDir, timeindex.New(time.Local), remote, logger)
	return store, remote, nil
}
