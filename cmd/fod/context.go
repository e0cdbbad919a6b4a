package main

import (
	"fmt"

	"github.com/dynamo-fod/fod/internal/fodconfig"
	"github.com/dynamo-fod/fod/internal/queue"
)

// commandContext lazily loads config and opens the queue store, shared
// across subcommands the same way the teacher's commandContext shares a
// config/ipc-client pair across spindle's subcommands.
type commandContext struct {
	configFlag *string
	cfg        *fodconfig.Config
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*fodconfig.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, _, _, err := fodconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) withStore(fn func(cfg *fodconfig.Config, store *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg.DB.DBParams)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()
	return fn(cfg, store)
}
