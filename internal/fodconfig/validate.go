package fodconfig

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable by the daemon.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateDB(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.MaxParallelLinks <= 0 {
		return errors.New("daemon.max_parallel_links must be positive")
	}
	if c.Daemon.TransferTimeout < 0 {
		return errors.New("daemon.transfer_timeout must not be negative")
	}
	switch c.Daemon.GFAL2Verbosity {
	case "normal", "verbose", "debug", "trace":
	default:
		return fmt.Errorf("daemon.gfal2_verbosity: unsupported value %q", c.Daemon.GFAL2Verbosity)
	}
	return nil
}

func (c *Config) validateDB() error {
	if c.DB.DBParams == "" {
		return errors.New("db.db_params is required")
	}
	return nil
}
