package fodconfig

import "strings"

func (c *Config) normalize() {
	c.User = strings.TrimSpace(c.User)
	c.Daemon.X509Proxy = strings.TrimSpace(c.Daemon.X509Proxy)
	c.Daemon.StagingX509Proxy = strings.TrimSpace(c.Daemon.StagingX509Proxy)
	if c.Daemon.StagingX509Proxy == "" {
		// spec.md §6: staging_x509_proxy defaults to x509_proxy.
		c.Daemon.StagingX509Proxy = c.Daemon.X509Proxy
	}
	c.Daemon.GFAL2Verbosity = strings.ToLower(strings.TrimSpace(c.Daemon.GFAL2Verbosity))
	if c.Daemon.GFAL2Verbosity == "" {
		c.Daemon.GFAL2Verbosity = "normal"
	}
	if c.Daemon.MaxParallelLinks <= 0 {
		c.Daemon.MaxParallelLinks = 8
	}
	if c.Daemon.SchedulerPeriod <= 0 {
		c.Daemon.SchedulerPeriod = 30
	}
	if c.Daemon.CollectorPeriod <= 0 {
		c.Daemon.CollectorPeriod = 5
	}
	c.DB.DBParams = strings.TrimSpace(c.DB.DBParams)
	if c.DB.DBParams == "" {
		c.DB.DBParams = "file:fod.db"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Path = strings.TrimSpace(c.Logging.Path)
}
