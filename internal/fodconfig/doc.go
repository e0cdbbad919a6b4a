// Package fodconfig defines the daemon's TOML configuration surface:
// user, daemon tuning, db params, and logging.
package fodconfig
