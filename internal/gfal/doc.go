// Package gfal is the thin capability layer over the grid data-movement
// library: filecopy, stat, unlink, bring_online, and bring_online_poll,
// exactly the operation table in spec.md §4.1. Every call runs under a
// per-call log capture buffer and retries internal transient failures up
// to 5 attempts, breaking early on an irrecoverable classification. The
// adapter never writes to the database.
package gfal
