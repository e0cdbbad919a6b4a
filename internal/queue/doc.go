// Package queue owns the daemon's view of the task tables shared with the
// external File Operations Manager: standalone_transfer_tasks,
// standalone_deletion_tasks, and their batch tables. The daemon reads and
// writes rows through this package but never issues schema DDL in
// production; Store.Bootstrap exists only for tests and local development.
package queue
