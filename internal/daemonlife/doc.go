// Package daemonlife owns the process lifecycle concerns spec.md §4.6
// assigns to the parent process: resource limits, privilege drop, signal
// translation, single-instance locking, startup crash recovery, and the
// shutdown drain. It is generalized from the teacher's daemon.Daemon
// (single-instance flock) and daemonrun.Run (signal context, PID file,
// logger wiring) to the FOD's scheduler-driven lifecycle instead of a
// workflow-manager-driven one.
package daemonlife
