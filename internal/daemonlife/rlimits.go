package daemonlife

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MaxOpenFiles is the ceiling spec.md §4.6 names for RLIMIT_NOFILE.
const MaxOpenFiles = 65536

// RaiseResourceLimits bumps RLIMIT_NOFILE and RLIMIT_NPROC to their maxima,
// the first step of startup per spec.md §4.6. It must run before the
// privilege drop: an unprivileged process can lower a limit but not raise
// one past its own hard ceiling.
func RaiseResourceLimits() error {
	if err := raiseLimit(unix.RLIMIT_NOFILE, MaxOpenFiles); err != nil {
		return fmt.Errorf("raise RLIMIT_NOFILE: %w", err)
	}
	if err := raiseLimit(unix.RLIMIT_NPROC, 0); err != nil {
		return fmt.Errorf("raise RLIMIT_NPROC: %w", err)
	}
	return nil
}

// raiseLimit raises the soft limit to want, clamped to the existing hard
// ceiling; the hard limit is left unchanged. want == 0 means "raise to the
// current hard max".
func raiseLimit(resource int, want uint64) error {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(resource, &rlimit); err != nil {
		return err
	}
	target := want
	if target == 0 || target > rlimit.Max {
		target = rlimit.Max
	}
	if rlimit.Cur >= target {
		return nil
	}
	rlimit.Cur = target
	return unix.Setrlimit(resource, &rlimit)
}
