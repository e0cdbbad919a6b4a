package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/dynamo-fod/fod/internal/deps"
	"github.com/dynamo-fod/fod/internal/fodconfig"
)

// Result reports one preflight check's outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckGFALBinaries reports whether the gfal2-util command-line tools the
// CLI adapter shells out to are present on PATH.
func CheckGFALBinaries() []deps.Status {
	return deps.CheckBinaries(Requirement())
}

// Requirement is kept as a constructor so the binary list lives in one
// place; it mirrors the tool names internal/gfal.CLIClient falls back to.
func Requirement() []deps.Requirement {
	return []deps.Requirement{
		{Name: "gfal-copy", Command: "gfal-copy", Description: "Required for transfer tasks"},
		{Name: "gfal-stat", Command: "gfal-stat", Description: "Required to check destination existence"},
		{Name: "gfal-rm", Command: "gfal-rm", Description: "Required for deletion tasks"},
		{Name: "gfal-legacy-bringonline", Command: "gfal-legacy-bringonline", Description: "Required for tape staging", Optional: true},
	}
}

// CheckX509Proxy verifies the configured proxy certificate exists and is
// readable, the same access bits the teacher's CheckDirectoryAccess
// verifies for media directories.
func CheckX509Proxy(path string) Result {
	const name = "X509 proxy"
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckAll runs every preflight check against cfg, for "fod doctor".
func CheckAll(cfg *fodconfig.Config) (binaries []deps.Status, results []Result) {
	binaries = CheckGFALBinaries()
	results = append(results, CheckX509Proxy(cfg.Daemon.X509Proxy))
	if cfg.Daemon.StagingX509Proxy != "" {
		results = append(results, CheckX509Proxy(cfg.Daemon.StagingX509Proxy))
	}
	return binaries, results
}
