package gfal

import "context"

// Client is the single-attempt storage operation surface a real GFAL2
// binding exposes. Adapter wraps a Client with the retry and
// classification policy spec.md §4.1 requires; Client implementations
// themselves never retry.
type Client interface {
	// Copy transfers src to dst under params. Overwrite controls whether an
	// existing destination is replaced or left alone (surfaced as EEXIST);
	// a non-empty ChecksumAlgo asks the tool to verify (or, with no
	// Checksum value, merely compute and log) a checksum after transfer.
	Copy(ctx context.Context, src, dst string, params CopyParams) Result

	// Stat resolves whether a URL is reachable, used by the transfer
	// worker's overwrite=false short-circuit.
	Stat(ctx context.Context, url string) Result

	// Unlink removes a URL. A missing target is reported as ENOENT and
	// treated as success-equivalent by the caller, not by Unlink itself.
	Unlink(ctx context.Context, url string) Result

	// BringOnline requests disk-residency for a batch of tape-backed
	// URLs in one call. pin and timeout mirror the upstream placeholder
	// values (pin=0, timeout=0) spec.md's Open Questions leave
	// unresolved; see internal/scheduler.
	BringOnline(ctx context.Context, urls []string, pin, timeout int) BringOnlineResult

	// BringOnlinePoll checks the outstanding bring_online request for a
	// single url without blocking. A Result with ExitCode == CodeEAgain
	// means staging is still in progress.
	BringOnlinePoll(ctx context.Context, url, token string, pin, timeout int) Result
}

// CopyParams mirrors spec.md §4.1's filecopy parameter table. CreateParents
// defaults to true in the daemon's own construction of CopyParams; Client
// implementations that always create parent directories (the gfal-copy CLI
// does via -p) may ignore the field rather than reject it.
type CopyParams struct {
	Overwrite     bool
	ChecksumAlgo  string
	Checksum      string
	Timeout       int
	CreateParents bool
}

// BringOnlineResult is bring_online's structured return: an overall call
// result plus, per spec.md §4.1, a per-file error map (a PFN present in
// the map failed staging individually even though the batch call as a
// whole succeeded) and the opaque token used to poll and to record on the
// batch row.
type BringOnlineResult struct {
	Result        Result
	Token         string
	PerFileErrors map[string]string
}
