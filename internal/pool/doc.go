// Package pool implements the Pool Manager of spec.md §4.4: one
// bounded-concurrency executor per endpoint grouping (a source-destination
// pair for transfers, a site for staging or deletion), plus a background
// collector that drains completions and writes terminal state through a
// caller-supplied process_result callback. The original's OS-process
// workers become goroutines guarded by a semaphore, since the storage
// adapter here is an in-process, reentrant Go call rather than a blocking C
// library needing process isolation; see SPEC_FULL.md §5 for the full
// justification.
package pool
