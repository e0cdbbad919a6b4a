// Package scheduler implements the Queue Scheduler of spec.md §4.5: a
// single control loop that, every ~30 seconds, drains new deletions,
// issues bulk tape staging, promotes staging and runnable transfers into
// their pools, refreshes the shared queued-id sets, and recycles idle
// pools. The loop itself is single-threaded, matching spec.md §5's
// concurrency model; only the pools it feeds run work concurrently.
package scheduler
