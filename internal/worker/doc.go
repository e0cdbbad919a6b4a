// Package worker implements the three stateless task functions spec.md
// §4.3 describes: transfer, stage, and delete. Each shares a cancellation
// preamble against a shared queued-id set before touching the storage
// adapter, and never returns an error out of Execute — every outcome,
// including a worker crash, is coerced into a gfal.Result the pool
// manager's collector can write to the database.
package worker
