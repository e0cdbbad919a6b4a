package queue

import "time"

// Status is the lifecycle state of a task row. Transfer tasks use the full
// DAG including staging/staged; deletion tasks never occupy those two
// states.
type Status string

const (
	StatusNew       Status = "new"
	StatusStaging   Status = "staging"
	StatusStaged    Status = "staged"
	StatusQueued    Status = "queued"
	StatusActive    Status = "active"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// CancelledExitCode is the sentinel exit code a worker reports when it finds
// its id has been removed from the queued-id set before starting I/O.
const CancelledExitCode = -1

// TransferTask is one row of standalone_transfer_tasks, joined with its
// batch for the site and staging columns the scheduler needs to group and
// route work.
type TransferTask struct {
	ID              int64
	BatchID         int64
	Source          string
	Destination     string
	ChecksumAlgo    string
	Checksum        string
	Status          Status
	ExitCode        *int
	Message         string
	StartTime       *time.Time
	FinishTime      *time.Time
	SourceSite      string
	DestinationSite string
	MSSSource       bool
	StageToken      *string
}

// TransferBatch is one row of standalone_transfer_batches.
type TransferBatch struct {
	BatchID         int64
	SourceSite      string
	DestinationSite string
	MSSSource       bool
	StageToken      *string
}

// DeletionTask is one row of standalone_deletion_tasks, joined with its
// batch for the destination site.
type DeletionTask struct {
	ID         int64
	BatchID    int64
	File       string
	Status     Status
	ExitCode   *int
	Message    string
	StartTime  *time.Time
	FinishTime *time.Time
	Site       string
}

// DeletionBatch is one row of standalone_deletion_batches.
type DeletionBatch struct {
	BatchID int64
	Site    string
}

// StatusForExitCode maps a worker's exit code to the terminal status the
// pool manager's collector should write, per spec.md §4.4.
func StatusForExitCode(exitCode int) Status {
	switch {
	case exitCode == CancelledExitCode:
		return StatusCancelled
	case exitCode == 0:
		return StatusDone
	default:
		return StatusFailed
	}
}
