package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const transferColumns = `t.id, t.batch_id, t.source, t.destination, t.checksum_algo, t.checksum,
	t.status, t.exitcode, t.message, t.start_time, t.finish_time,
	b.source_site, b.destination_site, b.mss_source, b.stage_token`

const transferFromJoin = `standalone_transfer_tasks t JOIN standalone_transfer_batches b ON b.batch_id = t.batch_id`

func scanTransferTask(scanner interface{ Scan(dest ...any) error }) (*TransferTask, error) {
	var (
		id, batchID           int64
		source, destination   string
		checksumAlgo          sql.NullString
		checksum              sql.NullString
		statusStr             string
		exitCode              sql.NullInt64
		message               sql.NullString
		startTime, finishTime sql.NullInt64
		sourceSite            string
		destinationSite       string
		mssSource             int64
		stageToken            sql.NullString
	)
	if err := scanner.Scan(
		&id, &batchID, &source, &destination, &checksumAlgo, &checksum,
		&statusStr, &exitCode, &message, &startTime, &finishTime,
		&sourceSite, &destinationSite, &mssSource, &stageToken,
	); err != nil {
		return nil, err
	}
	return &TransferTask{
		ID:              id,
		BatchID:         batchID,
		Source:          source,
		Destination:     destination,
		ChecksumAlgo:    checksumAlgo.String,
		Checksum:        checksum.String,
		Status:          Status(statusStr),
		ExitCode:        intPtrFromNull(exitCode),
		Message:         message.String,
		StartTime:       timePtrFromUnix(startTime),
		FinishTime:      timePtrFromUnix(finishTime),
		SourceSite:      sourceSite,
		DestinationSite: destinationSite,
		MSSSource:       mssSource != 0,
		StageToken:      stringPtrFromNull(stageToken),
	}, nil
}

// InsertTransferTask creates a task row. Task creation is normally FOM's
// job; the daemon uses this only to seed fixtures in tests.
func (s *Store) InsertTransferTask(ctx context.Context, t *TransferTask) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO standalone_transfer_tasks (batch_id, source, destination, checksum_algo, checksum, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.BatchID, t.Source, t.Destination, nullableString(t.ChecksumAlgo), nullableString(t.Checksum), StatusNew,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transfer task: %w", err)
	}
	return res.LastInsertId()
}

// GetTransferTask fetches a single transfer task by id.
func (s *Store) GetTransferTask(ctx context.Context, id int64) (*TransferTask, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM `+transferFromJoin+` WHERE t.id = ?`, id)
	task, err := scanTransferTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transfer task: %w", err)
	}
	return task, nil
}

// RunnableTransferTasks implements spec.md §4.5 step 5's selecting query:
// non-tape tasks still new, plus any task a staging cycle has finished.
func (s *Store) RunnableTransferTasks(ctx context.Context) ([]*TransferTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM `+transferFromJoin+`
		 WHERE (t.status = ? AND b.mss_source = 0) OR t.status = ?
		 ORDER BY b.source_site, b.destination_site, t.id`,
		StatusNew, StatusStaged,
	)
	if err != nil {
		return nil, fmt.Errorf("select runnable transfers: %w", err)
	}
	defer rows.Close()
	return collectTransferTasks(rows)
}

// StagingTransferTasks implements step 4's selecting query.
func (s *Store) StagingTransferTasks(ctx context.Context) ([]*TransferTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM `+transferFromJoin+`
		 WHERE t.status = ? ORDER BY b.source_site, t.id`,
		StatusStaging,
	)
	if err != nil {
		return nil, fmt.Errorf("select staging transfers: %w", err)
	}
	defer rows.Close()
	return collectTransferTasks(rows)
}

// QueuedTransferIDs implements step 6's queued-set refresh source query.
func (s *Store) QueuedTransferIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM standalone_transfer_tasks WHERE status = ?`, StatusQueued)
	if err != nil {
		return nil, fmt.Errorf("select queued transfer ids: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

func collectTransferTasks(rows *sql.Rows) ([]*TransferTask, error) {
	var tasks []*TransferTask
	for rows.Next() {
		task, err := scanTransferTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// SetTransferQueued transitions a task new/staged -> queued, the write half
// of Pool Manager's add_task in spec.md §4.4.
func (s *Store) SetTransferQueued(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_tasks SET status = ? WHERE id = ?`, StatusQueued, id)
}

// SetTransferStaging marks a task as awaiting a bring_online_poll result.
func (s *Store) SetTransferStaging(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_tasks SET status = ? WHERE id = ?`, StatusStaging, id)
}

// SetTransferActive is the worker preamble's write after winning the
// queued-set test-and-remove.
func (s *Store) SetTransferActive(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_tasks SET status = ? WHERE id = ?`, StatusActive, id)
}

// SetTransferStaged is the staging worker's process_result write, issued
// only when bring_online_poll reports ready.
func (s *Store) SetTransferStaged(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_tasks SET status = ? WHERE id = ?`, StatusStaged, id)
}

// WriteTransferTerminal is the collector's process_result write for a
// completed (or cancelled) transfer task.
func (s *Store) WriteTransferTerminal(ctx context.Context, id int64, exitCode int, message string, start, finish time.Time) error {
	status := StatusForExitCode(exitCode)
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_tasks
		 SET status = ?, exitcode = ?, message = ?, start_time = ?, finish_time = ?
		 WHERE id = ?`,
		status, exitCode, nullableString(message), nullableUnixTime(start), nullableUnixTime(finish), id,
	)
}

// SetTransferFailedDuringStaging marks a task failed when bring_online
// reports a per-file error for it (spec.md §4.5 step 3).
func (s *Store) SetTransferFailedDuringStaging(ctx context.Context, id int64, message string) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_tasks SET status = ?, exitcode = ?, message = ? WHERE id = ?`,
		StatusFailed, CancelledExitCode, nullableString(message), id,
	)
}
