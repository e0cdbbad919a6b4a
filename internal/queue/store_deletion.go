package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const deletionColumns = `d.id, d.batch_id, d.file, d.status, d.exitcode, d.message, d.start_time, d.finish_time, b.site`

const deletionFromJoin = `standalone_deletion_tasks d JOIN standalone_deletion_batches b ON b.batch_id = d.batch_id`

func scanDeletionTask(scanner interface{ Scan(dest ...any) error }) (*DeletionTask, error) {
	var (
		id, batchID           int64
		file                  string
		statusStr             string
		exitCode              sql.NullInt64
		message               sql.NullString
		startTime, finishTime sql.NullInt64
		site                  string
	)
	if err := scanner.Scan(&id, &batchID, &file, &statusStr, &exitCode, &message, &startTime, &finishTime, &site); err != nil {
		return nil, err
	}
	return &DeletionTask{
		ID:         id,
		BatchID:    batchID,
		File:       file,
		Status:     Status(statusStr),
		ExitCode:   intPtrFromNull(exitCode),
		Message:    message.String,
		StartTime:  timePtrFromUnix(startTime),
		FinishTime: timePtrFromUnix(finishTime),
		Site:       site,
	}, nil
}

// InsertDeletionTask creates a task row; used only to seed fixtures in
// tests, mirroring InsertTransferTask.
func (s *Store) InsertDeletionTask(ctx context.Context, t *DeletionTask) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO standalone_deletion_tasks (batch_id, file, status) VALUES (?, ?, ?)`,
		t.BatchID, t.File, StatusNew,
	)
	if err != nil {
		return 0, fmt.Errorf("insert deletion task: %w", err)
	}
	return res.LastInsertId()
}

// GetDeletionTask fetches a single deletion task by id.
func (s *Store) GetDeletionTask(ctx context.Context, id int64) (*DeletionTask, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deletionColumns+` FROM `+deletionFromJoin+` WHERE d.id = ?`, id)
	task, err := scanDeletionTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deletion task: %w", err)
	}
	return task, nil
}

// NewDeletionTasks implements step 1's selecting query: drain new
// deletions ordered so the scheduler can group them by site.
func (s *Store) NewDeletionTasks(ctx context.Context) ([]*DeletionTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deletionColumns+` FROM `+deletionFromJoin+`
		 WHERE d.status = ? ORDER BY b.site, d.id`, StatusNew)
	if err != nil {
		return nil, fmt.Errorf("select new deletions: %w", err)
	}
	defer rows.Close()

	var tasks []*DeletionTask
	for rows.Next() {
		task, err := scanDeletionTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// QueuedDeletionIDs implements step 2's queued-set refresh source query.
func (s *Store) QueuedDeletionIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM standalone_deletion_tasks WHERE status = ?`, StatusQueued)
	if err != nil {
		return nil, fmt.Errorf("select queued deletion ids: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// SetDeletionQueued is the write half of add_task for a deletion pool.
func (s *Store) SetDeletionQueued(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_deletion_tasks SET status = ? WHERE id = ?`, StatusQueued, id)
}

// SetDeletionActive is the worker preamble's write.
func (s *Store) SetDeletionActive(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_deletion_tasks SET status = ? WHERE id = ?`, StatusActive, id)
}

// WriteDeletionTerminal is the collector's process_result write.
func (s *Store) WriteDeletionTerminal(ctx context.Context, id int64, exitCode int, message string, start, finish time.Time) error {
	status := StatusForExitCode(exitCode)
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_deletion_tasks
		 SET status = ?, exitcode = ?, message = ?, start_time = ?, finish_time = ?
		 WHERE id = ?`,
		status, exitCode, nullableString(message), nullableUnixTime(start), nullableUnixTime(finish), id,
	)
}

func collectDeletionTasks(rows *sql.Rows) ([]*DeletionTask, error) {
	var tasks []*DeletionTask
	for rows.Next() {
		task, err := scanDeletionTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func collectIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
