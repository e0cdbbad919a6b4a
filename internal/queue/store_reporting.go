package queue

import (
	"context"
	"fmt"
)

// Stats returns the count of rows in each status, combined across both task
// tables, for "fod status".
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, table := range []string{"standalone_transfer_tasks", "standalone_deletion_tasks"} {
		rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
		if err != nil {
			return nil, fmt.Errorf("select %s stats: %w", table, err)
		}
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s stats: %w", table, err)
			}
			counts[Status(status)] += count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return counts, nil
}

// ListTransferTasks returns transfer tasks, optionally filtered by status,
// for "fod queue list --kind=transfer".
func (s *Store) ListTransferTasks(ctx context.Context, status Status) ([]*TransferTask, error) {
	query := `SELECT ` + transferColumns + ` FROM ` + transferFromJoin
	args := []any{}
	if status != "" {
		query += ` WHERE t.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY t.id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfer tasks: %w", err)
	}
	defer rows.Close()
	return collectTransferTasks(rows)
}

// ListDeletionTasks returns deletion tasks, optionally filtered by status,
// for "fod queue list --kind=deletion".
func (s *Store) ListDeletionTasks(ctx context.Context, status Status) ([]*DeletionTask, error) {
	query := `SELECT ` + deletionColumns + ` FROM ` + deletionFromJoin
	args := []any{}
	if status != "" {
		query += ` WHERE d.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY d.id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deletion tasks: %w", err)
	}
	defer rows.Close()
	return collectDeletionTasks(rows)
}

// TransferTasksByIDs bulk-fetches transfer tasks for "fod queue show",
// which accepts more than one id per invocation.
func (s *Store) TransferTasksByIDs(ctx context.Context, ids []int64) ([]*TransferTask, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM `+transferFromJoin+` WHERE t.id IN (`+makePlaceholders(len(ids))+`) ORDER BY t.id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("list transfer tasks by id: %w", err)
	}
	defer rows.Close()
	return collectTransferTasks(rows)
}

// DeletionTasksByIDs is TransferTasksByIDs's deletion-table counterpart.
func (s *Store) DeletionTasksByIDs(ctx context.Context, ids []int64) ([]*DeletionTask, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deletionColumns+` FROM `+deletionFromJoin+` WHERE d.id IN (`+makePlaceholders(len(ids))+`) ORDER BY d.id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("list deletion tasks by id: %w", err)
	}
	defer rows.Close()
	return collectDeletionTasks(rows)
}
