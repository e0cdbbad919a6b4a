package queue

import (
	"context"
	"fmt"
)

// ResetInFlight implements the crash-recovery sweep from spec.md §4.6: any
// row left in queued or active after a restart is forced back to new. It
// runs once at startup and once more during the final shutdown drain.
func (s *Store) ResetInFlight(ctx context.Context) error {
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_tasks SET status = ? WHERE status IN (?, ?)`,
		StatusNew, StatusQueued, StatusActive,
	); err != nil {
		return fmt.Errorf("reset in-flight transfer tasks: %w", err)
	}
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE standalone_deletion_tasks SET status = ? WHERE status IN (?, ?)`,
		StatusNew, StatusQueued, StatusActive,
	); err != nil {
		return fmt.Errorf("reset in-flight deletion tasks: %w", err)
	}
	return nil
}
