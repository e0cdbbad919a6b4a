package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertTransferBatch creates a batch row; used to seed fixtures in tests.
func (s *Store) InsertTransferBatch(ctx context.Context, b *TransferBatch) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO standalone_transfer_batches (source_site, destination_site, mss_source, stage_token)
		 VALUES (?, ?, ?, ?)`,
		b.SourceSite, b.DestinationSite, boolToInt(b.MSSSource), nullableStringPtr(b.StageToken),
	)
	if err != nil {
		return 0, fmt.Errorf("insert transfer batch: %w", err)
	}
	return res.LastInsertId()
}

// InsertDeletionBatch creates a batch row; used to seed fixtures in tests.
func (s *Store) InsertDeletionBatch(ctx context.Context, b *DeletionBatch) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO standalone_deletion_batches (site) VALUES (?)`, b.Site)
	if err != nil {
		return 0, fmt.Errorf("insert deletion batch: %w", err)
	}
	return res.LastInsertId()
}

// GetTransferBatch fetches a single batch by id.
func (s *Store) GetTransferBatch(ctx context.Context, batchID int64) (*TransferBatch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT batch_id, source_site, destination_site, mss_source, stage_token
		 FROM standalone_transfer_batches WHERE batch_id = ?`, batchID)
	batch, err := scanTransferBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return batch, err
}

// UnstagedTapeBatches implements step 3's batch-selecting query: tape
// sources that have never had bring_online issued for them.
func (s *Store) UnstagedTapeBatches(ctx context.Context) ([]*TransferBatch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, source_site, destination_site, mss_source, stage_token
		 FROM standalone_transfer_batches WHERE mss_source = 1 AND stage_token IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("select unstaged tape batches: %w", err)
	}
	defer rows.Close()

	var batches []*TransferBatch
	for rows.Next() {
		batch, err := scanTransferBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// TasksForBatch returns every transfer task belonging to a batch, used to
// collect the source PFNs passed to bring_online.
func (s *Store) TasksForBatch(ctx context.Context, batchID int64) ([]*TransferTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM `+transferFromJoin+` WHERE t.batch_id = ? ORDER BY t.id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("select tasks for batch: %w", err)
	}
	defer rows.Close()
	return collectTransferTasks(rows)
}

// SetStageToken records the token bring_online returned for a batch. Called
// exactly once per batch (guarded by stage_token IS NULL in
// UnstagedTapeBatches), even when the token itself is empty, so the
// scheduler never re-issues bring_online for the same batch.
func (s *Store) SetStageToken(ctx context.Context, batchID int64, token string) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE standalone_transfer_batches SET stage_token = ? WHERE batch_id = ?`,
		token, batchID)
}

func scanTransferBatch(scanner interface{ Scan(dest ...any) error }) (*TransferBatch, error) {
	var (
		batchID                         int64
		sourceSite, destinationSite     string
		mssSource                       int64
		stageToken                      sql.NullString
	)
	if err := scanner.Scan(&batchID, &sourceSite, &destinationSite, &mssSource, &stageToken); err != nil {
		return nil, err
	}
	return &TransferBatch{
		BatchID:         batchID,
		SourceSite:      sourceSite,
		DestinationSite: destinationSite,
		MSSSource:       mssSource != 0,
		StageToken:      stringPtrFromNull(stageToken),
	}, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
