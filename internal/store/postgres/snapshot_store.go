package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"folioscope/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore using PostgreSQL. The
// full portfolio view payload is kept as JSONB alongside the totals so
// history charts never need to replay an aggregation.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a SnapshotStore backed by the given pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

const snapshotSelectCols = `id, taken_at, total_value, total_debt, position_count, payload`

func scanSnapshotRows(rows pgx.Rows) ([]domain.Snapshot, error) {
	var snapshots []domain.Snapshot
	for rows.Next() {
		var s domain.Snapshot
		if err := rows.Scan(
			&s.ID, &s.TakenAt, &s.TotalValue, &s.TotalDebt,
			&s.PositionCount, &s.Payload,
		); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Create inserts a new snapshot.
func (s *SnapshotStore) Create(ctx context.Context, snap domain.Snapshot) error {
	const query = `
		INSERT INTO snapshots (
			id, taken_at, total_value, total_debt, position_count, payload
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		snap.ID, snap.TakenAt, snap.TotalValue, snap.TotalDebt,
		snap.PositionCount, snap.Payload,
	)
	if err != nil {
		return fmt.Errorf("postgres: create snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// List returns snapshots taken at or after since, newest first.
func (s *SnapshotStore) List(ctx context.Context, since time.Time, limit int) ([]domain.Snapshot, error) {
	query := `SELECT ` + snapshotSelectCols + ` FROM snapshots
		WHERE taken_at >= $1 ORDER BY taken_at DESC`
	args := []any{since}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots, err := scanSnapshotRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan snapshots: %w", err)
	}
	return snapshots, nil
}

// ListBefore returns snapshots older than the cutoff, oldest first, for
// archival.
func (s *SnapshotStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Snapshot, error) {
	query := `SELECT ` + snapshotSelectCols + ` FROM snapshots
		WHERE taken_at < $1 ORDER BY taken_at`
	args := []any{cutoff}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots before cutoff: %w", err)
	}
	defer rows.Close()

	snapshots, err := scanSnapshotRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan snapshots: %w", err)
	}
	return snapshots, nil
}

// Delete removes a snapshot by id.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete snapshot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
