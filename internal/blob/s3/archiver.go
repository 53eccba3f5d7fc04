package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"folioscope/internal/domain"
)

// BlobWriter is the upload surface the archiver needs.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// SnapshotArchiver implements domain.SnapshotArchiver: snapshots older
// than the cutoff are serialized to JSONL, uploaded under
// archive/snapshots/YYYY-MM.jsonl, and then deleted from the primary
// store. Deletion only happens after a successful upload, so a failed
// run leaves everything queryable in PostgreSQL.
type SnapshotArchiver struct {
	writer    BlobWriter
	snapshots domain.SnapshotStore
	batchSize int
	logger    *slog.Logger
}

// NewSnapshotArchiver creates the archiver.
func NewSnapshotArchiver(writer BlobWriter, snapshots domain.SnapshotStore, logger *slog.Logger) *SnapshotArchiver {
	return &SnapshotArchiver{
		writer:    writer,
		snapshots: snapshots,
		batchSize: 500,
		logger:    logger.With("component", "snapshot_archiver"),
	}
}

// ArchiveBefore implements domain.SnapshotArchiver.
func (a *SnapshotArchiver) ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error) {
	aged, err := a.snapshots.ListBefore(ctx, cutoff, a.batchSize)
	if err != nil {
		return 0, fmt.Errorf("s3blob: list aged snapshots: %w", err)
	}
	if len(aged) == 0 {
		return 0, nil
	}

	// The payload is excluded from API responses but is the whole point
	// of cold storage, so re-attach it for the archive file.
	records := make([]archivedSnapshot, len(aged))
	for i, snap := range aged {
		records[i] = archivedSnapshot{Snapshot: snap, Payload: json.RawMessage(snap.Payload)}
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: encode snapshot archive: %w", err)
	}

	path := fmt.Sprintf("archive/snapshots/%s.jsonl", cutoff.Format("2006-01"))
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: upload snapshot archive: %w", err)
	}

	archived := 0
	for _, snap := range aged {
		if err := a.snapshots.Delete(ctx, snap.ID); err != nil {
			// The upload already holds a copy; report the partial
			// delete and let the next run retry the rest.
			a.logger.Error("failed to prune archived snapshot", "id", snap.ID, "error", err)
			return archived, fmt.Errorf("s3blob: prune snapshot %s: %w", snap.ID, err)
		}
		archived++
	}

	a.logger.Info("snapshots archived", "count", archived, "path", path)
	return archived, nil
}

// archivedSnapshot widens domain.Snapshot with the raw view payload.
type archivedSnapshot struct {
	domain.Snapshot
	Payload json.RawMessage `json:"payload,omitempty"`
}

// marshalJSONL serializes records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.SnapshotArchiver = (*SnapshotArchiver)(nil)
