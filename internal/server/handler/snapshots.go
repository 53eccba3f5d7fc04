package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"folioscope/internal/domain"
)

// SnapshotService defines what the snapshot handler needs from the
// service layer.
type SnapshotService interface {
	Take(ctx context.Context) (domain.Snapshot, error)
	List(ctx context.Context, since time.Time, limit int) ([]domain.Snapshot, error)
}

// SnapshotHandler serves the snapshot history endpoints.
type SnapshotHandler struct {
	snapshots SnapshotService
	logger    *slog.Logger
}

// NewSnapshotHandler creates a SnapshotHandler with the given service
// and logger.
func NewSnapshotHandler(snapshots SnapshotService, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		snapshots: snapshots,
		logger:    logger,
	}
}

// listSnapshotsResponse wraps the list snapshots response.
type listSnapshotsResponse struct {
	Snapshots []domain.Snapshot `json:"snapshots"`
}

// ListSnapshots returns snapshots from the last `days` days (default
// 30), newest first.
// GET /api/snapshots?days=30&limit=100
func (h *SnapshotHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days <= 0 {
		days = 30
	}
	limit := queryInt(r, "limit", 0)
	since := time.Now().AddDate(0, 0, -days)

	snapshots, err := h.snapshots.List(r.Context(), since, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list snapshots failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	if snapshots == nil {
		snapshots = []domain.Snapshot{}
	}

	writeJSON(w, http.StatusOK, listSnapshotsResponse{Snapshots: snapshots})
}

// TriggerSnapshot records a snapshot of the current portfolio
// valuation.
// POST /api/snapshots/trigger
func (h *SnapshotHandler) TriggerSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Take(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: trigger snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to take snapshot")
		return
	}

	writeJSON(w, http.StatusCreated, snap)
}
