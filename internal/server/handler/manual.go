package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"folioscope/internal/domain"
)

// ManualPositionService defines what the manual position handler needs
// from the service layer.
type ManualPositionService interface {
	Create(ctx context.Context, p domain.Position) (domain.Position, error)
	Update(ctx context.Context, p domain.Position) (domain.Position, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Position, error)
}

// ManualPositionHandler serves the manually entered position endpoints.
type ManualPositionHandler struct {
	positions ManualPositionService
	logger    *slog.Logger
}

// NewManualPositionHandler creates a ManualPositionHandler with the
// given service and logger.
func NewManualPositionHandler(positions ManualPositionService, logger *slog.Logger) *ManualPositionHandler {
	return &ManualPositionHandler{
		positions: positions,
		logger:    logger,
	}
}

// listManualResponse wraps the list response.
type listManualResponse struct {
	Positions []domain.Position `json:"positions"`
}

// ListPositions returns every manually entered position.
// GET /api/positions/manual
func (h *ManualPositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positions.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list manual positions failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}

	if positions == nil {
		positions = []domain.Position{}
	}

	writeJSON(w, http.StatusOK, listManualResponse{Positions: positions})
}

// CreatePosition creates a manual position from a JSON body.
// POST /api/positions/manual
func (h *ManualPositionHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var p domain.Position
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.positions.Create(r.Context(), p)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) || errors.Is(err, domain.ErrUnsupported) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create manual position failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create position")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdatePosition replaces an existing manual position.
// PUT /api/positions/manual/{id}
func (h *ManualPositionHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing position id")
		return
	}

	var p domain.Position
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p.ID = id

	updated, err := h.positions.Update(r.Context(), p)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) || errors.Is(err, domain.ErrUnsupported) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "position not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update manual position failed",
			slog.String("position_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update position")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeletePosition removes a manual position by its ID.
// DELETE /api/positions/manual/{id}
func (h *ManualPositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing position id")
		return
	}

	if err := h.positions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "position not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete manual position failed",
			slog.String("position_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete position")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "deleted",
		"position_id": id,
	})
}
