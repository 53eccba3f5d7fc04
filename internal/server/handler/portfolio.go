package handler

import (
	"context"
	"log/slog"
	"net/http"

	"folioscope/internal/domain"
)

// PortfolioService defines what the portfolio handler needs from the
// service layer.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, forceRefresh bool) (domain.PortfolioView, error)
}

// PortfolioHandler serves the assembled portfolio view.
type PortfolioHandler struct {
	portfolio PortfolioService
	logger    *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler with the given service
// and logger.
func NewPortfolioHandler(portfolio PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		logger:    logger,
	}
}

// GetPortfolio returns the full portfolio view: positions, prices, and
// any per-source errors from the aggregation pass.
// GET /api/portfolio?forceRefresh=true
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	forceRefresh := queryBool(r, "forceRefresh")

	view, err := h.portfolio.GetPortfolio(r.Context(), forceRefresh)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get portfolio failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to assemble portfolio")
		return
	}

	if view.Positions == nil {
		view.Positions = []domain.Position{}
	}

	writeJSON(w, http.StatusOK, view)
}
