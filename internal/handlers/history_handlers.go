package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"labstock/internal/services"
)

// HistoryHandlers serves the historical ledger: listing and the manual
// reconciliation delete.
type HistoryHandlers struct {
	syncService services.SyncService
}

// NewHistoryHandlers creates a new history handlers instance
func NewHistoryHandlers(syncService services.SyncService) *HistoryHandlers {
	return &HistoryHandlers{syncService: syncService}
}

// GetHistory handles listing a panel's ledger entries
func (h *HistoryHandlers) GetHistory(c echo.Context) error {
	ctx := c.Request().Context()
	panel := c.Param("panel")

	entries, err := h.syncService.History(ctx, panel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"panel":   panel,
		"entries": entries,
	})
}

// ReconcileDeleteRequest removes ledger entries matching exactly the given
// product name and lot number. The lot number is retyped by the operator; the
// two stores are keyed independently, so the service never guesses linkage.
type ReconcileDeleteRequest struct {
	ProductName string `json:"product_name" validate:"required"`
	LotNumber   string `json:"lot_number"`
	Confirm     string `json:"confirm" validate:"required"`
}

// ReconcileDelete handles the confirmed removal of ledger entries
func (h *HistoryHandlers) ReconcileDelete(c echo.Context) error {
	ctx := c.Request().Context()
	panel := c.Param("panel")

	var req ReconcileDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	removed, outcome, err := h.syncService.ReconcileDelete(ctx, panel, req.ProductName, req.LotNumber, req.Confirm)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"panel":   panel,
		"removed": removed,
		"save":    outcome,
	})
}
