package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"labstock/internal/models"
	"labstock/internal/services"
)

// PanelHandlers serves the read paths: panel listings and the annotated,
// display-sorted view of one panel. Rendering a panel never touches storage.
type PanelHandlers struct {
	syncService services.SyncService
}

// NewPanelHandlers creates a new panel handlers instance
func NewPanelHandlers(syncService services.SyncService) *PanelHandlers {
	return &PanelHandlers{syncService: syncService}
}

// ListPanels handles getting the names of all loaded panels
func (h *PanelHandlers) ListPanels(c echo.Context) error {
	ctx := c.Request().Context()
	panels := h.syncService.Panels(ctx)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"panels": panels,
	})
}

// GetPanel handles getting one panel's records annotated with lot-group
// colors, title flags and alarm states, in display order
func (h *PanelHandlers) GetPanel(c echo.Context) error {
	ctx := c.Request().Context()
	panel := c.Param("panel")

	records, err := h.syncService.AnnotatedPanel(ctx, panel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"panel":   panel,
		"records": records,
	})
}

// ExportPanel handles rendering a panel's records as tabular rows under the
// store's original column headers
func (h *PanelHandlers) ExportPanel(c echo.Context) error {
	ctx := c.Request().Context()
	panel := c.Param("panel")

	rows, err := h.syncService.ExportPanel(ctx, panel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"panel": panel,
		"rows":  rows,
	})
}

// ImportPanelRequest carries the tabular rows replacing a panel's record set.
type ImportPanelRequest struct {
	Rows []models.Row `json:"rows" validate:"required"`
}

// ImportPanel handles replacing a panel's records from tabular rows and
// saving the current store
func (h *PanelHandlers) ImportPanel(c echo.Context) error {
	ctx := c.Request().Context()
	panel := c.Param("panel")

	var req ImportPanelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	count, outcome, err := h.syncService.ImportPanel(ctx, panel, req.Rows)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"panel":    panel,
		"imported": count,
		"save":     outcome,
	})
}
