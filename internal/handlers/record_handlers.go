package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"labstock/internal/models"
	"labstock/internal/services"
)

// RecordHandlers serves the mutation paths: edit-intents and consumption.
type RecordHandlers struct {
	syncService services.SyncService
}

// NewRecordHandlers creates a new record handlers instance
func NewRecordHandlers(syncService services.SyncService) *RecordHandlers {
	return &RecordHandlers{syncService: syncService}
}

// UpdateRecordRequest is one edit-intent for a record. Selection picks the
// lot-group siblings that receive the cascaded order date; omitted means the
// whole group, an empty list opts every sibling out.
type UpdateRecordRequest struct {
	Changes   models.FieldChanges `json:"changes"`
	Selection []int               `json:"selection"`
}

// UpdateRecord applies field changes to one record, cascades the order date
// across its lot group and saves through both stores
func (h *RecordHandlers) UpdateRecord(c echo.Context) error {
	ctx := c.Request().Context()
	panel := c.Param("panel")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid record index")
	}

	var req UpdateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	outcome, err := h.syncService.ApplyEdit(ctx, panel, index, req.Changes, req.Selection)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, outcome)
}

// ConsumeRecordRequest removes units from a record's stock.
type ConsumeRecordRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// ConsumeRecord removes stock units, applying the depletion reset when the
// record reaches zero, and saves through both stores
func (h *RecordHandlers) ConsumeRecord(c echo.Context) error {
	ctx := c.Request().Context()
	panel := c.Param("panel")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid record index")
	}

	var req ConsumeRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	outcome, err := h.syncService.Consume(ctx, panel, index, req.Quantity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, outcome)
}
