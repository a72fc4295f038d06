package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"labstock/internal/services"
)

// SnapshotHandlers serves the versioned-ledger administration paths: listing,
// manual snapshot creation and confirmed destructive deletes.
type SnapshotHandlers struct {
	syncService services.SyncService
}

// NewSnapshotHandlers creates a new snapshot handlers instance
func NewSnapshotHandlers(syncService services.SyncService) *SnapshotHandlers {
	return &SnapshotHandlers{syncService: syncService}
}

// ListSnapshots handles listing a store's snapshots, every bucket, newest first
func (h *SnapshotHandlers) ListSnapshots(c echo.Context) error {
	ctx := c.Request().Context()
	store := c.Param("store")

	refs, err := h.syncService.ListSnapshots(ctx, store, "")
	if err != nil {
		return httpError(err)
	}
	buckets, err := h.syncService.ListBuckets(ctx, store)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"store":     store,
		"buckets":   buckets,
		"snapshots": refs,
	})
}

// ListBucket handles listing one year-month bucket of a store
func (h *SnapshotHandlers) ListBucket(c echo.Context) error {
	ctx := c.Request().Context()

	refs, err := h.syncService.ListSnapshots(ctx, c.Param("store"), c.Param("bucket"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bucket":    c.Param("bucket"),
		"snapshots": refs,
	})
}

// CreateSnapshot handles writing a manual snapshot of a store's in-memory state
func (h *SnapshotHandlers) CreateSnapshot(c echo.Context) error {
	ctx := c.Request().Context()
	store := c.Param("store")

	ref, err := h.syncService.CreateSnapshot(ctx, store)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"store":    store,
		"snapshot": ref,
	})
}

// ConfirmRequest carries the typed confirmation string of a destructive
// action. Single deletes require "ELIMINAR", bucket-wide deletes the stronger
// "ELIMINAR TODO".
type ConfirmRequest struct {
	Confirm string `json:"confirm" validate:"required"`
}

// DeleteSnapshot handles deleting a single snapshot artifact
func (h *SnapshotHandlers) DeleteSnapshot(c echo.Context) error {
	ctx := c.Request().Context()

	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.syncService.DeleteSnapshot(ctx, c.Param("store"), c.Param("bucket"), c.Param("name"), req.Confirm)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": c.Param("name"),
	})
}

// DeleteBucket handles deleting every snapshot in a year-month bucket
func (h *SnapshotHandlers) DeleteBucket(c echo.Context) error {
	ctx := c.Request().Context()

	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.syncService.DeleteBucket(ctx, c.Param("store"), c.Param("bucket"), req.Confirm)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted_bucket": c.Param("bucket"),
	})
}
