package handlers

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labstock/internal/models"
	"labstock/internal/services"
)

func TestExportPanel(t *testing.T) {
	syncSvc := new(MockSyncService)
	h := NewPanelHandlers(syncSvc)

	rows := []models.Row{{models.ColSaturnRef: "7", models.ColProductName: "Kit A"}}
	syncSvc.On("ExportPanel", mock.Anything, "serologia").Return(rows, nil).Once()

	rec, c := newTestContext(http.MethodGet, "/v1/panels/serologia/export", "")
	c.SetParamNames("panel")
	c.SetParamValues("serologia")

	require.NoError(t, h.ExportPanel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nombre producto")
	assert.Contains(t, rec.Body.String(), "Kit A")
	syncSvc.AssertExpectations(t)
}

func TestExportPanelUnknownPanel(t *testing.T) {
	syncSvc := new(MockSyncService)
	h := NewPanelHandlers(syncSvc)

	syncSvc.On("ExportPanel", mock.Anything, "nope").Return(nil, services.ErrPanelNotFound).Once()

	_, c := newTestContext(http.MethodGet, "/v1/panels/nope/export", "")
	c.SetParamNames("panel")
	c.SetParamValues("nope")

	err := h.ExportPanel(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestImportPanel(t *testing.T) {
	syncSvc := new(MockSyncService)
	h := NewPanelHandlers(syncSvc)

	syncSvc.On("ImportPanel", mock.Anything, "serologia", mock.MatchedBy(func(rows []models.Row) bool {
		return len(rows) == 1 && rows[0][models.ColProductName] == "Kit A"
	})).Return(1, services.StoreOutcome{Saved: true}, nil).Once()

	rec, c := newTestContext(http.MethodPost, "/v1/panels/serologia/import",
		`{"rows":[{"Nombre producto":"Kit A","Ref. Saturno":"7"}]}`)
	c.SetParamNames("panel")
	c.SetParamValues("serologia")

	require.NoError(t, h.ImportPanel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":1`)
	syncSvc.AssertExpectations(t)
}

func TestImportPanelMissingRowsNeverReachesService(t *testing.T) {
	syncSvc := new(MockSyncService)
	h := NewPanelHandlers(syncSvc)

	_, c := newTestContext(http.MethodPost, "/v1/panels/serologia/import", `{}`)
	c.SetParamNames("panel")
	c.SetParamValues("serologia")

	err := h.ImportPanel(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	syncSvc.AssertNotCalled(t, "ImportPanel", mock.Anything, mock.Anything, mock.Anything)
}
