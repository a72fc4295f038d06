package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromRow(t *testing.T) {
	rec := RecordFromRow(Row{
		ColSaturnRef:       "100",
		ColFisherRef:       "F-123",
		ColProductName:     " Kit A ",
		ColTemperature:     "2-8ºC",
		ColUnitsPerOrder:   "5",
		ColLotNumber:       "L1",
		ColExpiry:          "2025-01-31",
		ColDatePlaced:      "2024-05-01 09:30:00",
		ColDateArrived:     "08/05/2024",
		ColStorageLocation: "Nevera 2",
		ColStock:           "3",
		ColComment:         "keep away from light",
	})

	assert.Equal(t, 100, rec.SaturnRef)
	assert.Equal(t, "Kit A", rec.ProductName)
	assert.Equal(t, 5, rec.UnitsPerOrder)
	assert.Equal(t, 3, rec.Stock)

	require.NotNil(t, rec.Expiry)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.Local), *rec.Expiry)
	require.NotNil(t, rec.DatePlaced)
	assert.Equal(t, 9, rec.DatePlaced.Hour())
	require.NotNil(t, rec.DateArrived)
	assert.Equal(t, time.May, rec.DateArrived.Month())
}

func TestRecordFromRowMissingColumnsDefault(t *testing.T) {
	rec := RecordFromRow(Row{ColProductName: "Kit A"})

	assert.Equal(t, 0, rec.SaturnRef)
	assert.Equal(t, 0, rec.Stock)
	assert.Empty(t, rec.LotNumber)
	assert.Nil(t, rec.Expiry)
	assert.Nil(t, rec.DatePlaced)
	assert.Nil(t, rec.DateArrived)
}

func TestRecordFromRowBadCellsCoerceToDefaults(t *testing.T) {
	rec := RecordFromRow(Row{
		ColSaturnRef:     "not a number",
		ColStock:         "-4", // stock is clamped, never negative
		ColExpiry:        "caducado hace tiempo",
		ColUnitsPerOrder: "12.0", // spreadsheet float form of an int
	})

	assert.Equal(t, 0, rec.SaturnRef)
	assert.Equal(t, 0, rec.Stock)
	assert.Nil(t, rec.Expiry)
	assert.Equal(t, 12, rec.UnitsPerOrder)
}

func TestRowRoundTrip(t *testing.T) {
	expiry := time.Date(2025, 1, 31, 0, 0, 0, 0, time.Local)
	rec := ReagentRecord{
		SaturnRef:       7,
		FisherRef:       "F-9",
		ProductName:     "Diluent",
		UnitsPerOrder:   2,
		LotNumber:       "L7",
		Expiry:          &expiry,
		StorageLocation: "Congelador",
		Stock:           4,
	}

	back := RecordFromRow(RowFromRecord(rec))
	assert.Equal(t, rec.SaturnRef, back.SaturnRef)
	assert.Equal(t, rec.LotNumber, back.LotNumber)
	assert.Equal(t, rec.Stock, back.Stock)
	require.NotNil(t, back.Expiry)
	assert.True(t, back.Expiry.Equal(expiry))
	assert.Nil(t, back.DatePlaced)
}
