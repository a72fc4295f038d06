package models

import (
	"strconv"
	"strings"
	"time"
)

// Logical column names of the workbook-equivalent tabular format. The store
// predates this service and keeps its original Spanish headers.
const (
	ColSaturnRef       = "Ref. Saturno"
	ColFisherRef       = "Ref. Fisher"
	ColProductName     = "Nombre producto"
	ColTemperature     = "Tª"
	ColUnitsPerOrder   = "Uds."
	ColLotNumber       = "NºLote"
	ColExpiry          = "Caducidad"
	ColDatePlaced      = "Fecha Pedida"
	ColDateArrived     = "Fecha Llegada"
	ColStorageLocation = "Sitio almacenaje"
	ColStock           = "Stock"
	ColComment         = "Comentario"
	ColRecordedAt      = "Fecha registro"
)

// Row is one loosely typed tabular row keyed by column name. Missing columns
// and unparseable cells coerce to defaults rather than failing the load.
type Row map[string]string

// dateLayouts are tried in order when coercing a date cell. Free-text values
// that match none of them coerce to absent.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"02-01-2006",
}

// RecordFromRow coerces one tabular row into a ReagentRecord. Numeric cells
// default to 0 (and clamp below at 0), text cells to "", date cells to absent.
func RecordFromRow(row Row) ReagentRecord {
	return ReagentRecord{
		SaturnRef:       coerceInt(row[ColSaturnRef]),
		FisherRef:       strings.TrimSpace(row[ColFisherRef]),
		ProductName:     strings.TrimSpace(row[ColProductName]),
		Temperature:     strings.TrimSpace(row[ColTemperature]),
		UnitsPerOrder:   coerceInt(row[ColUnitsPerOrder]),
		LotNumber:       strings.TrimSpace(row[ColLotNumber]),
		Expiry:          coerceDate(row[ColExpiry]),
		DatePlaced:      coerceDate(row[ColDatePlaced]),
		DateArrived:     coerceDate(row[ColDateArrived]),
		StorageLocation: strings.TrimSpace(row[ColStorageLocation]),
		Stock:           coerceInt(row[ColStock]),
		Comment:         strings.TrimSpace(row[ColComment]),
	}
}

// RowFromRecord renders a record back into its tabular form.
func RowFromRecord(rec ReagentRecord) Row {
	return Row{
		ColSaturnRef:       strconv.Itoa(rec.SaturnRef),
		ColFisherRef:       rec.FisherRef,
		ColProductName:     rec.ProductName,
		ColTemperature:     rec.Temperature,
		ColUnitsPerOrder:   strconv.Itoa(rec.UnitsPerOrder),
		ColLotNumber:       rec.LotNumber,
		ColExpiry:          formatDate(rec.Expiry),
		ColDatePlaced:      formatDate(rec.DatePlaced),
		ColDateArrived:     formatDate(rec.DateArrived),
		ColStorageLocation: rec.StorageLocation,
		ColStock:           strconv.Itoa(rec.Stock),
		ColComment:         rec.Comment,
	}
}

func coerceInt(cell string) int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		// Workbooks occasionally store integers as "12.0".
		f, ferr := strconv.ParseFloat(cell, 64)
		if ferr != nil {
			return 0
		}
		n = int(f)
	}
	if n < 0 {
		return 0
	}
	return n
}

func coerceDate(cell string) *time.Time {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, cell, time.Local); err == nil {
			return &ts
		}
	}
	return nil
}

func formatDate(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.Format("2006-01-02 15:04:05")
}
