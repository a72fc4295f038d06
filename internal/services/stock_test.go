package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labstock/internal/models"
)

func newStockService() StockService {
	return NewStockService(NewGroupingService(models.NewPanelCatalog(nil)))
}

func datePtr(year int, month time.Month, day int) *time.Time {
	ts := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &ts
}

func TestApplyEditReplenishmentOnArrival(t *testing.T) {
	svc := newStockService()
	// The spec'd order cycle: empty record, the order arrives and a lot is
	// logged, units enter stock once.
	records := []models.ReagentRecord{
		{SaturnRef: 100, Stock: 0, UnitsPerOrder: 5},
	}

	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{
		DateArrived: datePtr(2024, 5, 1),
		LotNumber:   "L1",
	}, nil)
	require.NoError(t, err)

	assert.True(t, result.Replenished)
	assert.Equal(t, 5, records[0].Stock)
	assert.Equal(t, "L1", records[0].LotNumber)
}

func TestApplyEditReplenishmentOnLotChangeOnly(t *testing.T) {
	svc := newStockService()
	records := []models.ReagentRecord{
		{SaturnRef: 1, Stock: 2, UnitsPerOrder: 3, LotNumber: "OLD"},
	}

	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{LotNumber: "NEW"}, nil)
	require.NoError(t, err)
	assert.True(t, result.Replenished)
	assert.Equal(t, 5, records[0].Stock)
}

func TestApplyEditNoOpSaveDoesNotReplenish(t *testing.T) {
	svc := newStockService()
	arrived := datePtr(2024, 4, 2)
	records := []models.ReagentRecord{
		{SaturnRef: 1, Stock: 2, UnitsPerOrder: 3, LotNumber: "L1", DateArrived: arrived},
	}

	// Saving the form with unchanged values must not add stock.
	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{
		LotNumber:   "L1",
		DateArrived: datePtr(2024, 4, 2),
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.Replenished)
	assert.Equal(t, 2, records[0].Stock)
}

func TestApplyEditClearingLotDoesNotReplenish(t *testing.T) {
	svc := newStockService()
	records := []models.ReagentRecord{
		{SaturnRef: 1, Stock: 2, UnitsPerOrder: 3, LotNumber: "L1"},
	}

	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{LotNumber: ""}, nil)
	require.NoError(t, err)
	assert.False(t, result.Replenished)
	assert.Equal(t, 2, records[0].Stock)
	assert.Empty(t, records[0].LotNumber)
}

func TestApplyEditClearsAbsentFields(t *testing.T) {
	svc := newStockService()
	records := []models.ReagentRecord{
		{
			SaturnRef:       1,
			Stock:           2,
			Expiry:          datePtr(2025, 1, 1),
			StorageLocation: "Nevera 2",
			Comment:         "half used",
		},
	}

	_, err := svc.ApplyEdit(records, 0, models.FieldChanges{}, nil)
	require.NoError(t, err)
	assert.Nil(t, records[0].Expiry)
	assert.Empty(t, records[0].StorageLocation)
	assert.Empty(t, records[0].Comment)
}

func TestApplyEditCascadesOrderDateToGroup(t *testing.T) {
	svc := newStockService()
	records := []models.ReagentRecord{
		{SaturnRef: 7, ProductName: "Kit A"},
		{SaturnRef: 7, ProductName: "Diluent"},
		{SaturnRef: 9, ProductName: "Unrelated"},
		{SaturnRef: 7, ProductName: "Wash buffer"},
	}
	placed := datePtr(2024, 6, 10)

	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{DatePlaced: placed}, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{0, 1, 3}, result.UpdatedIndexes)
	assert.True(t, models.SameDate(placed, records[0].DatePlaced))
	assert.True(t, models.SameDate(placed, records[1].DatePlaced))
	assert.True(t, models.SameDate(placed, records[3].DatePlaced))
	assert.Nil(t, records[2].DatePlaced)
}

func TestApplyEditPartialSelectionLeavesOthersUntouched(t *testing.T) {
	svc := newStockService()
	records := []models.ReagentRecord{
		{SaturnRef: 7, ProductName: "Kit A"},
		{SaturnRef: 7, ProductName: "Diluent"},
		{SaturnRef: 7, ProductName: "Wash buffer"},
	}
	placed := datePtr(2024, 6, 10)

	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{DatePlaced: placed}, []int{0, 2})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{0, 2}, result.UpdatedIndexes)
	assert.Nil(t, records[1].DatePlaced)
	assert.True(t, models.SameDate(placed, records[2].DatePlaced))
}

func TestApplyEditStaleSiblingIsReportedNotFatal(t *testing.T) {
	svc := newStockService()
	records := []models.ReagentRecord{
		{SaturnRef: 7, ProductName: "Kit A"},
		{SaturnRef: 7, ProductName: "Diluent"},
	}
	placed := datePtr(2024, 6, 10)

	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{DatePlaced: placed}, []int{0, 1, 5})
	require.NoError(t, err)

	require.Len(t, result.SiblingErrors, 1)
	assert.Equal(t, 5, result.SiblingErrors[0].Index)
	// The valid sibling was still updated.
	assert.True(t, models.SameDate(placed, records[1].DatePlaced))
}

func TestApplyEditNoCascadeWithoutOrderDate(t *testing.T) {
	svc := newStockService()
	records := []models.ReagentRecord{
		{SaturnRef: 7, ProductName: "Kit A"},
		{SaturnRef: 7, ProductName: "Diluent", DatePlaced: datePtr(2024, 1, 1)},
	}

	result, err := svc.ApplyEdit(records, 0, models.FieldChanges{LotNumber: "L2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, result.UpdatedIndexes)
	assert.NotNil(t, records[1].DatePlaced)
}

func TestApplyEditIndexOutOfRange(t *testing.T) {
	svc := newStockService()
	_, err := svc.ApplyEdit([]models.ReagentRecord{{SaturnRef: 1}}, 4, models.FieldChanges{}, nil)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestConsumeClampsAtZero(t *testing.T) {
	svc := newStockService()
	rec := models.ReagentRecord{SaturnRef: 1, Stock: 3}

	require.NoError(t, svc.Consume(&rec, 5))
	assert.Equal(t, 0, rec.Stock)
}

func TestConsumePartialOnlyChangesStock(t *testing.T) {
	svc := newStockService()
	rec := models.ReagentRecord{
		SaturnRef:       1,
		Stock:           3,
		LotNumber:       "L1",
		Expiry:          datePtr(2025, 1, 1),
		StorageLocation: "Nevera 2",
	}

	require.NoError(t, svc.Consume(&rec, 1))
	assert.Equal(t, 2, rec.Stock)
	assert.Equal(t, "L1", rec.LotNumber)
	assert.NotNil(t, rec.Expiry)
	assert.Equal(t, "Nevera 2", rec.StorageLocation)
}

func TestConsumeDepletionResetsLotFields(t *testing.T) {
	svc := newStockService()
	rec := models.ReagentRecord{
		SaturnRef:       100,
		FisherRef:       "F-1",
		ProductName:     "Kit A",
		Stock:           2,
		LotNumber:       "L1",
		Expiry:          datePtr(2025, 1, 1),
		DatePlaced:      datePtr(2024, 4, 1),
		DateArrived:     datePtr(2024, 4, 8),
		StorageLocation: "Nevera 2",
		Comment:         "keep away from light",
	}

	require.NoError(t, svc.Consume(&rec, 2))

	assert.Equal(t, 0, rec.Stock)
	assert.Empty(t, rec.LotNumber)
	assert.Nil(t, rec.Expiry)
	assert.Nil(t, rec.DatePlaced)
	assert.Nil(t, rec.DateArrived)
	assert.Empty(t, rec.StorageLocation)

	// Identity and the operator's comment survive the reset.
	assert.Equal(t, 100, rec.SaturnRef)
	assert.Equal(t, "F-1", rec.FisherRef)
	assert.Equal(t, "Kit A", rec.ProductName)
	assert.Equal(t, "keep away from light", rec.Comment)
}

func TestConsumeRejectsNegativeQuantity(t *testing.T) {
	svc := newStockService()
	rec := models.ReagentRecord{Stock: 3}
	assert.Error(t, svc.Consume(&rec, -1))
	assert.Equal(t, 3, rec.Stock)
}
