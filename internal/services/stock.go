package services

import (
	"errors"
	"fmt"

	"labstock/internal/models"
)

// ErrIndexOutOfRange is returned when an edit targets a record index that no
// longer exists in the panel.
var ErrIndexOutOfRange = errors.New("record index out of range")

// SiblingError reports a cascade target that could not be updated. Cascade
// failures are per-item and never abort the rest of the edit.
type SiblingError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ApplyResult summarizes one applied edit-intent.
type ApplyResult struct {
	Record         models.ReagentRecord `json:"record"`
	Replenished    bool                 `json:"replenished"`
	UpdatedIndexes []int                `json:"updated_indexes"` // records touched, edited one included
	SiblingErrors  []SiblingError       `json:"sibling_errors,omitempty"`
}

// StockService applies the stock-mutation rules to a panel's in-memory
// records: replenishment, field writes, cascade ordering and consumption.
type StockService interface {
	// ApplyEdit mutates records[index] with changes and, when an order date
	// is set, cascades it to the lot-group siblings chosen by selection
	// (nil selection means the whole group, edited record included).
	// Stock never decreases here.
	ApplyEdit(records []models.ReagentRecord, index int, changes models.FieldChanges, selection []int) (*ApplyResult, error)
	// Consume removes quantity units, clamping at zero. Depleting a record
	// resets its lot, dates and storage location; comment and identity
	// fields are kept.
	Consume(rec *models.ReagentRecord, quantity int) error
}

type stockService struct {
	grouping GroupingService
}

func NewStockService(grouping GroupingService) StockService {
	return &stockService{grouping: grouping}
}

func (s *stockService) ApplyEdit(records []models.ReagentRecord, index int, changes models.FieldChanges, selection []int) (*ApplyResult, error) {
	if index < 0 || index >= len(records) {
		return nil, fmt.Errorf("%w: %d (panel has %d records)", ErrIndexOutOfRange, index, len(records))
	}
	rec := &records[index]
	result := &ApplyResult{}

	// Replenishment is decided against the values stored before this edit:
	// a new arrival date or a new non-empty lot number means a fresh lot
	// physically arrived, so the ordered units enter stock.
	arrived := changes.DateArrived != nil && !models.SameDate(changes.DateArrived, rec.DateArrived)
	relotted := changes.LotNumber != "" && changes.LotNumber != rec.LotNumber
	if arrived || relotted {
		rec.Stock += rec.UnitsPerOrder
		result.Replenished = true
	}

	rec.LotNumber = changes.LotNumber
	rec.Expiry = changes.Expiry
	rec.DatePlaced = changes.DatePlaced
	rec.DateArrived = changes.DateArrived
	rec.StorageLocation = changes.StorageLocation
	rec.Comment = changes.Comment
	result.UpdatedIndexes = []int{index}

	// Ordering one item of a kit orders the whole kit unless specific
	// members were opted out.
	if changes.DatePlaced != nil {
		targets := selection
		if targets == nil {
			targets = s.grouping.GroupIndexes(records, rec.SaturnRef)
		}
		for _, i := range targets {
			if i == index {
				continue
			}
			if i < 0 || i >= len(records) {
				result.SiblingErrors = append(result.SiblingErrors, SiblingError{
					Index: i,
					Error: fmt.Sprintf("sibling index %d no longer exists", i),
				})
				continue
			}
			records[i].DatePlaced = changes.DatePlaced
			result.UpdatedIndexes = append(result.UpdatedIndexes, i)
		}
	}

	result.Record = *rec
	return result, nil
}

func (s *stockService) Consume(rec *models.ReagentRecord, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("consume quantity must be non-negative, got %d", quantity)
	}
	rec.Stock -= quantity
	if rec.Stock > 0 {
		return nil
	}
	// Depletion reset: the lot is exhausted, ready for a fresh order cycle.
	rec.Stock = 0
	rec.LotNumber = ""
	rec.Expiry = nil
	rec.DatePlaced = nil
	rec.DateArrived = nil
	rec.StorageLocation = ""
	return nil
}
