package models

import (
	"time"
)

// AlarmState classifies a record's stock situation for display.
type AlarmState string

const (
	AlarmNone     AlarmState = "none"     // stock available
	AlarmPending  AlarmState = "pending"  // out of stock, replacement already ordered
	AlarmCritical AlarmState = "critical" // out of stock, nothing ordered yet
)

// ReagentRecord is one consumable line item of a panel. Records sharing the
// same SaturnRef form a lot group that is ordered and consumed together.
type ReagentRecord struct {
	SaturnRef       int        `json:"saturn_ref"`
	FisherRef       string     `json:"fisher_ref"`
	ProductName     string     `json:"product_name"`
	Temperature     string     `json:"temperature"`
	UnitsPerOrder   int        `json:"units_per_order"` // units added to stock per replenishment
	LotNumber       string     `json:"lot_number"`
	Expiry          *time.Time `json:"expiry,omitempty"`
	DatePlaced      *time.Time `json:"date_placed,omitempty"`  // order requested
	DateArrived     *time.Time `json:"date_arrived,omitempty"` // order received
	StorageLocation string     `json:"storage_location"`
	Stock           int        `json:"stock"` // never negative, clamped on mutation
	Comment         string     `json:"comment,omitempty"`
}

// FieldChanges carries the editable fields of an edit-intent. A nil date or
// empty string means "clear the field"; the form always submits every field.
type FieldChanges struct {
	LotNumber       string     `json:"lot_number"`
	Expiry          *time.Time `json:"expiry"`
	DatePlaced      *time.Time `json:"date_placed"`
	DateArrived     *time.Time `json:"date_arrived"`
	StorageLocation string     `json:"storage_location"`
	Comment         string     `json:"comment"`
}

// AnnotatedRecord is the derived display view of a ReagentRecord: lot-group
// color, title flag, alarm state and the two display sort keys.
type AnnotatedRecord struct {
	ReagentRecord
	Index     int        `json:"index"` // position in the panel's stored order
	ColorTag  string     `json:"color_tag"`
	IsTitle   bool       `json:"is_title"`
	GroupSize int        `json:"group_size"`
	Alarm     AlarmState `json:"alarm"`
	MultiSort int        `json:"multi_sort"` // 0 for multi-member groups, else 1
	NotTitle  int        `json:"not_title"`  // 0 for the title row, else 1
}

// SameDate reports whether two optional date values are equal, treating nil
// as "absent".
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
