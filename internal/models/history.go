package models

import "time"

// HistoricalEntry is one append-only row of the historical ledger: the full
// field snapshot of a record at the moment an edit was saved.
type HistoricalEntry struct {
	ReagentRecord
	RecordedAt time.Time `json:"recorded_at"`
}
