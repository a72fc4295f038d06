package models

import "time"

// SnapshotDocument is the payload of a current-state store artifact: the full
// record set of every panel at save time.
type SnapshotDocument struct {
	SavedAt time.Time                  `json:"saved_at"`
	Panels  map[string][]ReagentRecord `json:"panels"`
}

// HistoryDocument is the payload of a historical-store artifact: the full
// append-only ledger of every panel at save time.
type HistoryDocument struct {
	SavedAt time.Time                    `json:"saved_at"`
	Panels  map[string][]HistoricalEntry `json:"panels"`
}
