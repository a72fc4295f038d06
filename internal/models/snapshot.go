package models

import (
	"fmt"
	"strings"
	"time"
)

// SnapshotRef identifies one immutable snapshot artifact inside a store.
type SnapshotRef struct {
	Name      string    `json:"name"`   // {prefix}_{YYYY-MM-DD_HH-MM-SS}
	Bucket    string    `json:"bucket"` // {YYYY}_{MM}_{MonthName}
	CreatedAt time.Time `json:"created_at"`
}

// snapshotTimeLayout gives second resolution, which is enough for a
// single-writer store.
const snapshotTimeLayout = "2006-01-02_15-04-05"

// monthNames follows the store's original Spanish bucket naming.
var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// NewSnapshotRef derives the artifact name and year-month bucket for a
// snapshot created at ts.
func NewSnapshotRef(prefix string, ts time.Time) SnapshotRef {
	ts = ts.Truncate(time.Second)
	return SnapshotRef{
		Name:      fmt.Sprintf("%s_%s", prefix, ts.Format(snapshotTimeLayout)),
		Bucket:    BucketName(ts),
		CreatedAt: ts,
	}
}

// BucketName returns the year-month bucket directory name for ts.
func BucketName(ts time.Time) string {
	return fmt.Sprintf("%d_%02d_%s", ts.Year(), int(ts.Month()), monthNames[ts.Month()-1])
}

// ParseSnapshotName recovers the creation time encoded in a snapshot name.
// The second return is false when the name does not carry a valid timestamp
// suffix.
func ParseSnapshotName(name string) (time.Time, bool) {
	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return time.Time{}, false
	}
	// The timestamp spans the last two underscore-separated fields
	// (date_time), so back up one more separator.
	idx = strings.LastIndex(name[:idx], "_")
	if idx < 0 {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(snapshotTimeLayout, name[idx+1:], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
