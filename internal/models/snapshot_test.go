package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshotRef(t *testing.T) {
	ts := time.Date(2024, 11, 3, 18, 45, 9, 123456, time.Local)
	ref := NewSnapshotRef("inventario", ts)

	assert.Equal(t, "inventario_2024-11-03_18-45-09", ref.Name)
	assert.Equal(t, "2024_11_Noviembre", ref.Bucket)
	// Second resolution: sub-second precision is dropped.
	assert.Equal(t, ts.Truncate(time.Second), ref.CreatedAt)
}

func TestParseSnapshotName(t *testing.T) {
	created, ok := ParseSnapshotName("inventario_2024-11-03_18-45-09")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 11, 3, 18, 45, 9, 0, time.Local), created)

	// Prefixes may themselves contain underscores.
	created, ok = ParseSnapshotName("subido_historico_2024-01-02_03-04-05")
	require.True(t, ok)
	assert.Equal(t, 2024, created.Year())

	_, ok = ParseSnapshotName("notes")
	assert.False(t, ok)
	_, ok = ParseSnapshotName("inventario_backup_final")
	assert.False(t, ok)
}

func TestBucketName(t *testing.T) {
	assert.Equal(t, "2024_01_Enero", BucketName(time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "2025_12_Diciembre", BucketName(time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local)))
}
