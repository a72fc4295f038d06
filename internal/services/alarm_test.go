package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"labstock/internal/models"
)

func TestClassifyAlarm(t *testing.T) {
	placed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  models.ReagentRecord
		want models.AlarmState
	}{
		{
			name: "stock available",
			rec:  models.ReagentRecord{Stock: 3},
			want: models.AlarmNone,
		},
		{
			name: "stock available with order placed",
			rec:  models.ReagentRecord{Stock: 1, DatePlaced: &placed},
			want: models.AlarmNone,
		},
		{
			name: "empty and nothing ordered",
			rec:  models.ReagentRecord{Stock: 0},
			want: models.AlarmCritical,
		},
		{
			name: "empty but order placed",
			rec:  models.ReagentRecord{Stock: 0, DatePlaced: &placed},
			want: models.AlarmPending,
		},
		{
			name: "zero value record",
			rec:  models.ReagentRecord{},
			want: models.AlarmCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAlarm(tt.rec))
		})
	}
}
