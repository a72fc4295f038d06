package jobs

import (
	"context"

	"github.com/rs/zerolog"

	"labstock/internal/models"
	"labstock/internal/services"
)

// StockAlarm is one out-of-stock record found by the sweep.
type StockAlarm struct {
	Panel       string
	ProductName string
	SaturnRef   int
	Alarm       models.AlarmState
}

// AlarmSweepService periodically walks every panel and reports records that
// are out of stock. Critical records (nothing ordered yet) are what the lab
// needs to act on; pending ones are just logged.
type AlarmSweepService struct {
	syncService services.SyncService
	log         zerolog.Logger
}

func NewAlarmSweepService(syncService services.SyncService, log zerolog.Logger) *AlarmSweepService {
	return &AlarmSweepService{syncService: syncService, log: log}
}

// Sweep collects the alarms of every panel.
func (a *AlarmSweepService) Sweep(ctx context.Context) ([]StockAlarm, error) {
	var alarms []StockAlarm
	for _, panel := range a.syncService.Panels(ctx) {
		records, err := a.syncService.AnnotatedPanel(ctx, panel)
		if err != nil {
			a.log.Warn().Err(err).Str("panel", panel).Msg("alarm sweep skipped panel")
			continue
		}
		for _, rec := range records {
			if rec.Alarm == models.AlarmNone {
				continue
			}
			alarms = append(alarms, StockAlarm{
				Panel:       panel,
				ProductName: rec.ProductName,
				SaturnRef:   rec.SaturnRef,
				Alarm:       rec.Alarm,
			})
		}
	}
	return alarms, nil
}

// Run executes one sweep and logs the findings.
func (a *AlarmSweepService) Run(ctx context.Context) error {
	alarms, err := a.Sweep(ctx)
	if err != nil {
		return err
	}
	critical := 0
	for _, alarm := range alarms {
		if alarm.Alarm == models.AlarmCritical {
			critical++
			a.log.Warn().
				Str("panel", alarm.Panel).
				Str("product", alarm.ProductName).
				Int("saturn_ref", alarm.SaturnRef).
				Msg("out of stock with no order placed")
		}
	}
	a.log.Info().Int("alarms", len(alarms)).Int("critical", critical).Msg("alarm sweep finished")
	return nil
}
