package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"labstock/internal/services"
)

// JobScheduler manages the service's background jobs: the periodic
// auto-snapshot of the current store and the stock alarm sweep.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	syncService services.SyncService
	alarmSweep  *AlarmSweepService
	log         zerolog.Logger
	jobs        map[string]gocron.Job
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(syncService services.SyncService, alarmSweep *AlarmSweepService, snapshotEvery, alarmEvery time.Duration, log zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		syncService: syncService,
		alarmSweep:  alarmSweep,
		log:         log,
		jobs:        make(map[string]gocron.Job),
	}
	js.registerJobs(snapshotEvery, alarmEvery)
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info().Int("jobs", len(js.jobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(snapshotEvery, alarmEvery time.Duration) {
	snapshotJob, err := js.scheduler.NewJob(
		gocron.DurationJob(snapshotEvery),
		gocron.NewTask(js.autoSnapshot, context.Background()),
		gocron.WithName("auto-snapshot"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.log.Error().Err(err).Msg("failed to create auto-snapshot job")
	} else {
		js.jobs["auto-snapshot"] = snapshotJob
	}

	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(alarmEvery),
		gocron.NewTask(js.alarmSweep.Run, context.Background()),
		gocron.WithName("alarm-sweep"),
	)
	if err != nil {
		js.log.Error().Err(err).Msg("failed to create alarm sweep job")
	} else {
		js.jobs["alarm-sweep"] = sweepJob
	}
}

// autoSnapshot writes a routine snapshot of the current store so a day's work
// survives even when nobody saved manually.
func (js *JobScheduler) autoSnapshot(ctx context.Context) error {
	ref, err := js.syncService.CreateSnapshot(ctx, services.StoreCurrent)
	if err != nil {
		js.log.Error().Err(err).Msg("auto snapshot failed")
		return err
	}
	js.log.Info().Str("snapshot", ref.Name).Str("bucket", ref.Bucket).Msg("auto snapshot written")
	return nil
}
