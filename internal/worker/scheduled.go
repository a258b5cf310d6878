package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job - one unit of scheduled work
type Job func(ctx context.Context) error

// ScheduledWorker runs a Job on a cron schedule. Overlapping runs are skipped.
type ScheduledWorker struct {
	*BaseWorker
	spec       string
	schedule   cron.Schedule
	job        Job
	runOnStart bool
	location   *time.Location
}

// NewScheduledWorker parses a standard five-field cron spec.
func NewScheduledWorker(
	name, spec string,
	job Job,
	runOnStart bool,
	location *time.Location,
	logger *zap.Logger,
) (*ScheduledWorker, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	if location == nil {
		location = time.Local
	}

	return &ScheduledWorker{
		BaseWorker: NewBaseWorker(name, "", logger),
		spec:       spec,
		schedule:   schedule,
		job:        job,
		runOnStart: runOnStart,
		location:   location,
	}, nil
}

func (w *ScheduledWorker) Start(ctx context.Context) error {
	logger := w.Logger()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// the run at start goes through the same chain as scheduled runs
	cl := cronLogger{logger.Sugar()}
	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).
		Then(cron.FuncJob(func() { w.run(runCtx) }))

	c := cron.New(cron.WithLocation(w.location))
	c.Schedule(w.schedule, job)

	if w.runOnStart {
		job.Run()
	}

	c.Start()
	logger.Info("Scheduled worker started",
		zap.String("schedule", w.spec),
		zap.Time("next_run", w.schedule.Next(time.Now().In(w.location))))

	select {
	case <-w.StopChan():
	case <-ctx.Done():
	}

	// a running job finishes before the worker returns
	<-c.Stop().Done()
	logger.Info("Scheduled worker stopped")
	return nil
}

// RunOnce runs the job synchronously, outside the schedule. A panic is
// returned as an error.
func (w *ScheduledWorker) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.Logger().Error("Job panicked", zap.Any("panic", r))
			err = fmt.Errorf("%s panicked: %v", w.Name(), r)
		}
	}()
	return w.job(ctx)
}

func (w *ScheduledWorker) run(ctx context.Context) {
	started := time.Now()
	if err := w.job(ctx); err != nil {
		w.Logger().Error("Scheduled job failed",
			zap.Duration("duration", time.Since(started)),
			zap.Error(err))
		return
	}
	w.Logger().Debug("Scheduled job finished", zap.Duration("duration", time.Since(started)))
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
