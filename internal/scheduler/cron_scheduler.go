package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bassista/newswatch/internal/app"
	"github.com/bassista/newswatch/internal/logger"
	"github.com/robfig/cron/v3"
)

// Runner performs one observation pass. *app.App implements it.
type Runner interface {
	Run(ctx context.Context, now time.Time) (app.Result, error)
}

// CronScheduler runs the pipeline on a cron spec, in a fixed timezone.
//
// Semantics:
//   - Runs never overlap: a tick that fires while the previous run is still
//     in flight is skipped, so two runs can never read the same stale baseline.
//   - A failed run is logged and left to the next tick; there is no retry loop.
//   - The runner can be swapped between ticks (config reload).
type CronScheduler struct {
	spec string
	loc  *time.Location
	now  func() time.Time

	mu     sync.Mutex
	runner Runner
	wg     sync.WaitGroup

	c   *cron.Cron
	job cron.Job
	ctx context.Context
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func NewCronScheduler(spec string, loc *time.Location, r Runner) (*CronScheduler, error) {
	if r == nil {
		return nil, fmt.Errorf("runner is nil")
	}
	if loc == nil {
		loc = time.Local
	}

	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	s := &CronScheduler{
		spec:   spec,
		loc:    loc,
		now:    time.Now,
		runner: r,
		ctx:    context.Background(),
	}

	cronLog := cron.PrintfLogger(logger.WithComponent("sched"))
	s.job = cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)).
		Then(cron.FuncJob(s.tick))

	s.c = cron.New(cron.WithParser(parser), cron.WithLocation(loc))
	s.c.Schedule(schedule, s.job)
	return s, nil
}

// SetRunner replaces the runner used from the next tick on.
func (s *CronScheduler) SetRunner(r Runner) {
	if r == nil {
		return
	}
	s.mu.Lock()
	s.runner = r
	s.mu.Unlock()
}

// Start begins scheduling and returns a channel that is closed once ctx is
// cancelled and any in-flight run has finished.
func (s *CronScheduler) Start(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	logger.WithComponent("sched").Infof("starting scheduler with spec %q, timezone: %s", s.spec, s.loc.String())
	s.c.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		stopped := s.c.Stop()
		<-stopped.Done()
		s.wg.Wait()
		logger.WithComponent("sched").Info("scheduler stopped")
	}()
	return done
}

// RunNow triggers a run outside the schedule. It shares the overlap guard with
// scheduled ticks, so it is skipped if a run is in flight.
func (s *CronScheduler) RunNow() {
	s.job.Run()
}

func (s *CronScheduler) tick() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.Lock()
	r, ctx := s.runner, s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	now := s.now().In(s.loc)
	logger.WithComponent("sched").Debugf("tick at %s", now.Format(time.RFC3339))
	res, err := r.Run(ctx, now)
	if err != nil {
		logger.WithComponent("sched").Errorf("run failed, will retry on next tick: %v", err)
		return
	}
	logger.WithComponent("sched").Infof("run finished: %s", res.Outcome)
}
