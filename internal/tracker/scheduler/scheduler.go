// Package scheduler runs the tracker's tasks cooperatively on a single
// goroutine, one task per iteration, in fixed priority order.
package scheduler

import (
	"context"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/seatrack/internal/pkg/metrics"
	"github.com/autopeer-io/seatrack/pkg/log"
)

// Task is one entry of the priority chain.
type Task struct {
	Name     string
	Interval time.Duration
	// Due decides eligibility. When nil the task is due once strictly more
	// than Interval has elapsed since it last ran.
	Due func(now, last time.Time) bool
	// Run must complete in bounded time: nothing else runs until it returns.
	Run func(ctx context.Context)
}

// Resetter carries out a full device reset.
type Resetter interface {
	ResetFull() error
}

type entry struct {
	Task
	last time.Time
}

// Scheduler evaluates its tasks in the order given to New and runs the first
// eligible one. Lower priority tasks are skipped for that iteration, so a
// task that is due on every iteration starves everything behind it.
type Scheduler struct {
	clock    clock.Clock
	resetter Resetter
	pending  func() bool
	entries  []*entry
	log      log.Logger
}

// New returns a Scheduler whose tasks are considered to have last run now.
// pending reports whether a full reset has been requested.
func New(clk clock.Clock, resetter Resetter, pending func() bool, tasks ...Task) *Scheduler {
	now := clk.Now()
	entries := make([]*entry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, &entry{Task: t, last: now})
	}
	return &Scheduler{
		clock:    clk,
		resetter: resetter,
		pending:  pending,
		entries:  entries,
		log:      log.WithName("scheduler"),
	}
}

// Tick performs one iteration and returns the name of the task that ran.
// While a reset is pending it requests the reset and evaluates nothing else.
func (s *Scheduler) Tick(ctx context.Context) (string, bool) {
	if s.pending != nil && s.pending() {
		metrics.ResetRequestsTotal.Inc()
		s.log.Info("Reset pending, resetting device")
		if err := s.resetter.ResetFull(); err != nil {
			s.log.Error(err, "Full reset failed")
		}
		return "", false
	}

	now := s.clock.Now()
	for _, e := range s.entries {
		if !e.due(now) {
			continue
		}
		e.Run(ctx)
		e.last = s.clock.Now()
		metrics.TaskRunsTotal.WithLabelValues(e.Name).Inc()
		return e.Name, true
	}
	return "", false
}

// Run ticks until ctx is done, pausing idle after iterations where no task
// ran.
func (s *Scheduler) Run(ctx context.Context, idle time.Duration) error {
	s.log.Info("Scheduler started", "tasks", s.Names())
	defer s.log.Info("Scheduler stopped")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if _, ran := s.Tick(ctx); ran || idle <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(idle):
		}
	}
}

// Names lists the tasks in priority order.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.Name)
	}
	return names
}

// LastRun returns when the named task last ran, or the creation time if it
// never has.
func (s *Scheduler) LastRun(name string) (time.Time, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e.last, true
		}
	}
	return time.Time{}, false
}

func (e *entry) due(now time.Time) bool {
	if e.Due != nil {
		return e.Due(now, e.last)
	}
	return now.Sub(e.last) > e.Interval
}
