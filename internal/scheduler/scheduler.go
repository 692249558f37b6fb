// Package scheduler runs the weekly dashboard on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"github.com/teamwaffle/wafflebot/internal/capture"
	"github.com/teamwaffle/wafflebot/internal/logging"
	"github.com/teamwaffle/wafflebot/internal/metrics"
)

// Task is a scheduled unit of work.
type Task interface {
	SendWeekly(ctx context.Context) error
}

// Scheduler fires the weekly dashboard every interval. Failures are captured
// and the loop keeps going; one bad week never stops the next one.
type Scheduler struct {
	task     Task
	sink     capture.Sink
	logger   *logging.Logger
	interval time.Duration
	stop     chan struct{}
	stopped  chan struct{}
}

// New creates a scheduler.
func New(task Task, sink capture.Sink, logger *logging.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		task:     task,
		sink:     sink,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins the loop. Call in a goroutine. The first run happens after a
// full interval, not at startup.
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.stopped)

	s.logger.InfoContext(ctx, "dashboard scheduler started",
		logging.Task("weekly_dashboard"))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.run(ctx)
		case <-s.stop:
			s.logger.InfoContext(ctx, "dashboard scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "dashboard scheduler context cancelled")
			return
		}
	}
}

// Stop signals the scheduler to stop and waits for it to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.stopped
}

func (s *Scheduler) run(ctx context.Context) {
	start := time.Now()
	err := s.task.SendWeekly(ctx)
	metrics.TaskDuration.WithLabelValues("weekly_dashboard").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.TaskFailuresTotal.WithLabelValues("weekly_dashboard").Inc()
		s.sink.Capture(ctx, err)
	}
}
