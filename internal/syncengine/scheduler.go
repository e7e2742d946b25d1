package syncengine

import (
	"log/slog"
	"time"
)

// Scheduler drives the engine on fixed intervals from a single goroutine,
// so a push and a pull can never overlap and no two invocations of the same
// flow run concurrently. Stop is cooperative: the loop checks the stop
// signal between ticks, and an in-flight flow runs to completion first.
type Scheduler struct {
	engine       *Engine
	pushInterval time.Duration
	pullInterval time.Duration
	logger       *slog.Logger

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(engine *Engine, pushInterval, pullInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:       engine,
		pushInterval: pushInterval,
		pullInterval: pullInterval,
		logger:       logger,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Run executes an initial push and pull, then loops on the configured
// intervals until Stop is called. Flow errors are already absorbed into the
// audit trail by the engine; the loop itself never exits on one.
func (s *Scheduler) Run() {
	defer close(s.done)

	s.logger.Info("scheduler started",
		"push_interval", s.pushInterval,
		"pull_interval", s.pullInterval)

	s.runPush()
	s.runPull()

	pushTicker := time.NewTicker(s.pushInterval)
	defer pushTicker.Stop()
	pullTicker := time.NewTicker(s.pullInterval)
	defer pullTicker.Stop()

	for {
		select {
		case <-pushTicker.C:
			s.runPush()
		case <-pullTicker.C:
			s.runPull()
		case <-s.stop:
			s.logger.Info("scheduler stopping")
			return
		}
	}
}

// Stop signals the loop and waits for it to finish. Shutdown latency is
// bounded by one in-flight flow.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) runPush() {
	if _, err := s.engine.PushUsers(PushOptions{}); err != nil {
		s.logger.Error("scheduled push failed", "error", err)
	}
}

func (s *Scheduler) runPull() {
	if _, err := s.engine.PullLogs(PullOptions{}); err != nil {
		s.logger.Error("scheduled pull failed", "error", err)
	}
}
