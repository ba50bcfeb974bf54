// internal/scheduler/task.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"comj-admin/internal/common/logger"
	"comj-admin/internal/common/metrics"
)

// Task runs a function immediately and then on a fixed interval until stopped.
// Pause suspends new ticks without cancelling a run already in flight; Resume
// picks the schedule back up. Stop is idempotent and final for that Start.
type Task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
	logger   logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	paused  bool
}

// NewTask creates a periodic task. The interval is fixed at construction.
func NewTask(name string, interval time.Duration, run func(ctx context.Context), log logger.Logger) *Task {
	return &Task{
		name:     name,
		interval: interval,
		run:      run,
		logger:   log.WithFields(map[string]interface{}{"task": name}),
	}
}

// Start launches the task loop. The function runs once right away, then on
// every interval tick. Calling Start on a running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true
	t.paused = false
	done := t.done
	t.mu.Unlock()

	metrics.PollersRunning.WithLabelValues(t.name).Set(1)
	t.logger.Info("task started", map[string]interface{}{
		"intervalMs": t.interval.Milliseconds(),
	})

	go func() {
		defer close(done)

		// Runs are never cancelled mid-flight; Stop only tears down the
		// schedule and waits for the current run to finish.
		workCtx := context.WithoutCancel(runCtx)

		t.run(workCtx)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if t.isPaused() {
					continue
				}
				t.run(workCtx)
			}
		}
	}()
}

// Stop halts the task loop and waits for the goroutine to exit. An in-flight
// run finishes on its own; only the schedule is torn down. Safe to call twice.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	cancel := t.cancel
	done := t.done
	t.running = false
	t.mu.Unlock()

	cancel()
	<-done

	metrics.PollersRunning.WithLabelValues(t.name).Set(0)
	t.logger.Info("task stopped", nil)
}

// Pause suspends future ticks. The loop keeps running, it just skips work.
func (t *Task) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.paused {
		return
	}
	t.paused = true
	t.logger.Debug("task paused", nil)
}

// Resume lifts a pause.
func (t *Task) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || !t.paused {
		return
	}
	t.paused = false
	t.logger.Debug("task resumed", nil)
}

// IsRunning reports whether the task loop is active (paused still counts).
func (t *Task) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// IsPaused reports whether ticks are currently suspended.
func (t *Task) IsPaused() bool {
	return t.isPaused()
}

func (t *Task) isPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}
