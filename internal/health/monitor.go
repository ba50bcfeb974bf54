// internal/health/monitor.go
package health

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"comj-admin/internal/comj"
	"comj-admin/internal/common/logger"
	"comj-admin/internal/common/metrics"
	"comj-admin/internal/resource"
	"comj-admin/internal/scheduler"
)

const pollerName = "health"

// Config holds the health monitor settings.
type Config struct {
	Interval    time.Duration
	AppName     string
	AppVersion  string
	Environment string
}

// LocalHealth is the snapshot of this process, the counterpart of the
// backend's own health payload.
type LocalHealth struct {
	Status      string `json:"status"`
	Application string `json:"application"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
	Uptime      string `json:"uptime"`
	MemoryUsage string `json:"memoryUsage"`
	Goroutines  int    `json:"goroutines"`
}

// Monitor samples backend health on a fixed interval and keeps a local
// process snapshot next to it. The display never goes blank: a failed sample
// substitutes a synthetic Unhealthy backend snapshot.
type Monitor struct {
	config  *Config
	client  *comj.Client
	logger  logger.Logger
	backend *resource.Resource[comj.SystemHealth]
	task    *scheduler.Task
	started time.Time

	mu               sync.RWMutex
	local            LocalHealth
	connectionHealth float64
}

// NewMonitor creates the health poller.
func NewMonitor(config *Config, client *comj.Client, log logger.Logger) *Monitor {
	m := &Monitor{
		config:  config,
		client:  client,
		logger:  log.WithFields(map[string]interface{}{"component": "health"}),
		backend: resource.New[comj.SystemHealth](),
		started: time.Now(),
	}
	m.task = scheduler.NewTask(pollerName, config.Interval, m.refresh, log)
	return m
}

// Start launches the monitor loop; the first sample runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	m.task.Start(ctx)
}

// Stop halts the monitor loop.
func (m *Monitor) Stop() {
	m.task.Stop()
}

// Pause suspends sampling.
func (m *Monitor) Pause() {
	m.task.Pause()
}

// Resume picks sampling back up.
func (m *Monitor) Resume() {
	m.task.Resume()
}

// IsRunning reports whether the monitor loop is active.
func (m *Monitor) IsRunning() bool {
	return m.task.IsRunning()
}

// Refresh triggers one immediate sample outside the schedule.
func (m *Monitor) Refresh(ctx context.Context) {
	m.refresh(ctx)
}

func (m *Monitor) refresh(ctx context.Context) {
	metrics.PollTicksTotal.WithLabelValues(pollerName).Inc()

	m.backend.Begin()
	start := time.Now()
	snapshot, err := m.client.GetSystemHealth(ctx)
	responseTime := time.Since(start)

	if err != nil {
		metrics.PollFetchFailures.WithLabelValues(pollerName, "backend").Inc()
		m.logger.Warn("backend health sample failed", map[string]interface{}{
			"error": err.Error(),
		})
		m.setConnectionHealth(0)
		m.backend.Resolve(unhealthySnapshot())
	} else {
		m.setConnectionHealth(ConnectionScore(responseTime))
		m.backend.Resolve(*snapshot)
	}

	m.mu.Lock()
	m.local = m.localSnapshot()
	m.mu.Unlock()
}

// ConnectionScore maps a response time to a 0..100 health score: each 10ms
// costs one point.
func ConnectionScore(responseTime time.Duration) float64 {
	score := 100 - float64(responseTime.Milliseconds())/10
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Backend returns the latest backend snapshot (possibly the synthetic
// Unhealthy one) and whether any sample has completed.
func (m *Monitor) Backend() (comj.SystemHealth, bool) {
	return m.backend.Value()
}

// Local returns the latest local process snapshot.
func (m *Monitor) Local() LocalHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.local
}

// ConnectionHealth returns the current 0..100 connection score.
func (m *Monitor) ConnectionHealth() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connectionHealth
}

func (m *Monitor) setConnectionHealth(score float64) {
	m.mu.Lock()
	m.connectionHealth = score
	m.mu.Unlock()
}

func (m *Monitor) localSnapshot() LocalHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return LocalHealth{
		Status:      "Healthy",
		Application: m.config.AppName,
		Version:     m.config.AppVersion,
		Environment: m.config.Environment,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      formatUptime(time.Since(m.started)),
		MemoryUsage: fmt.Sprintf("%d MB", memStats.Alloc/1024/1024),
		Goroutines:  runtime.NumGoroutine(),
	}
}

func unhealthySnapshot() comj.SystemHealth {
	return comj.SystemHealth{
		Status:      "Unhealthy",
		Application: "COMJ API",
		Version:     "N/A",
		Environment: "Unknown",
		Server:      "N/A",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      "00:00:00",
		MemoryUsage: "0 MB",
		Database:    "Disconnected",
	}
}

func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
