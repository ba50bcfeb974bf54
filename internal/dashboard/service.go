// internal/dashboard/service.go
package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"comj-admin/internal/comj"
	"comj-admin/internal/common/database"
	"comj-admin/internal/common/logger"
	"comj-admin/internal/common/metrics"
	"comj-admin/internal/resource"
	"comj-admin/internal/scheduler"
)

const (
	pollerName       = "dashboard"
	snapshotCacheKey = "dashboard:snapshot"
)

// Config holds the dashboard poller settings.
type Config struct {
	Interval time.Duration
	CacheTTL time.Duration
}

// Snapshot is the cached view of the last complete refresh, used to render
// stale-but-present data after a restart before the first poll lands.
type Snapshot struct {
	Overview     *comj.DashboardOverview `json:"overview,omitempty"`
	Applications []comj.Application      `json:"applications"`
	Users        []comj.User             `json:"users"`
	Stats        Stats                   `json:"stats"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// Service keeps the dashboard collections fresh. Each refresh fetches the
// overview, the applications and the users in parallel; one slice failing
// leaves the other two and the schedule untouched.
type Service struct {
	config *Config
	client *comj.Client
	cache  *database.RedisClient
	logger logger.Logger

	overview     *resource.Resource[comj.DashboardOverview]
	applications *resource.Resource[[]comj.Application]
	users        *resource.Resource[[]comj.User]

	task *scheduler.Task

	mu         sync.RWMutex
	stats      Stats
	hasStats   bool
	lastUpdate time.Time
}

// NewService creates the dashboard poller.
func NewService(config *Config, client *comj.Client, cache *database.RedisClient, log logger.Logger) *Service {
	s := &Service{
		config:       config,
		client:       client,
		cache:        cache,
		logger:       log.WithFields(map[string]interface{}{"component": "dashboard"}),
		overview:     resource.New[comj.DashboardOverview](),
		applications: resource.New[[]comj.Application](),
		users:        resource.New[[]comj.User](),
	}
	s.task = scheduler.NewTask(pollerName, config.Interval, s.refresh, log)
	return s
}

// Start loads the cached snapshot, then launches the poll loop. The first
// refresh runs immediately.
func (s *Service) Start(ctx context.Context) {
	s.loadSnapshot(ctx)
	s.task.Start(ctx)
}

// Stop halts the poll loop.
func (s *Service) Stop() {
	s.task.Stop()
}

// Pause suspends polling, for when no one is looking at the dashboard.
func (s *Service) Pause() {
	s.task.Pause()
}

// Resume picks polling back up.
func (s *Service) Resume() {
	s.task.Resume()
}

// IsRunning reports whether the poll loop is active.
func (s *Service) IsRunning() bool {
	return s.task.IsRunning()
}

// Refresh triggers one immediate refresh outside the schedule.
func (s *Service) Refresh(ctx context.Context) {
	s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) {
	metrics.PollTicksTotal.WithLabelValues(pollerName).Inc()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.fetchOverview(ctx)
	}()
	go func() {
		defer wg.Done()
		s.fetchApplications(ctx)
	}()
	go func() {
		defer wg.Done()
		s.fetchUsers(ctx)
	}()

	wg.Wait()

	s.recompute()
	s.storeSnapshot(ctx)
}

func (s *Service) fetchOverview(ctx context.Context) {
	s.overview.Begin()
	overview, err := s.client.GetDashboardOverview(ctx)
	if err != nil {
		metrics.PollFetchFailures.WithLabelValues(pollerName, "overview").Inc()
		s.logger.Warn("overview fetch failed", map[string]interface{}{"error": err.Error()})
		s.overview.Fail(err)
		return
	}
	s.overview.Resolve(*overview)
}

func (s *Service) fetchApplications(ctx context.Context) {
	s.applications.Begin()
	apps, err := s.client.GetAllApplications(ctx)
	if err != nil {
		metrics.PollFetchFailures.WithLabelValues(pollerName, "applications").Inc()
		s.logger.Warn("applications fetch failed", map[string]interface{}{"error": err.Error()})
		s.applications.Fail(err)
		return
	}
	s.applications.Resolve(apps)
}

func (s *Service) fetchUsers(ctx context.Context) {
	s.users.Begin()
	users, err := s.client.GetAllUsers(ctx)
	if err != nil {
		metrics.PollFetchFailures.WithLabelValues(pollerName, "users").Inc()
		s.logger.Warn("users fetch failed", map[string]interface{}{"error": err.Error()})
		s.users.Fail(err)
		return
	}
	s.users.Resolve(users)
}

func (s *Service) recompute() {
	users, _ := s.users.Value()
	apps, _ := s.applications.Value()

	s.mu.Lock()
	s.stats = ComputeStats(users, apps)
	s.hasStats = true
	s.lastUpdate = time.Now()
	s.mu.Unlock()
}

// Overview returns the latest aggregate counters.
func (s *Service) Overview() (comj.DashboardOverview, bool) {
	return s.overview.Value()
}

// OverviewErr returns the last overview fetch error.
func (s *Service) OverviewErr() error {
	return s.overview.Err()
}

// Applications returns the latest application collection.
func (s *Service) Applications() []comj.Application {
	apps, _ := s.applications.Value()
	return apps
}

// ApplicationsErr returns the last applications fetch error.
func (s *Service) ApplicationsErr() error {
	return s.applications.Err()
}

// Users returns the latest user collection.
func (s *Service) Users() []comj.User {
	users, _ := s.users.Value()
	return users
}

// UsersErr returns the last users fetch error.
func (s *Service) UsersErr() error {
	return s.users.Err()
}

// Stats returns the derived totals and whether any have been computed yet.
func (s *Service) Stats() (Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, s.hasStats
}

// LastUpdate returns the time of the last completed refresh.
func (s *Service) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// MonthlyApplications buckets this year's applications by month.
func (s *Service) MonthlyApplications() [12]int {
	return MonthlyApplications(s.Applications(), time.Now())
}

// UserGrowth returns the cumulative user curve for the current year.
func (s *Service) UserGrowth() [12]int {
	return UserGrowth(s.Users(), time.Now())
}

// ConversionRate returns the approved share in percent.
func (s *Service) ConversionRate() int {
	stats, _ := s.Stats()
	return ConversionRate(stats)
}

// ApplicationsByStatus filters the latest collection by status.
func (s *Service) ApplicationsByStatus(status int) []comj.Application {
	return FilterByStatus(s.Applications(), status)
}

func (s *Service) storeSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}

	overview, hasOverview := s.overview.Value()
	snapshot := Snapshot{
		Applications: s.Applications(),
		Users:        s.Users(),
	}
	if hasOverview {
		snapshot.Overview = &overview
	}
	snapshot.Stats, _ = s.Stats()
	snapshot.UpdatedAt = s.LastUpdate()

	data, err := json.Marshal(snapshot)
	if err == nil {
		err = s.cache.Set(ctx, snapshotCacheKey, data, s.config.CacheTTL)
	}
	if err != nil {
		s.logger.Warn("failed to cache dashboard snapshot", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) loadSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}

	raw, err := s.cache.Get(ctx, snapshotCacheKey)
	if err != nil {
		return
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		s.logger.Warn("discarding malformed dashboard snapshot", map[string]interface{}{"error": err.Error()})
		return
	}

	if snapshot.Overview != nil {
		s.overview.Resolve(*snapshot.Overview)
	}
	s.applications.Resolve(snapshot.Applications)
	s.users.Resolve(snapshot.Users)

	s.mu.Lock()
	s.stats = snapshot.Stats
	s.hasStats = true
	s.lastUpdate = snapshot.UpdatedAt
	s.mu.Unlock()

	s.logger.Info("restored dashboard snapshot from cache", map[string]interface{}{
		"updatedAt": snapshot.UpdatedAt,
	})
}
