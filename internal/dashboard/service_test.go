// internal/dashboard/service_test.go
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"comj-admin/internal/comj"
	"comj-admin/internal/common/config"
	"comj-admin/internal/common/database"
	"comj-admin/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

// dashboardAPI fakes the three dashboard endpoints with per-slice failures.
type dashboardAPI struct {
	mu               sync.Mutex
	failOverview     bool
	failApplications bool
	failUsers        bool
	users            []comj.User
	applications     []comj.Application
}

func newDashboardAPI() *dashboardAPI {
	return &dashboardAPI{
		users: []comj.User{
			{ID: "u1", Role: comj.RoleAdmin},
			{ID: "u2", Role: comj.RoleClient},
		},
		applications: []comj.Application{
			{ID: "a1", Status: comj.StatusPending},
			{ID: "a2", Status: comj.StatusApproved},
			{ID: "a3", Status: comj.StatusApproved},
		},
	}
}

func (d *dashboardAPI) handler() http.Handler {
	writeEnvelope := func(w http.ResponseWriter, code int, message string, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": code, "message": message, "data": data,
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()

		switch r.URL.Path {
		case "/v1/Dashboards/Overview":
			if d.failOverview {
				w.WriteHeader(http.StatusInternalServerError)
				writeEnvelope(w, 500, "Erro interno", nil)
				return
			}
			writeEnvelope(w, 200, "ok", map[string]int{
				"totalUUsers":       len(d.users),
				"totalApplications": len(d.applications),
			})
		case "/v1/Applications/GetAll":
			if d.failApplications {
				w.WriteHeader(http.StatusInternalServerError)
				writeEnvelope(w, 500, "Erro interno", nil)
				return
			}
			writeEnvelope(w, 200, "ok", d.applications)
		case "/v1/Users/GetAll":
			if d.failUsers {
				w.WriteHeader(http.StatusInternalServerError)
				writeEnvelope(w, 500, "Erro interno", nil)
				return
			}
			writeEnvelope(w, 200, "ok", d.users)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (d *dashboardAPI) setFailures(overview, applications, users bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOverview = overview
	d.failApplications = applications
	d.failUsers = users
}

func newTestService(t *testing.T, api *dashboardAPI, cache *database.RedisClient) *Service {
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	client, err := comj.NewClient(&comj.Config{BaseURL: server.URL}, logger.NewNoOpLogger())
	assert.NoError(t, err)

	return NewService(&Config{
		Interval: time.Hour,
		CacheTTL: time.Hour,
	}, client, cache, logger.NewTestLogger(t))
}

func newTestCache(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	cache, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	assert.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

// ==========================
// Refresh Tests
// ==========================

func TestService_RefreshPopulatesAllSlices(t *testing.T) {
	api := newDashboardAPI()
	svc := newTestService(t, api, nil)

	svc.Refresh(context.Background())

	overview, ok := svc.Overview()
	assert.True(t, ok)
	assert.Equal(t, 2, overview.TotalUsers)
	assert.Equal(t, 3, overview.TotalApplications)

	assert.Len(t, svc.Applications(), 3)
	assert.Len(t, svc.Users(), 2)

	stats, ok := svc.Stats()
	assert.True(t, ok)
	assert.Equal(t, 1, stats.TotalAdmins)
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 2, stats.ApprovedApplications)
	assert.False(t, svc.LastUpdate().IsZero())
}

// One slice failing leaves the other two intact; errors are tracked per slice.
func TestService_SliceFailuresAreIndependent(t *testing.T) {
	api := newDashboardAPI()
	svc := newTestService(t, api, nil)

	svc.Refresh(context.Background())
	assert.NoError(t, svc.OverviewErr())

	api.setFailures(true, false, false)
	svc.Refresh(context.Background())

	assert.Error(t, svc.OverviewErr())
	assert.NoError(t, svc.ApplicationsErr())
	assert.NoError(t, svc.UsersErr())

	// The stale overview keeps rendering.
	overview, ok := svc.Overview()
	assert.True(t, ok)
	assert.Equal(t, 2, overview.TotalUsers)
	assert.Len(t, svc.Applications(), 3)
}

func TestService_StatsRecomputedFromLatestCollections(t *testing.T) {
	api := newDashboardAPI()
	svc := newTestService(t, api, nil)

	svc.Refresh(context.Background())

	assert.Equal(t, 67, svc.ConversionRate())
	assert.Len(t, svc.ApplicationsByStatus(comj.StatusApproved), 2)
	assert.Len(t, svc.ApplicationsByStatus(comj.StatusPending), 1)
}

// ==========================
// Snapshot Cache Tests
// ==========================

func TestService_SnapshotRoundTrip(t *testing.T) {
	api := newDashboardAPI()
	cache, _ := newTestCache(t)

	svc := newTestService(t, api, cache)
	svc.Refresh(context.Background())

	// A second service against a dead API restores the cached snapshot.
	deadAPI := newDashboardAPI()
	deadAPI.setFailures(true, true, true)
	restored := newTestService(t, deadAPI, cache)

	restored.Start(context.Background())
	defer restored.Stop()

	overview, ok := restored.Overview()
	assert.True(t, ok)
	assert.Equal(t, 2, overview.TotalUsers)
	assert.Len(t, restored.Applications(), 3)
	assert.Len(t, restored.Users(), 2)

	stats, ok := restored.Stats()
	assert.True(t, ok)
	assert.Equal(t, 2, stats.ApprovedApplications)
}

func TestService_MalformedSnapshotIsDiscarded(t *testing.T) {
	api := newDashboardAPI()
	cache, mr := newTestCache(t)
	assert.NoError(t, mr.Set(snapshotCacheKey, "not-json"))

	svc := newTestService(t, api, cache)
	svc.Start(context.Background())
	defer svc.Stop()

	// The first live refresh still lands.
	assert.Eventually(t, func() bool {
		_, ok := svc.Overview()
		return ok
	}, time.Second, 10*time.Millisecond)
}

// ==========================
// Lifecycle Tests
// ==========================

func TestService_StartStopPauseResume(t *testing.T) {
	api := newDashboardAPI()
	svc := newTestService(t, api, nil)

	svc.Start(context.Background())
	assert.True(t, svc.IsRunning())

	svc.Pause()
	assert.True(t, svc.IsRunning(), "paused still counts as running")
	svc.Resume()

	svc.Stop()
	assert.False(t, svc.IsRunning())
}
