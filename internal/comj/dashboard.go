// internal/comj/dashboard.go
package comj

import "context"

// GetDashboardOverview fetches the aggregate counters. The endpoint is a POST
// with an empty body.
func (c *Client) GetDashboardOverview(ctx context.Context) (*DashboardOverview, error) {
	var overview DashboardOverview
	if err := c.callEnvelope(ctx, "dashboard.overview", "POST", "/v1/Dashboards/Overview", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// GetSystemHealth fetches the backend health snapshot, returned bare.
func (c *Client) GetSystemHealth(ctx context.Context) (*SystemHealth, error) {
	var health SystemHealth
	if err := c.callBare(ctx, "system.health", "GET", "/v1/System/Health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}
