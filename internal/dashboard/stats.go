// internal/dashboard/stats.go
package dashboard

import (
	"math"
	"time"

	"comj-admin/internal/comj"
)

// Stats are the derived totals shown on the analytics page.
type Stats struct {
	TotalApplications    int `json:"totalApplications"`
	TotalUsers           int `json:"totalUsers"`
	TotalClients         int `json:"totalClients"`
	TotalAdmins          int `json:"totalAdmins"`
	ApprovedApplications int `json:"approvedApplications"`
	RejectedApplications int `json:"rejectedApplications"`
	PendingApplications  int `json:"pendingApplications"`
}

// ComputeStats recomputes the totals from the latest collections. Inputs may
// be empty; every counter is derived the same way.
func ComputeStats(users []comj.User, applications []comj.Application) Stats {
	stats := Stats{
		TotalApplications: len(applications),
		TotalUsers:        len(users),
	}

	for _, user := range users {
		switch user.Role {
		case comj.RoleClient:
			stats.TotalClients++
		case comj.RoleAdmin:
			stats.TotalAdmins++
		}
	}

	for _, app := range applications {
		switch app.Status {
		case comj.StatusApproved:
			stats.ApprovedApplications++
		case comj.StatusRejected:
			stats.RejectedApplications++
		case comj.StatusPending:
			stats.PendingApplications++
		}
	}

	return stats
}

// ConversionRate is the share of approved applications in percent, rounded,
// and zero when there are no applications at all.
func ConversionRate(stats Stats) int {
	if stats.TotalApplications == 0 {
		return 0
	}
	return int(math.Round(float64(stats.ApprovedApplications) / float64(stats.TotalApplications) * 100))
}

// MonthlyApplications buckets this year's applications by creation month.
func MonthlyApplications(applications []comj.Application, now time.Time) [12]int {
	var monthly [12]int
	currentYear := now.Year()

	for _, app := range applications {
		created, ok := parseDate(app.CreatedAt)
		if !ok {
			continue
		}
		if created.Year() == currentYear {
			monthly[int(created.Month())-1]++
		}
	}

	return monthly
}

// UserGrowth builds the cumulative user curve for the current year. Months
// before the first registration are backfilled with a descending ramp (never
// below one) so the chart starts from a plausible baseline.
func UserGrowth(users []comj.User, now time.Time) [12]int {
	var growth [12]int
	if len(users) == 0 {
		return growth
	}

	currentYear := now.Year()
	for _, user := range users {
		created, ok := parseDate(user.CreatedAt)
		if !ok {
			created = now
		}
		if created.Year() == currentYear {
			for m := int(created.Month()) - 1; m < 12; m++ {
				growth[m]++
			}
		}
	}

	firstMonthWithData := -1
	for i, count := range growth {
		if count > 0 {
			firstMonthWithData = i
			break
		}
	}
	if firstMonthWithData > 0 {
		firstValue := growth[firstMonthWithData]
		if firstValue == 0 {
			firstValue = 1
		}
		for i := 0; i < firstMonthWithData; i++ {
			backfilled := firstValue - (firstMonthWithData - i)
			if backfilled < 1 {
				backfilled = 1
			}
			growth[i] = backfilled
		}
	}

	return growth
}

// FilterByStatus returns the applications in exactly the given status.
func FilterByStatus(applications []comj.Application, status int) []comj.Application {
	filtered := make([]comj.Application, 0)
	for _, app := range applications {
		if app.Status == status {
			filtered = append(filtered, app)
		}
	}
	return filtered
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
