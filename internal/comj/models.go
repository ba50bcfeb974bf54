// internal/comj/models.go
package comj

// Application statuses as returned by the API.
const (
	StatusPending  = 1
	StatusApproved = 2
	StatusRejected = 3
)

// User roles as returned by the API.
const (
	RoleAdmin  = 0
	RoleClient = 1
)

// Envelope is the standard response wrapper {code, message, data}.
// A call succeeded only when Code is 200.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// User is a registered account, admin or client.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhotoURL  string `json:"photoUrl"`
	BI        string `json:"bi"`
	Email     string `json:"email"`
	Role      int    `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the account has administrator access.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Application is a residency application ("candidatura") with its document URLs.
type Application struct {
	ID                           string   `json:"id"`
	UserID                       string   `json:"userId"`
	Status                       int      `json:"status"`
	DocumentIDCardURL            string   `json:"documentIdCardUrl"`
	DocumentSalaryDeclarationURL string   `json:"documentSalaryDeclarationUrl"`
	DocumentBankStatementURL     string   `json:"documentBankStatementUrl"`
	DocumentLastBankReceiptURL   string   `json:"documentLastBankReceiptUrl"`
	AllowRejectedEdit            bool     `json:"allowRejectedEdit"`
	CreatedAt                    string   `json:"createdAt"`
	UpdatedAt                    string   `json:"updatedAt"`
	ReviewComments               []string `json:"reviewComments"`
	LastReviewComment            *string  `json:"lastReviewComment"`
}

// ApplicationDetails is the single-application payload; it additionally
// carries the remaining review window.
type ApplicationDetails struct {
	Application
	RemainingDays int `json:"remainingDays"`
}

// DashboardOverview mirrors the overview payload. The API misspells the
// users field; the wire name is kept as-is.
type DashboardOverview struct {
	TotalUsers        int `json:"totalUUsers"`
	TotalApplications int `json:"totalApplications"`
}

// SystemHealth is the backend health snapshot. Unlike the other endpoints it
// is returned bare, without the envelope.
type SystemHealth struct {
	Status      string `json:"status"`
	Application string `json:"application"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Server      string `json:"server"`
	Timestamp   string `json:"timestamp"`
	Uptime      string `json:"uptime"`
	MemoryUsage string `json:"memoryUsage"`
	Database    string `json:"database"`
}

// CheckAuthResult is the bare payload of GET /v1/Auth/CheckAuth.
type CheckAuthResult struct {
	Authenticated bool `json:"authenticated"`
}

// RegisterAdminInput is the body of POST /v1/Auth/RegisterAdm.
type RegisterAdminInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	BI              string `json:"bi"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UpdateProfileInput is the body of PUT /v1/Users/Update. The endpoint
// expects PascalCase field names.
type UpdateProfileInput struct {
	ID        string `json:"Id"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
}

// ChangePasswordInput is the body of POST /v1/Password/Change.
type ChangePasswordInput struct {
	ID                 string `json:"id"`
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}
