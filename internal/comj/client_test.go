// internal/comj/client_test.go
package comj

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"comj-admin/internal/common/errors"
	"comj-admin/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{BaseURL: server.URL}, logger.NewTestLogger(t))
	assert.NoError(t, err)
	return client, server
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

// ==========================
// Client Construction Tests
// ==========================

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(&Config{}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestClient_ResolveURL(t *testing.T) {
	client, err := NewClient(&Config{BaseURL: "https://api.example.com/"}, logger.NewNoOpLogger())
	assert.NoError(t, err)

	assert.Equal(t, "", client.ResolveURL(""))
	assert.Equal(t, "https://cdn.example.com/doc.pdf", client.ResolveURL("https://cdn.example.com/doc.pdf"))
	assert.Equal(t, "https://api.example.com/uploads/doc.pdf", client.ResolveURL("/uploads/doc.pdf"))
	assert.Equal(t, "https://api.example.com/uploads/doc.pdf", client.ResolveURL("uploads/doc.pdf"))
}

// ==========================
// Envelope Handling Tests
// ==========================

func TestClient_Login_SendsLowercasedEmail(t *testing.T) {
	var received loginRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/Auth/Login", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeEnvelope(w, 200, "ok", User{ID: "u1", Email: received.Email, Role: RoleAdmin})
	}))

	user, err := client.Login(context.Background(), "Admin@Test.COM", "Secret1")
	assert.NoError(t, err)
	assert.Equal(t, "admin@test.com", received.Email)
	assert.True(t, user.IsAdmin())
}

func TestClient_EnvelopeCodeNot200IsRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 400, "Credenciais inválidas", nil)
	}))

	_, err := client.Login(context.Background(), "a@b.com", "bad")
	assert.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrCodeServerRejected, stdErr.Code)
	assert.Equal(t, "Credenciais inválidas", stdErr.Message)
	assert.False(t, stdErr.Retryable)
}

func TestClient_HTTPErrorCarriesStatusInMetadata(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeEnvelope(w, 401, "Unauthorized", nil)
	}))

	_, err := client.Login(context.Background(), "a@b.com", "bad")
	assert.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, 401, stdErr.Metadata["httpStatus"])
}

func TestClient_NetworkErrorIsNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refused connection from here on

	client, err := NewClient(&Config{BaseURL: server.URL}, logger.NewNoOpLogger())
	assert.NoError(t, err)

	_, err = client.GetAllUsers(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.IsNetworkUnreachable(err))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, errors.MsgServerUnavailable, errors.UserMessage(err))
}

// ==========================
// Bare Endpoint Tests
// ==========================

func TestClient_CheckAuth_ReadsBarePayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/Auth/CheckAuth", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"authenticated": true}`)
	}))

	authenticated, err := client.CheckAuth(context.Background())
	assert.NoError(t, err)
	assert.True(t, authenticated)
}

func TestClient_GetSystemHealth_ReadsBarePayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/System/Health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"Healthy","application":"COMJ API","uptime":"01:02:03","database":"Connected"}`)
	}))

	snapshot, err := client.GetSystemHealth(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Healthy", snapshot.Status)
	assert.Equal(t, "Connected", snapshot.Database)
}

// ==========================
// Dashboard & User Tests
// ==========================

func TestClient_GetDashboardOverview_KeepsWireFieldName(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/Dashboards/Overview", r.URL.Path)
		writeEnvelope(w, 200, "ok", map[string]int{
			"totalUUsers":       12,
			"totalApplications": 30,
		})
	}))

	overview, err := client.GetDashboardOverview(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 12, overview.TotalUsers)
	assert.Equal(t, 30, overview.TotalApplications)
}

func TestClient_GetUserByBI_EscapesQuery(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123456789LA098", r.URL.Query().Get("BI"))
		writeEnvelope(w, 200, "ok", User{ID: "u1", BI: "123456789LA098"})
	}))

	user, err := client.GetUserByBI(context.Background(), "123456789LA098")
	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestClient_UpdateProfile_SendsPascalCaseFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["Id"])
		assert.Equal(t, "João", body["FirstName"])
		assert.Equal(t, "Silva", body["LastName"])

		writeEnvelope(w, 200, "ok", User{ID: "u1", FirstName: "João", LastName: "Silva"})
	}))

	user, err := client.UpdateProfile(context.Background(), &UpdateProfileInput{
		ID: "u1", FirstName: "João", LastName: "Silva",
	})
	assert.NoError(t, err)
	assert.Equal(t, "João", user.FirstName)
}

func TestClient_UpdatePhoto_SendsMultipartForm(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "u1", r.FormValue("Id"))

		file, header, err := r.FormFile("PhotoFile")
		assert.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "avatar.png", header.Filename)

		writeEnvelope(w, 200, "ok", map[string]string{"photoUrl": "/uploads/avatar.png"})
	}))

	photoURL, err := client.UpdatePhoto(context.Background(), "u1", "avatar.png", strings.NewReader("png-bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/avatar.png", photoURL)
}

// ==========================
// Application Tests
// ==========================

func TestClient_GetApplicationByID_AcceptsValidPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "app-1", r.URL.Query().Get("Id"))
		writeEnvelope(w, 200, "ok", map[string]interface{}{
			"id":                "app-1",
			"userId":            "u1",
			"status":            1,
			"documentIdCardUrl": "/docs/id.pdf",
			"remainingDays":     12,
			"lastReviewComment": nil,
		})
	}))

	details, err := client.GetApplicationByID(context.Background(), "app-1")
	assert.NoError(t, err)
	assert.Equal(t, "app-1", details.ID)
	assert.Equal(t, StatusPending, details.Status)
	assert.Equal(t, 12, details.RemainingDays)
	assert.Nil(t, details.LastReviewComment)
}

func TestClient_GetApplicationByID_RejectsInvalidPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{
			name:    "missing required fields",
			payload: map[string]interface{}{"id": "app-1"},
		},
		{
			name: "status outside enum",
			payload: map[string]interface{}{
				"id": "app-1", "userId": "u1", "status": 9,
			},
		},
		{
			name: "wrong type for userId",
			payload: map[string]interface{}{
				"id": "app-1", "userId": 42, "status": 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, 200, "ok", tt.payload)
			}))

			_, err := client.GetApplicationByID(context.Background(), "app-1")
			assert.Error(t, err)

			stdErr, ok := err.(*errors.StandardError)
			assert.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
		})
	}
}

func TestClient_RejectApplication_SendsComentarioField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/v1/Applications/Reject", r.URL.Path)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "app-1", body["applicationId"])
		assert.Equal(t, "Documentos ilegíveis", body["comentario"])

		writeEnvelope(w, 200, "ok", nil)
	}))

	err := client.RejectApplication(context.Background(), "app-1", "Documentos ilegíveis")
	assert.NoError(t, err)
}

func TestClient_EnableRejectedEdit_UsesQueryParam(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/v1/Applications/EnableRejected", r.URL.Path)
		assert.Equal(t, "app-1", r.URL.Query().Get("applicationId"))
		writeEnvelope(w, 200, "ok", nil)
	}))

	assert.NoError(t, client.EnableRejectedEdit(context.Background(), "app-1"))
}
