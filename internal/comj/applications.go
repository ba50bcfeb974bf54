// internal/comj/applications.go
package comj

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"comj-admin/internal/common/errors"
)

// applicationDetailsSchema guards the single-application payload before it is
// trusted by the review workflow.
const applicationDetailsSchema = `{
	"type": "object",
	"required": ["id", "userId", "status"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"status": {"type": "integer", "enum": [1, 2, 3]},
		"documentIdCardUrl": {"type": "string"},
		"documentSalaryDeclarationUrl": {"type": "string"},
		"documentBankStatementUrl": {"type": "string"},
		"documentLastBankReceiptUrl": {"type": "string"},
		"allowRejectedEdit": {"type": "boolean"},
		"remainingDays": {"type": "integer"},
		"reviewComments": {"type": "array", "items": {"type": "string"}},
		"lastReviewComment": {"type": ["string", "null"]}
	}
}`

var applicationDetailsSchemaLoader = gojsonschema.NewStringLoader(applicationDetailsSchema)

// GetAllApplications fetches every application.
func (c *Client) GetAllApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.callEnvelope(ctx, "applications.getAll", "GET", "/v1/Applications/GetAll", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// GetApplicationByID fetches a single application with review details. The
// payload is validated against a JSON schema before being accepted.
func (c *Client) GetApplicationByID(ctx context.Context, applicationID string) (*ApplicationDetails, error) {
	var raw json.RawMessage
	path := "/v1/Applications/GetById?Id=" + queryEscape(applicationID)
	if err := c.callEnvelope(ctx, "applications.getById", "GET", path, nil, &raw); err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(applicationDetailsSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("comj: failed to validate application payload: %w", err)
	}
	if !result.Valid() {
		descs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			descs = append(descs, e.String())
		}
		return nil, errors.NewValidationFailedError("application", "application payload failed schema validation: "+strings.Join(descs, "; "))
	}

	var details ApplicationDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("comj: failed to decode application details: %w", err)
	}
	return &details, nil
}

type approveRequest struct {
	ApplicationID string `json:"applicationId"`
}

// ApproveApplication marks an application as approved.
func (c *Client) ApproveApplication(ctx context.Context, applicationID string) error {
	body := approveRequest{ApplicationID: applicationID}
	return c.callEnvelope(ctx, "applications.approve", "POST", "/v1/Applications/Approve", body, nil)
}

type rejectRequest struct {
	ApplicationID string `json:"applicationId"`
	Comment       string `json:"comentario"`
}

// RejectApplication marks an application as rejected with a review comment.
func (c *Client) RejectApplication(ctx context.Context, applicationID, comment string) error {
	body := rejectRequest{ApplicationID: applicationID, Comment: comment}
	return c.callEnvelope(ctx, "applications.reject", "PATCH", "/v1/Applications/Reject", body, nil)
}

// EnableRejectedEdit lets the applicant re-edit a rejected application.
func (c *Client) EnableRejectedEdit(ctx context.Context, applicationID string) error {
	path := "/v1/Applications/EnableRejected?applicationId=" + queryEscape(applicationID)
	return c.callEnvelope(ctx, "applications.enableRejected", "PATCH", path, nil, nil)
}
