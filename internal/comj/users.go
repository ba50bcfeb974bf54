// internal/comj/users.go
package comj

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// GetAllUsers fetches every account, clients and admins alike.
func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.callEnvelope(ctx, "users.getAll", "GET", "/v1/Users/GetAll", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserByBI looks an account up by its identity-card number.
func (c *Client) GetUserByBI(ctx context.Context, bi string) (*User, error) {
	var user User
	path := "/v1/Users/GetByBI?BI=" + queryEscape(bi)
	if err := c.callEnvelope(ctx, "users.getByBI", "GET", path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes an account's first and last name.
func (c *Client) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*User, error) {
	var user User
	if err := c.callEnvelope(ctx, "users.update", "PUT", "/v1/Users/Update", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePhoto uploads a new profile photo as multipart form data with the
// fields Id and PhotoFile.
func (c *Client) UpdatePhoto(ctx context.Context, userID, filename string, photo io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("Id", userID); err != nil {
		return "", fmt.Errorf("comj: failed to write form field: %w", err)
	}
	part, err := writer.CreateFormFile("PhotoFile", filename)
	if err != nil {
		return "", fmt.Errorf("comj: failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return "", fmt.Errorf("comj: failed to copy photo data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("comj: failed to finalize form: %w", err)
	}

	data, status, err := c.doRequest(ctx, "users.updatePhoto", "PATCH", "/v1/Users/UpdatePhoto", &buf, writer.FormDataContentType())
	if err != nil {
		return "", err
	}

	var env envelope
	if decodeErr := json.Unmarshal(data, &env); decodeErr != nil {
		if status >= 400 {
			return "", c.rejected("users.updatePhoto", http.StatusText(status), status)
		}
		return "", fmt.Errorf("comj: failed to decode response: %w", decodeErr)
	}
	if status >= 400 || env.Code != 200 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		code := env.Code
		if status >= 400 {
			code = status
		}
		return "", c.rejected("users.updatePhoto", msg, code)
	}

	var payload struct {
		PhotoURL string `json:"photoUrl"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return "", fmt.Errorf("comj: failed to decode response data: %w", err)
		}
	}
	return payload.PhotoURL, nil
}

// ChangePassword rotates an account password.
func (c *Client) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	return c.callEnvelope(ctx, "users.changePassword", "POST", "/v1/Password/Change", input, nil)
}

// DeleteUser soft-deletes an account by ID.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	path := "/v1/Users/Delete?Id=" + queryEscape(userID)
	return c.callEnvelope(ctx, "users.delete", "DELETE", path, nil, nil)
}

// RestoreUser restores a soft-deleted account.
func (c *Client) RestoreUser(ctx context.Context, userID string) error {
	path := "/v1/Users/Restore?Id=" + queryEscape(userID)
	return c.callEnvelope(ctx, "users.restore", "PATCH", path, nil, nil)
}
