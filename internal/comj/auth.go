// internal/comj/auth.go
package comj

import (
	"context"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with email and password. The email is lowercased
// before it is sent; the session cookie lands in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := loginRequest{
		Email:    strings.ToLower(email),
		Password: password,
	}

	var user User
	if err := c.callEnvelope(ctx, "auth.login", "POST", "/v1/Auth/Login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.callEnvelope(ctx, "auth.logout", "POST", "/v1/Auth/Logout", nil, nil)
}

// CheckAuth reports whether the current cookie still maps to a live session.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	var result CheckAuthResult
	if err := c.callBare(ctx, "auth.check", "GET", "/v1/Auth/CheckAuth", &result); err != nil {
		return false, err
	}
	return result.Authenticated, nil
}

// Me fetches the account behind the current session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.callEnvelope(ctx, "auth.me", "GET", "/v1/Users/Me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterAdmin creates a new administrator account.
func (c *Client) RegisterAdmin(ctx context.Context, input *RegisterAdminInput) error {
	return c.callEnvelope(ctx, "auth.registerAdmin", "POST", "/v1/Auth/RegisterAdm", input, nil)
}
