package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type loginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Login starts a session, the service answers with a session cookie that the
// client keeps for every following request.
func (c *Client) Login(ctx context.Context, name, email string) error {
	if name == "" || email == "" {
		return fmt.Errorf("catalog: login requires both a name and an email")
	}
	err := c.do(ctx, report_client_login, http.MethodPost, "/auth/login", nil, loginRequest{
		Name:  name,
		Email: email,
	}, nil)
	if err != nil {
		return fmt.Errorf("catalog: login failed: %w", err)
	}
	return nil
}

// Logout ends the session. A session that already expired counts as logged out.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, report_client_logout, http.MethodPost, "/auth/logout", nil, struct{}{}, nil)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return fmt.Errorf("catalog: logout failed: %w", err)
	}
	return c.clearCookies()
}
