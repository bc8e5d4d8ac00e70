package xano

import (
	"context"
	"encoding/json"
	"fmt"

	"todoctl/pkg/logger"
	"todoctl/pkg/user"
)

type authResponse struct {
	AuthToken string `json:"authToken"`
}

type meResponse struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login exchanges credentials for a bearer token, then fetches the canonical
// profile with it. A 2xx login response without a token is a hard failure.
// The profile name falls back to the email when the remote record has none.
func (c *Client) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	token, err := c.obtainToken(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, ``, err
	}

	u, err := c.me(ctx, token)
	if err != nil {
		return nil, ``, err
	}
	if u.Name == `` {
		u.Name = u.Email
	}
	return u, token, nil
}

// Register signs a new user up, then fetches the profile the same way Login
// does. The name falls back to the supplied one, then to the email.
func (c *Client) Register(ctx context.Context, name, email, password string) (*user.User, string, error) {
	token, err := c.obtainToken(ctx, "/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, ``, err
	}

	u, err := c.me(ctx, token)
	if err != nil {
		return nil, ``, err
	}
	if u.Name == `` {
		u.Name = name
	}
	if u.Name == `` {
		u.Name = u.Email
	}
	return u, token, nil
}

// Me fetches the profile of the currently stored session.
func (c *Client) Me(ctx context.Context) (*user.User, error) {
	u, err := c.me(ctx, ``)
	if err != nil {
		return nil, err
	}
	if u.Name == `` {
		u.Name = u.Email
	}
	return u, nil
}

func (c *Client) obtainToken(ctx context.Context, path string, body map[string]string) (string, error) {
	resp, err := c.auth.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		logger.Log(ctx).Errorf("xano: request to %s failed: %v", path, err)
		return ``, fmt.Errorf("xano: request to %s failed, %w", path, err)
	}
	if resp.IsError() {
		apiErr := parseError(resp.StatusCode(), resp.Body())
		logger.Log(ctx).Errorf("xano: %s rejected: %v", path, apiErr)
		return ``, apiErr
	}

	var auth authResponse
	if err := json.Unmarshal(resp.Body(), &auth); err != nil {
		logger.Log(ctx).Errorf("xano: can't parse %s response: %v", path, err)
		return ``, fmt.Errorf("xano: can't parse %s response, %w", path, err)
	}
	if auth.AuthToken == `` {
		logger.Log(ctx).Errorf("xano: %s response carries no authToken", path)
		return ``, ErrNoAuthToken
	}
	return auth.AuthToken, nil
}

// me fetches /auth/me. With a non-empty token the request uses it explicitly
// (the second round-trip of login/signup runs before the pair is stored);
// otherwise the before-request hook attaches the stored one.
func (c *Client) me(ctx context.Context, token string) (*user.User, error) {
	req := c.auth.R().SetContext(ctx)
	if token != `` {
		req.SetAuthToken(token)
	}

	resp, err := req.Get("/auth/me")
	if err != nil {
		logger.Log(ctx).Errorf("xano: profile request failed: %v", err)
		return nil, fmt.Errorf("xano: profile request failed, %w", err)
	}
	if resp.IsError() {
		apiErr := parseError(resp.StatusCode(), resp.Body())
		logger.Log(ctx).Errorf("xano: profile request rejected: %v", apiErr)
		return nil, apiErr
	}

	var me meResponse
	if err := json.Unmarshal(resp.Body(), &me); err != nil {
		logger.Log(ctx).Errorf("xano: can't parse profile response: %v", err)
		return nil, fmt.Errorf("xano: can't parse profile response, %w", err)
	}
	return &user.User{ID: me.ID, Email: me.Email, Name: me.Name}, nil
}
