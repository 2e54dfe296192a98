package api

import (
	"context"
	"fmt"
)

// Login exchanges credentials for a token pair and the user snapshot.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var resp LoginResponse
	if err := c.post(ctx, "/users/login/", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns the same shape as Login.
func (c *Client) Register(ctx context.Context, email, firstName, password string) (*LoginResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req := registerRequest{Email: email, FirstName: firstName, Password: password}
	var resp LoginResponse
	if err := c.post(ctx, "/users/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh trades a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var resp RefreshResponse
	if err := c.post(ctx, "/auth/token/refresh/", refreshRequest{Refresh: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
