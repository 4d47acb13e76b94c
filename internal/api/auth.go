package api

import (
	"context"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/model"
)

type loginResponse struct {
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login exchanges a user id for a bearer token and installs the token on the
// client.
func (c *Client) Login(ctx context.Context, userID, email string) (*model.User, error) {
	resp, err := c.post(ctx, "/api/auth/login", map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var out loginResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, apperrors.InvalidPayload("login response", err)
	}
	if out.Token == "" {
		return nil, apperrors.InvalidPayload("login response carried no token", nil)
	}

	c.SetToken(out.Token)
	c.log.Info("Signed in", "user_id", out.UserID)
	return &model.User{ID: out.UserID, Email: email}, nil
}

// Logout tells the backend goodbye and drops the token either way.
func (c *Client) Logout(ctx context.Context) error {
	defer c.clearToken()
	if _, err := c.post(ctx, "/api/auth/logout", nil); err != nil {
		return err
	}
	return nil
}
