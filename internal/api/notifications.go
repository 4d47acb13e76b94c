package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/model"
)

// RegisterNotification asks the backend to alert the user when a seat opens
// in the section. The local marker must only be committed after this
// succeeds. A duplicate registration is reported as CONFLICT.
func (c *Client) RegisterNotification(ctx context.Context, userID, sectionID, email string) (model.Notification, error) {
	resp, err := c.post(ctx, "/api/notifications/", map[string]string{
		"user_id":    userID,
		"section_id": sectionID,
		"user_email": email,
	})
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr.HTTPStatus == http.StatusBadRequest {
			return model.Notification{}, apperrors.Conflict(appErr.Message)
		}
		return model.Notification{}, err
	}

	var env envelope
	if err := resp.DecodeJSON(&env); err != nil {
		return model.Notification{}, apperrors.InvalidPayload("notification response", err)
	}
	n, err := model.DecodeNotification(env.Data)
	if err != nil {
		return model.Notification{}, apperrors.InvalidPayload("notification record", err)
	}
	return n, nil
}

// UnregisterNotification removes a registration server-side.
func (c *Client) UnregisterNotification(ctx context.Context, userID, sectionID string) error {
	_, err := c.del(ctx, "/api/notifications/"+url.PathEscape(userID)+"/"+url.PathEscape(sectionID))
	return err
}

// Notifications fetches the user's confirmed registrations.
func (c *Client) Notifications(ctx context.Context, userID string) ([]model.Notification, error) {
	resp, err := c.get(ctx, "/api/notifications/"+url.PathEscape(userID))
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := resp.DecodeJSON(&env); err != nil {
		return nil, apperrors.InvalidPayload("notifications response", err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, apperrors.InvalidPayload("notifications listing", err)
	}
	out := make([]model.Notification, 0, len(items))
	for _, item := range items {
		n, err := model.DecodeNotification(item)
		if err != nil {
			return nil, apperrors.InvalidPayload("notification record", err)
		}
		out = append(out, n)
	}
	return out, nil
}
