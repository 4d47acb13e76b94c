package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/model"
)

// CreateHold mirrors a locally claimed hold to the backend. A 400 means the
// server already knows about a live hold for the pair, reported as CONFLICT.
func (c *Client) CreateHold(ctx context.Context, userID, sectionID string) (model.Hold, error) {
	resp, err := c.post(ctx, "/api/holds/", map[string]string{
		"user_id":    userID,
		"section_id": sectionID,
	})
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr.HTTPStatus == http.StatusBadRequest {
			return model.Hold{}, apperrors.Conflict(appErr.Message)
		}
		return model.Hold{}, err
	}

	h, err := model.DecodeHold(resp.Body)
	if err != nil {
		return model.Hold{}, apperrors.InvalidPayload("hold record", err)
	}
	return h, nil
}

// DeleteHold releases a hold server-side. The backend treats a missing hold
// as already released.
func (c *Client) DeleteHold(ctx context.Context, userID, sectionID string) error {
	_, err := c.del(ctx, "/api/holds/"+url.PathEscape(userID)+"/"+url.PathEscape(sectionID))
	return err
}

// Holds fetches the user's active holds.
func (c *Client) Holds(ctx context.Context, userID string) ([]model.Hold, error) {
	resp, err := c.get(ctx, "/api/holds/"+url.PathEscape(userID))
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := resp.DecodeJSON(&items); err != nil {
		return nil, apperrors.InvalidPayload("holds listing", err)
	}
	holds := make([]model.Hold, 0, len(items))
	for _, item := range items {
		h, err := model.DecodeHold(item)
		if err != nil {
			return nil, apperrors.InvalidPayload("hold record", err)
		}
		holds = append(holds, h)
	}
	return holds, nil
}
