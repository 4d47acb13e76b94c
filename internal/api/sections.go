package api

import (
	"context"
	"net/url"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/model"
)

// ListSections fetches the full catalog.
func (c *Client) ListSections(ctx context.Context) ([]model.Section, error) {
	resp, err := c.get(ctx, "/api/sections/")
	if err != nil {
		return nil, err
	}

	sections, err := model.DecodeSections(resp.Body)
	if err != nil {
		return nil, apperrors.InvalidPayload("sections listing", err)
	}
	return sections, nil
}

// SectionsForCourse fetches the sections of one course. An unknown course is
// a NOT_FOUND error, not an empty list.
func (c *Client) SectionsForCourse(ctx context.Context, courseID string) ([]model.Section, error) {
	resp, err := c.get(ctx, "/api/sections/"+url.PathEscape(courseID))
	if err != nil {
		return nil, err
	}

	sections, err := model.DecodeSections(resp.Body)
	if err != nil {
		return nil, apperrors.InvalidPayload("sections listing", err)
	}
	return sections, nil
}
