package api

import (
	"context"
	"encoding/json"
	"net/url"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/model"
)

// IntelResult is the outcome of a course-intel lookup. Intel is nil on a
// miss.
type IntelResult struct {
	Status model.IntelStatus
	Intel  *model.CourseIntel
}

// RefreshRequest regenerates the advisory content for a course.
type RefreshRequest struct {
	Course       string           `json:"course"`
	Term         string           `json:"term"`
	OfficialDesc string           `json:"official_desc"`
	Snippets     []map[string]any `json:"snippets"`
}

// CourseIntel fetches cached advisory content. A stale document is still
// returned, flagged so the caller can decide whether to refresh.
func (c *Client) CourseIntel(ctx context.Context, course, term string) (IntelResult, error) {
	q := url.Values{}
	q.Set("course", course)
	q.Set("term", term)

	resp, err := c.get(ctx, "/api/course-intel?"+q.Encode())
	if err != nil {
		return IntelResult{Status: model.IntelError}, err
	}

	var out struct {
		Status string          `json:"status"`
		Stale  bool            `json:"stale"`
		Intel  json.RawMessage `json:"intel"`
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return IntelResult{Status: model.IntelError}, apperrors.InvalidPayload("course intel response", err)
	}

	switch out.Status {
	case string(model.IntelMiss):
		return IntelResult{Status: model.IntelMiss}, nil
	case string(model.IntelOK):
		var intel model.CourseIntel
		if err := json.Unmarshal(out.Intel, &intel); err != nil {
			return IntelResult{Status: model.IntelError}, apperrors.InvalidPayload("course intel document", err)
		}
		status := model.IntelOK
		if out.Stale {
			status = model.IntelStale
		}
		return IntelResult{Status: status, Intel: &intel}, nil
	default:
		return IntelResult{Status: model.IntelError},
			apperrors.InvalidPayload("course intel status '"+out.Status+"'", nil)
	}
}

// RefreshIntel regenerates advisory content server-side and returns the new
// document.
func (c *Client) RefreshIntel(ctx context.Context, req RefreshRequest) (*model.CourseIntel, error) {
	resp, err := c.post(ctx, "/api/course-intel/refresh", req)
	if err != nil {
		return nil, err
	}

	var out struct {
		OK           bool            `json:"ok"`
		Intel        json.RawMessage `json:"intel"`
		SnippetsUsed int             `json:"snippets_used"`
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, apperrors.InvalidPayload("intel refresh response", err)
	}
	if !out.OK {
		return nil, apperrors.Server(resp.StatusCode, "intel refresh was rejected")
	}

	var intel model.CourseIntel
	if err := json.Unmarshal(out.Intel, &intel); err != nil {
		return nil, apperrors.InvalidPayload("intel refresh document", err)
	}
	c.log.Info("Course intel refreshed",
		"course", req.Course,
		"term", req.Term,
		"snippets_used", out.SnippetsUsed,
	)
	return &intel, nil
}
