// Package api wraps the course-monitoring backend's REST surface. All
// responses pass through the strict model decoders, so malformed payloads
// surface as INVALID_PAYLOAD errors instead of half-filled structs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/logger"
)

type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		log: log.Component("api"),
	}
}

// SetToken installs the bearer token attached to every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) clearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// envelope is the ApiResponse wrapper some endpoints use.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Success bool            `json:"success"`
}

func (c *Client) get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) del(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Network("request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Network("failed to read response body", err)
	}

	r := &Response{Response: resp, Body: respBody}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// The session is gone; drop the token so the caller re-authenticates.
		c.clearToken()
		c.log.Warn("Request rejected as unauthorized, token cleared",
			"method", method,
			"path", path,
		)
		return r, apperrors.New(apperrors.CodeUnauthenticated, "session expired, sign in again")
	case resp.StatusCode == http.StatusNotFound:
		return r, &apperrors.AppError{
			Code:       apperrors.CodeNotFound,
			Message:    errorMessage(respBody),
			HTTPStatus: resp.StatusCode,
		}
	case resp.StatusCode >= 400:
		return r, apperrors.Server(resp.StatusCode, errorMessage(respBody))
	}

	return r, nil
}

// errorMessage pulls the most useful message out of an error body, whatever
// shape the backend used.
func errorMessage(body []byte) string {
	var errResp struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return "request failed"
	}
	if errResp.Detail != "" {
		return errResp.Detail
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	return "request failed"
}
