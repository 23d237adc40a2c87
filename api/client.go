// Package api is the HTTP client for the legal analysis backend. The
// backend speaks form-encoded and multipart requests (not JSON bodies), so
// every writer here mirrors the exact field names the server reads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client talks to one backend instance. The bearer token is optional:
// unauthenticated queries work, but report persistence, history, follow-up
// chat and subscriptions require it.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a backend client. baseURL defaults to the local
// development server when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken installs the bearer credential for subsequent requests. An empty
// token reverts to anonymous access.
func (c *Client) SetToken(token string) {
	c.token = token
}

// HasToken reports whether a bearer credential is installed.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Query submits a free-text legal question. Cancellation via ctx aborts the
// wait client-side; the server may still finish processing.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	form := url.Values{"query": {query}}

	var resp QueryResponse
	if err := c.postForm(ctx, "/query", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnalyzeDocument submits a contract image or PDF for vision analysis.
func (c *Client) AnalyzeDocument(ctx context.Context, filename, contentType string, data []byte, description string) (*VisionFindings, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if description != "" {
		if err := w.WriteField("description", description); err != nil {
			return nil, fmt.Errorf("failed to write description field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-document", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var findings VisionFindings
	if err := c.do(req, &findings); err != nil {
		return nil, err
	}
	if findings.ErrorMessage != "" {
		return nil, &Error{StatusCode: http.StatusOK, Detail: findings.ErrorMessage}
	}
	return &findings, nil
}

// Followup asks a question scoped to a persisted report.
func (c *Client) Followup(ctx context.Context, reportID, query string) (*FollowupResponse, error) {
	form := url.Values{"query": {query}}

	var resp FollowupResponse
	if err := c.postForm(ctx, "/chat/report/"+url.PathEscape(reportID), form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists the caller's persisted reports, newest first.
func (c *Client) History(ctx context.Context) ([]ReportRecord, error) {
	var records []ReportRecord
	if err := c.get(ctx, "/history", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Report fetches one persisted report by id.
func (c *Client) Report(ctx context.Context, reportID string) (*ReportRecord, error) {
	var record ReportRecord
	if err := c.get(ctx, "/history/"+url.PathEscape(reportID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteReport removes a persisted report.
func (c *Client) DeleteReport(ctx context.Context, reportID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/history/"+url.PathEscape(reportID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Login exchanges credentials for a bearer token and installs it.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	var resp LoginResponse
	if err := c.postForm(ctx, "/auth/login", form, &resp); err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	return &resp, nil
}

// Me returns the current-user snapshot for the installed token.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/auth/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Subscriptions lists the caller's statute watch registrations.
func (c *Client) Subscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if err := c.get(ctx, "/subscriptions", &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Subscribe registers a statute for amendment notifications.
func (c *Client) Subscribe(ctx context.Context, lawName string) error {
	form := url.Values{"law_name": {lawName}}
	return c.postForm(ctx, "/subscriptions", form, nil)
}

// Unsubscribe removes a statute watch registration.
func (c *Client) Unsubscribe(ctx context.Context, lawName string) error {
	u := c.baseURL + "/subscriptions?law_name=" + url.QueryEscape(lawName)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Notifications lists statute amendment notices.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var notes []Notification
	if err := c.get(ctx, "/notifications", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// MarkNotificationRead acknowledges one notification.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/notifications/"+url.PathEscape(id)+"/read", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil {
			apiErr.Detail = detail
		} else {
			// Validation errors arrive as structured objects; keep
			// the raw JSON so something readable reaches the user.
			apiErr.Detail = string(payload.Detail)
		}
	}
	return apiErr
}

// IsCanceled reports whether err is a context cancellation rather than a
// transport or server failure. Cancellation is a distinguished outcome, not
// an error to surface.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
