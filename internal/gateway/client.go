// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

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

	"github.com/raddesk/raddesk-tui/internal/model"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is where a local backend listens.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds every API request. Exceeding it is a
	// gateway failure, not a crash.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps response bodies read into memory.
	maxResponseSize = 10 * 1024 * 1024
)

// ErrUnavailable indicates the backend could not be reached at all.
var ErrUnavailable = errors.New("backend unreachable")

// GatewayError is a non-2xx response from the backend.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway error (HTTP %d)", e.Status)
}

// apiErrorResponse is the backend's error envelope.
type apiErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Client talks to one backend deployment.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a client for the backend at baseURL. An empty
// baseURL falls back to the local default.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveURL turns a backend-relative artifact path (pdf_url,
// visualization_path) into an absolute URL. Absolute inputs pass
// through unchanged.
func (c *Client) ResolveURL(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.baseURL + p
}

// =============================================================================
// ANALYSIS & REVIEW
// =============================================================================

// AnalyzeXray uploads an image for analysis. The returned thread id
// keys the subsequent Feedback call.
func (c *Client) AnalyzeXray(ctx context.Context, filename string, file io.Reader) (*AnalyzeResponse, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	var out AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/api/analyze", w.FormDataContentType(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendFeedback approves or edits a pending report.
func (c *Client) SendFeedback(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	var out FeedbackResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/feedback", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// REPORTS
// =============================================================================

// Report fetches one report by id.
func (c *Client) Report(ctx context.Context, id string) (*model.Report, error) {
	var out model.Report
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reports lists all reports.
func (c *Client) Reports(ctx context.Context) ([]model.Report, error) {
	var out []model.Report
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateReport replaces a report's text and status.
func (c *Client) UpdateReport(ctx context.Context, id string, upd ReportUpdate) (*model.Report, error) {
	var out model.Report
	if err := c.doJSON(ctx, http.MethodPut, "/api/reports/"+url.PathEscape(id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AskReport asks the backend a question about one report.
func (c *Client) AskReport(ctx context.Context, reportID, question string) (string, error) {
	var out ChatResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/chat", ChatRequest{ReportID: reportID, Question: question}, &out)
	if err != nil {
		return "", err
	}
	return out.Answer, nil
}

// =============================================================================
// PATIENTS
// =============================================================================

// Patients lists the roster.
func (c *Client) Patients(ctx context.Context) ([]model.Patient, error) {
	var out []model.Patient
	if err := c.doJSON(ctx, http.MethodGet, "/api/patients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePatient adds a roster entry.
func (c *Client) CreatePatient(ctx context.Context, p model.Patient) (*model.Patient, error) {
	var out model.Patient
	if err := c.doJSON(ctx, http.MethodPost, "/api/patients", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePatient replaces a roster entry.
func (c *Client) UpdatePatient(ctx context.Context, id string, p model.Patient) (*model.Patient, error) {
	var out model.Patient
	if err := c.doJSON(ctx, http.MethodPut, "/api/patients/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePatient removes a roster entry.
func (c *Client) DeletePatient(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/patients/"+url.PathEscape(id), nil, nil)
}

// =============================================================================
// SCANS
// =============================================================================

// Scans lists uploaded imaging studies.
func (c *Client) Scans(ctx context.Context) ([]model.Scan, error) {
	var out []model.Scan
	if err := c.doJSON(ctx, http.MethodGet, "/api/scans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadScan attaches an imaging study to a patient.
func (c *Client) UploadScan(ctx context.Context, patientID, bodyPart, filename string, file io.Reader) (*model.Scan, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := w.WriteField("patient_id", patientID); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := w.WriteField("body_part", bodyPart); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	var out model.Scan
	if err := c.do(ctx, http.MethodPost, "/api/scans", w.FormDataContentType(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// doJSON marshals body (when non-nil) and performs the request.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	return c.do(ctx, method, path, "application/json", reader, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gerr := &GatewayError{Status: resp.StatusCode}
		var envelope apiErrorResponse
		if json.Unmarshal(data, &envelope) == nil {
			if envelope.Detail != "" {
				gerr.Message = envelope.Detail
			} else {
				gerr.Message = envelope.Error
			}
		}
		return gerr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
