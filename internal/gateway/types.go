// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import "github.com/raddesk/raddesk-tui/internal/model"

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// AnalyzeResponse is returned by POST /api/analyze. A fresh analysis
// always lands in review_required; the radiologist approves or edits it
// through Feedback.
type AnalyzeResponse struct {
	Status        string        `json:"status"`
	ThreadID      string        `json:"thread_id"`
	CurrentReport *model.Report `json:"current_report"`
}

// FeedbackAction is the reviewer's verdict on a pending report.
type FeedbackAction string

const (
	FeedbackApprove FeedbackAction = "approve"
	FeedbackEdit    FeedbackAction = "edit"
)

// FeedbackRequest is the body of POST /api/feedback. NewReport is only
// set for edits.
type FeedbackRequest struct {
	ThreadID  string         `json:"thread_id"`
	Action    FeedbackAction `json:"action"`
	NewReport string         `json:"new_report,omitempty"`
}

// FeedbackResponse carries the artifacts produced by finalization.
type FeedbackResponse struct {
	PDFURL           string `json:"pdf_url,omitempty"`
	VisualizationURL string `json:"visualization_url,omitempty"`
}

// ReportUpdate is the body of PUT /api/reports/{id}.
type ReportUpdate struct {
	FullText string             `json:"full_text"`
	Status   model.ReportStatus `json:"status"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	ReportID string `json:"report_id"`
	Question string `json:"question"`
}

// ChatResponse is the answer to a report question.
type ChatResponse struct {
	Answer string `json:"answer"`
}
