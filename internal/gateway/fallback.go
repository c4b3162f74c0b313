// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"strings"

	"github.com/raddesk/raddesk-tui/internal/model"
)

// =============================================================================
// LOCAL Q&A FALLBACK
// =============================================================================

// FallbackDefault is returned when no keyword matches.
const FallbackDefault = "I can help explain information from your report. " +
	"For specific medical advice, please consult your healthcare provider."

// cannedAnswers maps question keywords to stock guidance. Checked in
// order so the more specific clinical keywords win over generic ones.
var cannedAnswers = []struct {
	keyword string
	answer  string
}{
	{"pain", "Monitor any chest discomfort. Contact your doctor if pain persists."},
	{"normal", "A normal X-ray means no abnormalities were detected in your lungs or chest."},
	{"pneumonia", "Pneumonia is a lung infection. Follow your treatment plan and get adequate rest."},
	{"follow", "Follow-up visits help monitor your recovery. Please attend all scheduled appointments."},
	{"exercise", "Light activity is usually fine. Avoid strenuous exercise until cleared by your doctor."},
	{"medication", "Take all medications as prescribed. Complete the full course even if you feel better."},
}

// LocalAnswer produces a degraded offline answer for a report question.
// Used when the backend chat endpoint fails; mirrors its tone so the
// switchover is not jarring.
func LocalAnswer(question string, report *model.Report) string {
	q := strings.ToLower(question)

	if report != nil {
		switch {
		case strings.Contains(q, "finding"), strings.Contains(q, "wrong"), strings.Contains(q, "show"):
			body := report.Findings
			if body == "" {
				body = report.FullText
			}
			if body == "" {
				body = "No specific findings listed."
			}
			return "Based on the report: " + body
		case strings.Contains(q, "impression"), strings.Contains(q, "summary"), strings.Contains(q, "conclusion"):
			if report.FullText != "" {
				return "The summary of the report says: " + report.FullText
			}
			return "The summary of the report says: No impression listed."
		case strings.Contains(q, "doctor"), strings.Contains(q, "radiologist"):
			return "This report was finalized by your doctor."
		}
	}

	for _, c := range cannedAnswers {
		if strings.Contains(q, c.keyword) {
			return c.answer
		}
	}
	return FallbackDefault
}
