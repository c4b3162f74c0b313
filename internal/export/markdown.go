// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/raddesk/raddesk-tui/internal/model"
)

// MarkdownExporter renders conversations and reports as markdown.
type MarkdownExporter struct {
	IncludeTimestamps bool
}

// NewMarkdownExporter creates a markdown exporter with timestamps on.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{IncludeTimestamps: true}
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }

func (e *MarkdownExporter) ExportConversation(conv *model.Conversation) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", conv.GetTitle())
	fmt.Fprintf(&b, "_Exported from RadDesk · %d messages_\n\n---\n\n", conv.Len())

	for _, msg := range conv.All() {
		switch msg.Role {
		case model.RoleUser:
			b.WriteString("## You")
		default:
			label := msg.SourceLabel
			if label == "" {
				label = msg.Role.DisplayName()
			}
			b.WriteString("## " + label)
		}
		if e.IncludeTimestamps {
			fmt.Fprintf(&b, " — %s", msg.Timestamp.Format("2006-01-02 15:04"))
		}
		b.WriteString("\n\n")

		if msg.Attachment != "" {
			fmt.Fprintf(&b, "> Attachment: `%s`\n\n", msg.Attachment)
		}
		if msg.Report != nil {
			b.WriteString(reportBody(msg.Report))
		} else {
			b.WriteString(msg.DisplayText())
		}
		b.WriteString("\n\n")
	}

	return []byte(b.String()), nil
}

func (e *MarkdownExporter) ExportReport(r *model.Report) ([]byte, error) {
	return []byte(reportBody(r)), nil
}

func reportBody(r *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Radiology Report — %s\n\n", r.PatientName)
	fmt.Fprintf(&b, "- **MRN:** %s\n", r.PatientID)
	fmt.Fprintf(&b, "- **Date:** %s\n", r.Date)
	fmt.Fprintf(&b, "- **Status:** %s\n\n", r.Status)

	if r.FullText != "" {
		b.WriteString(r.FullText)
		b.WriteString("\n")
	} else if r.Findings != "" {
		b.WriteString("## Findings\n\n")
		b.WriteString(r.Findings)
		b.WriteString("\n")
	}

	if r.HasComparison() {
		b.WriteString("\n## Comparison With Prior Studies\n\n")
		b.WriteString(*r.ComparisonFindings)
		b.WriteString("\n")
	}
	return b.String()
}
