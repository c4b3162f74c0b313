// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/raddesk/raddesk-tui/internal/config"
	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// =============================================================================
// REPORT CARD
// =============================================================================

// ReportCard renders a structured radiology report in the log.
type ReportCard struct {
	theme    *styles.Theme
	renderer *glamour.TermRenderer
}

// NewReportCard creates a card with a markdown renderer for the report
// body. The renderer style comes from ui.glamour_style in config;
// "auto" (or empty) detects from the terminal background. Renderer
// construction can fail on exotic terminals; the card then falls back
// to plain text.
func NewReportCard(theme *styles.Theme, wrap int) ReportCard {
	if wrap <= 0 {
		wrap = 80
	}
	styleOpt := glamour.WithAutoStyle()
	if style := config.Global().UI.GlamourStyle; style != "" && style != "auto" {
		styleOpt = glamour.WithStylePath(style)
	}
	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		renderer = nil
	}
	return ReportCard{theme: theme, renderer: renderer}
}

// View renders the report card.
func (c ReportCard) View(r *model.Report) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(c.theme.CardTitle.Render("📋 Radiology Report"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s\n",
		c.theme.FormValue.Render(r.PatientName),
		c.theme.FormLabel.Render("("+r.PatientID+")")))
	if r.Date != "" {
		b.WriteString(c.theme.FormLabel.Render("Date: ") + r.Date + "\n")
	}
	b.WriteString(c.theme.FormLabel.Render("Status: ") + statusBadge(c.theme, r.Status) + "\n\n")
	b.WriteString(c.renderBody(r.FullText))

	if r.HasComparison() {
		b.WriteString("\n")
		b.WriteString(c.theme.CardTitle.Render("Comparison"))
		b.WriteString("\n")
		b.WriteString(*r.ComparisonFindings)
	}
	if r.PDFURL != nil && *r.PDFURL != "" {
		b.WriteString("\n")
		b.WriteString(c.theme.FormLabel.Render("PDF: ") + *r.PDFURL)
	}

	return c.theme.Card.Render(b.String())
}

func (c ReportCard) renderBody(text string) string {
	if c.renderer == nil {
		return text
	}
	out, err := c.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func statusBadge(theme *styles.Theme, s model.ReportStatus) string {
	switch s {
	case model.ReportStatusApproved, model.ReportStatusFinal:
		return theme.StageDoneText.Render(string(s))
	case model.ReportStatusReviewRequired:
		return theme.FormError.Render("review required")
	default:
		return string(s)
	}
}
