// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/raddesk/raddesk-tui/internal/pipeline"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// =============================================================================
// AGENT PIPELINE PANEL
// =============================================================================

// Stage glyphs. The active stage gets the arrow, finished stages the
// check, unreached stages the open circle.
const (
	glyphDone    = "✓"
	glyphActive  = "▸"
	glyphPending = "○"
)

// PipelinePanel renders the progress of a running agent pipeline.
type PipelinePanel struct {
	theme *styles.Theme
}

// NewPipelinePanel creates a panel bound to the theme.
func NewPipelinePanel(theme *styles.Theme) PipelinePanel {
	return PipelinePanel{theme: theme}
}

// View renders the stage list. Stages before current show as done,
// the current stage as active, the rest as pending. An empty stage
// list renders nothing.
func (p PipelinePanel) View(stages []pipeline.Stage, current int) string {
	if len(stages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(p.theme.CardTitle.Render("Agent Pipeline"))
	b.WriteString("\n")

	for i, stage := range stages {
		var line string
		switch {
		case i < current:
			line = p.theme.StageDoneText.Render(glyphDone + " " + stage.Name)
		case i == current:
			line = p.theme.StageActive.Render(glyphActive+" "+stage.Name) +
				"\n  " + p.theme.StageDetail.Render(stage.Description)
		default:
			line = p.theme.StagePending.Render(glyphPending + " " + stage.Name)
		}
		b.WriteString(line)
		if i < len(stages)-1 {
			b.WriteString("\n")
		}
	}

	return p.theme.PipelinePanel.Render(b.String())
}
