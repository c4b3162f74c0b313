// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package xray

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raddesk/raddesk-tui/internal/gateway"
	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/pipeline"
	"github.com/raddesk/raddesk-tui/internal/ui/components"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// simulatedDelay matches the fixed inference time of the demo pipeline.
const simulatedDelay = 2500 * time.Millisecond

// =============================================================================
// ANALYSIS RESULT
// =============================================================================

// Condition is one detected pathology with its model probability.
type Condition struct {
	Name     string
	Score    float64
	Severity string
	Location string
}

// Analysis is the outcome of one X-ray inference pass.
type Analysis struct {
	Conditions     []Condition
	Summary        string
	Confidence     float64
	ProcessingTime string

	// Report is set in live mode: the backend's draft awaiting review.
	Report   *model.Report
	ThreadID string
}

// simulatedAnalysis returns the canned demo inference output.
func simulatedAnalysis() *Analysis {
	return &Analysis{
		Conditions: []Condition{
			{Name: "Pneumonia", Score: 0.873, Severity: "High", Location: "Right lower lobe"},
			{Name: "Cardiomegaly", Score: 0.452, Severity: "Moderate", Location: "Cardiac silhouette"},
			{Name: "Infiltration", Score: 0.231, Severity: "Low", Location: "Bilateral"},
			{Name: "Edema", Score: 0.089, Severity: "Minimal", Location: "Lung bases"},
		},
		Summary: "Moderate pneumonia detected in right lower lobe with cardiomegaly. " +
			"Recommend antibiotic treatment and follow-up.",
		Confidence:     0.92,
		ProcessingTime: "2.3s",
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// simulatedDoneMsg delivers the canned analysis after its delay. Seq
// makes results from a cancelled run stale.
type simulatedDoneMsg struct {
	Seq int
}

// analyzedMsg delivers the live gateway result or its error.
type analyzedMsg struct {
	Seq      int
	Analysis *Analysis
	Err      error
}

// reviewedMsg delivers the outcome of an approve action.
type reviewedMsg struct {
	PDFURL string
	Err    error
}

// ReportReviewedMsg hands an approved draft report to the app so the
// reports view can open it.
type ReportReviewedMsg struct {
	Report *model.Report
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the X-ray analysis view.
type Model struct {
	theme     *styles.Theme
	gw        *gateway.Client
	sched     pipeline.Scheduler
	simulated bool

	input   textinput.Model
	spinner components.Spinner
	toast   components.Toast

	filePath  string
	analyzing bool
	seq       int
	result    *Analysis
	errMsg    string

	width, height int
}

// New creates the X-ray view. In simulated mode gw may be nil.
func New(theme *styles.Theme, gw *gateway.Client, sched pipeline.Scheduler, simulated bool) Model {
	input := textinput.New()
	input.Placeholder = "Path to X-ray image (PNG, JPG or DICOM)…"
	input.CharLimit = 300
	input.Focus()

	return Model{
		theme:     theme,
		gw:        gw,
		sched:     sched,
		simulated: simulated,
		input:     input,
		spinner:   components.NewSpinner(),
		toast:     components.NewToast(theme),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize lays out the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 10
}

// Teardown invalidates any in-flight analysis.
func (m *Model) Teardown() {
	m.seq++
	m.analyzing = false
	m.spinner.Stop()
}

// Result exposes the last analysis.
func (m *Model) Result() *Analysis {
	return m.result
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.startAnalysis()
		case "esc":
			if m.analyzing {
				m.Teardown()
				return m, m.toast.Info("Analysis cancelled")
			}
		case "ctrl+a":
			if cmd := m.Approve(); cmd != nil {
				return m, tea.Batch(cmd, m.toast.Info("Submitting review..."))
			}
		}

	case simulatedDoneMsg:
		if msg.Seq != m.seq || !m.analyzing {
			return m, nil
		}
		m.analyzing = false
		m.spinner.Stop()
		m.result = simulatedAnalysis()
		return m, m.toast.Success("Analysis complete!")

	case analyzedMsg:
		if msg.Seq != m.seq || !m.analyzing {
			return m, nil
		}
		m.analyzing = false
		m.spinner.Stop()
		if msg.Err != nil {
			m.errMsg = analyzeErrText(msg.Err)
			return m, m.toast.Error("Analysis failed")
		}
		m.result = msg.Analysis
		return m, m.toast.Success("Analysis complete!")

	case reviewedMsg:
		if msg.Err != nil {
			return m, m.toast.Error("Failed to submit review")
		}
		if m.result == nil || m.result.Report == nil {
			return m, nil
		}
		m.result.Report.Status = model.ReportStatusApproved
		if msg.PDFURL != "" {
			m.result.Report.PDFURL = &msg.PDFURL
		}
		approved := m.result.Report
		return m, func() tea.Msg { return ReportReviewedMsg{Report: approved} }
	}

	m.toast.Update(msg)
	if cmd := m.spinner.Update(msg); cmd != nil {
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startAnalysis() (Model, tea.Cmd) {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		return m, m.toast.Error("Please upload an X-ray first")
	}
	if m.analyzing {
		return m, m.toast.Error("Analysis already in progress")
	}

	m.filePath = path
	m.result = nil
	m.errMsg = ""
	m.analyzing = true
	m.seq++
	m.input.SetValue("")

	spin := m.spinner.Start("Running CheXNet inference...")

	if m.simulated {
		return m, tea.Batch(spin, m.sched.After(simulatedDelay, simulatedDoneMsg{Seq: m.seq}))
	}
	return m, tea.Batch(spin, m.analyzeCmd(m.seq, path))
}

// analyzeCmd posts the image to the gateway off the update loop.
func (m Model) analyzeCmd(seq int, path string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return analyzedMsg{Seq: seq, Err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()

		resp, err := gw.AnalyzeXray(ctx, filepath.Base(path), f)
		if err != nil {
			return analyzedMsg{Seq: seq, Err: err}
		}
		return analyzedMsg{Seq: seq, Analysis: &Analysis{
			Report:   resp.CurrentReport,
			ThreadID: resp.ThreadID,
		}}
	}
}

// Approve submits an approval for the live draft report.
func (m *Model) Approve() tea.Cmd {
	if m.result == nil || m.result.Report == nil || m.result.ThreadID == "" {
		return nil
	}
	gw := m.gw
	threadID := m.result.ThreadID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()

		resp, err := gw.SendFeedback(ctx, gateway.FeedbackRequest{
			ThreadID: threadID,
			Action:   gateway.FeedbackApprove,
		})
		if err != nil {
			return reviewedMsg{Err: err}
		}
		return reviewedMsg{PDFURL: resp.PDFURL}
	}
}

func analyzeErrText(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Analysis failed: %v", err)
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderTitle.Render("X-ray Analysis"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.FormLabel.Render("Upload X-ray Image"))
	b.WriteString("\n")
	b.WriteString(m.theme.InputContainer.Width(m.width - 4).Render(m.input.View()))
	b.WriteString("\n")

	if m.filePath != "" {
		b.WriteString(m.theme.StageDetail.Render("  " + filepath.Base(m.filePath)))
		b.WriteString("\n")
	}

	if m.analyzing {
		b.WriteString("\n")
		b.WriteString(m.theme.StageActive.Render(m.spinner.View()))
		b.WriteString("\n")
		b.WriteString(m.theme.StageDetail.Render("  AI Agent Processing"))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.FormError.Render(m.errMsg))
		b.WriteString("\n")
	}

	if m.result != nil {
		b.WriteString("\n")
		b.WriteString(m.renderResult())
	}

	if m.toast.Visible() {
		b.WriteString("\n")
		b.WriteString(m.toast.View())
	}

	return m.theme.Container.Render(b.String())
}

func (m Model) renderResult() string {
	res := m.result

	if res.Report != nil {
		card := components.NewReportCard(m.theme, min(m.width-8, 90))
		out := card.View(res.Report)
		if res.Report.Status == model.ReportStatusReviewRequired {
			out += "\n" + m.theme.StageDetail.Render("ctrl+a approve")
		}
		return out
	}

	var b strings.Builder
	title := m.theme.CardTitle.Render("Analysis Results")
	conf := m.theme.FormValue.Render(fmt.Sprintf("%d%% Confidence", int(res.Confidence*100)))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, title, "   ", conf))
	b.WriteString("\n\n")

	for _, c := range res.Conditions {
		b.WriteString(m.renderCondition(c))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.FormLabel.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(m.theme.FormValue.Render(res.Summary))
	b.WriteString("\n\n")
	b.WriteString(m.theme.StageDetail.Render("Processed in " + res.ProcessingTime))

	return m.theme.Card.Width(min(m.width-6, 92)).Render(b.String())
}

// renderCondition draws one pathology with a probability bar.
func (m Model) renderCondition(c Condition) string {
	barWidth := 24
	filled := int(c.Score * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	var barStyle lipgloss.Style
	switch {
	case c.Score > 0.7:
		barStyle = m.theme.ToastError
	case c.Score > 0.4:
		barStyle = m.theme.StageActive
	default:
		barStyle = m.theme.StageDoneText
	}

	bar := barStyle.Render(strings.Repeat("█", filled)) +
		m.theme.StagePending.Render(strings.Repeat("░", barWidth-filled))

	return fmt.Sprintf("%-14s %s %5.1f%%  %s · %s",
		c.Name, bar, c.Score*100,
		m.theme.StageDetail.Render(c.Severity),
		m.theme.StageDetail.Render(c.Location),
	)
}
