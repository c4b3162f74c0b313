// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reports

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raddesk/raddesk-tui/internal/export"
	"github.com/raddesk/raddesk-tui/internal/gateway"
	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/ui/components"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
	"github.com/raddesk/raddesk-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

type loadedMsg struct {
	Reports []model.Report
	Err     error
}

type savedMsg struct {
	Report *model.Report
	Final  bool
	Err    error
}

// answerMsg carries one Q&A exchange. Local marks the offline
// fallback answer.
type answerMsg struct {
	Question string
	Answer   string
	Local    bool
}

// qa is one question/answer pair shown under the report.
type qa struct {
	Question string
	Answer   string
	Local    bool
}

// =============================================================================
// MODEL
// =============================================================================

type mode int

const (
	modeList mode = iota
	modeDetail
	modeEdit
	modeAsk
)

// Model is the reports view.
type Model struct {
	theme *styles.Theme
	gw    *gateway.Client

	table    table.Model
	viewport viewport.Model
	editor   textarea.Model
	question textinput.Model
	card     components.ReportCard
	toast    components.Toast
	spinner  components.Spinner

	mode    mode
	reports []model.Report
	current *model.Report
	history []qa
	loading bool
	asking  bool
	errMsg  string

	// scope limits the list to one patient; empty admits everything.
	scopeID   string
	scopeName string

	width, height int
}

// New creates the reports view.
func New(theme *styles.Theme, gw *gateway.Client) Model {
	cols := []table.Column{
		{Title: "Patient", Width: 28},
		{Title: "MRN", Width: 14},
		{Title: "Date", Width: 12},
		{Title: "Status", Width: 16},
	}
	tbl := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(12))
	st := table.DefaultStyles()
	st.Header = theme.TableHeader
	st.Selected = theme.RowSelected
	tbl.SetStyles(st)

	editor := textarea.New()
	editor.CharLimit = 0
	editor.SetWidth(80)
	editor.SetHeight(16)

	question := textinput.New()
	question.Placeholder = "Ask about this report…"
	question.CharLimit = 300

	return Model{
		theme:    theme,
		gw:       gw,
		table:    tbl,
		viewport: viewport.New(80, 20),
		editor:   editor,
		question: question,
		card:     components.NewReportCard(theme, 76),
		toast:    components.NewToast(theme),
		spinner:  components.NewSpinner(),
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the report list.
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Start("Loading reports..."), m.loadCmd())
}

// Open jumps straight to a report's detail view, used when another
// view hands over a freshly analyzed draft.
func (m *Model) Open(r *model.Report) {
	m.current = r
	m.history = nil
	m.mode = modeDetail
	m.refreshDetail()
}

// InDetail reports whether a report is open, so the app can route esc
// to "back to list" instead of leaving the view.
func (m *Model) InDetail() bool {
	return m.mode != modeList
}

// ScopeToPatient limits the list to one roster patient, used when the
// roster hands a selection over.
func (m *Model) ScopeToPatient(p model.Patient) {
	m.scopeID = p.ID
	m.scopeName = p.Name
}

// ScopeToSubject limits the list to reports whose patient matches the
// session subject, used on the patient-facing routes.
func (m *Model) ScopeToSubject(subject string) {
	m.scopeID = subject
	m.scopeName = subject
}

// ClearScope restores the full list.
func (m *Model) ClearScope() {
	m.scopeID, m.scopeName = "", ""
}

// inScope reports whether r belongs to the scoped patient.
func (m *Model) inScope(r model.Report) bool {
	if m.scopeID == "" && m.scopeName == "" {
		return true
	}
	if m.scopeID != "" && strings.EqualFold(r.PatientID, m.scopeID) {
		return true
	}
	return m.scopeName != "" && strings.EqualFold(r.PatientName, m.scopeName)
}

func (m Model) loadCmd() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()
		reports, err := gw.Reports(ctx)
		return loadedMsg{Reports: reports, Err: err}
	}
}

func (m Model) saveCmd(id, fullText string, status model.ReportStatus, final bool) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()
		upd, err := gw.UpdateReport(ctx, id, gateway.ReportUpdate{
			FullText: fullText,
			Status:   status,
		})
		return savedMsg{Report: upd, Final: final, Err: err}
	}
}

// askCmd queries the backend assistant, answering locally from the
// report text when the backend cannot be reached.
func (m Model) askCmd(report *model.Report, question string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()

		answer, err := gw.AskReport(ctx, report.ID, question)
		if err != nil {
			return answerMsg{Question: question, Answer: gateway.LocalAnswer(question, report), Local: true}
		}
		return answerMsg{Question: question, Answer: answer}
	}
}

// SetSize lays out the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	h := height - 8
	if h < 4 {
		h = 4
	}
	m.table.SetHeight(h)

	m.viewport.Width = width - 4
	m.viewport.Height = height - 9
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.editor.SetWidth(width - 6)
	m.editor.SetHeight(height - 10)
	m.question.Width = width - 14

	wrap := width - 10
	if wrap > 90 {
		wrap = 90
	}
	if wrap < 30 {
		wrap = 30
	}
	m.card = components.NewReportCard(m.theme, wrap)
	if m.mode == modeDetail || m.mode == modeAsk {
		m.refreshDetail()
	}
}

func (m *Model) selected() *model.Report {
	row := m.table.SelectedRow()
	if row == nil {
		return nil
	}
	for i := range m.reports {
		if m.reports[i].PatientID == row[1] && m.reports[i].Date == row[2] {
			return &m.reports[i]
		}
	}
	return nil
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.reports))
	for _, r := range m.reports {
		rows = append(rows, table.Row{
			util.TruncateRunes(r.PatientName, 28),
			r.PatientID,
			r.Date,
			statusLabel(r.Status),
		})
	}
	m.table.SetRows(rows)
}

func statusLabel(s model.ReportStatus) string {
	switch s {
	case model.ReportStatusReviewRequired:
		return "Pending Review"
	case model.ReportStatusApproved:
		return "Approved"
	case model.ReportStatusFinal:
		return "Final"
	}
	return string(s)
}

// refreshDetail re-renders the open report plus its Q&A history into
// the viewport.
func (m *Model) refreshDetail() {
	if m.current == nil {
		return
	}

	var b strings.Builder
	b.WriteString(m.card.View(m.current))

	for _, h := range m.history {
		b.WriteString("\n\n")
		b.WriteString(m.theme.UserBubble.Render("Q: " + h.Question))
		b.WriteString("\n")
		label := "AI Assistant"
		if h.Local {
			label = "AI Assistant (offline)"
		}
		b.WriteString(m.theme.AgentLabel.Render(label))
		b.WriteString("\n")
		b.WriteString(m.theme.AgentBubble.Width(m.viewport.Width - 4).Render(h.Answer))
	}

	m.viewport.SetContent(b.String())
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case loadedMsg:
		m.loading = false
		m.spinner.Stop()
		if msg.Err != nil {
			m.errMsg = "Failed to load reports"
			return m, m.toast.Error("Failed to load reports")
		}
		m.errMsg = ""
		m.reports = m.reports[:0]
		for _, r := range msg.Reports {
			if m.inScope(r) {
				m.reports = append(m.reports, r)
			}
		}
		m.refreshRows()
		return m, nil

	case savedMsg:
		if msg.Err != nil {
			return m, m.toast.Error("Failed to save changes")
		}
		if msg.Report != nil {
			m.applySaved(msg.Report)
		}
		m.mode = modeDetail
		m.refreshDetail()
		if msg.Final {
			return m, m.toast.Success("Report finalized")
		}
		return m, m.toast.Success("Changes saved")

	case answerMsg:
		m.asking = false
		m.spinner.Stop()
		m.history = append(m.history, qa(msg))
		m.refreshDetail()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	m.toast.Update(msg)
	if cmd := m.spinner.Update(msg); cmd != nil {
		return m, cmd
	}
	return m, nil
}

func (m *Model) applySaved(upd *model.Report) {
	m.current = upd
	for i := range m.reports {
		if m.reports[i].ID == upd.ID {
			m.reports[i] = *upd
			break
		}
	}
	m.refreshRows()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeEdit:
		return m.handleEditKey(msg)
	case modeAsk:
		return m.handleAskKey(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, m.Reload()
	case "enter":
		if r := m.selected(); r != nil {
			m.Open(r)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeList
		m.current = nil
		m.history = nil
		return m, nil
	case "e":
		m.mode = modeEdit
		m.editor.SetValue(m.current.FullText)
		return m, m.editor.Focus()
	case "f":
		if m.current.Status == model.ReportStatusFinal {
			return m, m.toast.Info("Report is already final")
		}
		return m, m.saveCmd(m.current.ID, m.current.FullText, model.ReportStatusFinal, true)
	case "?", "tab":
		m.mode = modeAsk
		return m, m.question.Focus()
	case "x":
		path, err := export.ReportToFile(m.current, export.NewMarkdownExporter(), nil)
		if err != nil {
			return m, m.toast.Error("Export failed")
		}
		return m, m.toast.Success("Exported to " + path)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeDetail
		m.editor.Blur()
		return m, nil
	case "ctrl+s":
		m.editor.Blur()
		return m, m.saveCmd(m.current.ID, m.editor.Value(), m.current.Status, false)
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleAskKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeDetail
		m.question.Blur()
		return m, nil
	case "enter":
		q := strings.TrimSpace(m.question.Value())
		if q == "" || m.asking {
			return m, nil
		}
		m.question.SetValue("")
		m.asking = true
		return m, tea.Batch(m.spinner.Start("Thinking..."), m.askCmd(m.current, q))
	}
	var cmd tea.Cmd
	m.question, cmd = m.question.Update(msg)
	return m, cmd
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	var b strings.Builder

	switch m.mode {
	case modeList:
		title := "Reports"
		if m.scopeName != "" {
			title = "Reports · " + m.scopeName
		}
		b.WriteString(m.theme.HeaderTitle.Render(title))
		b.WriteString("\n\n")
		if m.loading {
			b.WriteString(m.theme.StageActive.Render(m.spinner.View()))
		} else if m.errMsg != "" {
			b.WriteString(m.theme.FormError.Render(m.errMsg))
		} else {
			b.WriteString(m.table.View())
		}
		b.WriteString("\n")
		b.WriteString(m.theme.StageDetail.Render("enter open · r refresh"))

	case modeEdit:
		b.WriteString(m.theme.HeaderTitle.Render("Edit Report"))
		b.WriteString("\n\n")
		b.WriteString(m.editor.View())
		b.WriteString("\n")
		b.WriteString(m.theme.StageDetail.Render("ctrl+s save · esc discard"))

	default:
		b.WriteString(m.renderDetailHeader())
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		if m.mode == modeAsk {
			b.WriteString(m.theme.InputContainer.Width(m.width - 4).Render("? " + m.question.View()))
		} else if m.asking {
			b.WriteString(m.theme.StageActive.Render(m.spinner.View()))
		} else {
			b.WriteString(m.theme.StageDetail.Render("e edit · f finalize · ? ask · x export · esc back"))
		}
	}

	if m.toast.Visible() {
		b.WriteString("\n")
		b.WriteString(m.toast.View())
	}

	return m.theme.Container.Render(b.String())
}

func (m Model) renderDetailHeader() string {
	if m.current == nil {
		return m.theme.HeaderTitle.Render("Report")
	}
	title := m.theme.HeaderTitle.Render(m.current.PatientName)
	mrn := m.theme.HeaderSubtitle.Render("MRN: " + m.current.PatientID)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", mrn)
}
