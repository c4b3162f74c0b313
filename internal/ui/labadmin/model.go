// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package labadmin

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raddesk/raddesk-tui/internal/gateway"
	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/storage"
	"github.com/raddesk/raddesk-tui/internal/ui/components"
	"github.com/raddesk/raddesk-tui/internal/ui/patients"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// bodyParts are the imaging targets the backend accepts.
var bodyParts = []string{"Chest", "Abdomen", "Skull", "Spine", "Limb"}

// uploadedMsg delivers the outcome of a scan upload.
type uploadedMsg struct {
	Scan *model.Scan
	Err  error
}

const (
	uploadPatientID = iota
	uploadFilePath
	uploadFieldCount
)

type mode int

const (
	modeRoster mode = iota
	modeUpload
)

// Model is the lab admin console.
type Model struct {
	theme *styles.Theme
	gw    *gateway.Client

	roster patients.Model
	toast  components.Toast

	mode        mode
	inputs      [uploadFieldCount]textinput.Model
	focus       int
	bodyPartIdx int
	uploading   bool
	errMsg      string

	width, height int
}

// New creates the console. cache may be nil.
func New(theme *styles.Theme, gw *gateway.Client, cache *storage.PatientCache) Model {
	m := Model{
		theme:  theme,
		gw:     gw,
		roster: patients.New(theme, gw, cache),
		toast:  components.NewToast(theme),
	}

	placeholders := [uploadFieldCount]string{"Patient ID (e.g. NSSH.1215787)", "Path to scan file"}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		m.inputs[i] = in
	}
	m.inputs[uploadPatientID].Focus()
	return m
}

// Init starts the roster load.
func (m Model) Init() tea.Cmd {
	return m.roster.Init()
}

// Reload refreshes the roster.
func (m *Model) Reload() tea.Cmd {
	return m.roster.Reload()
}

// SetSize lays out the console.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.roster.SetSize(width, height-1)
	for i := range m.inputs {
		m.inputs[i].Width = width - 24
	}
}

func (m Model) uploadCmd(patientID, bodyPart, path string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadedMsg{Err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()

		scan, err := gw.UploadScan(ctx, patientID, bodyPart, filepath.Base(path), f)
		return uploadedMsg{Scan: scan, Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case uploadedMsg:
		m.uploading = false
		if msg.Err != nil {
			m.errMsg = "Upload failed: " + msg.Err.Error()
			return m, m.toast.Error("Scan upload failed")
		}
		m.errMsg = ""
		m.resetUploadForm()
		m.mode = modeRoster
		return m, m.toast.Success("Scan uploaded")

	case tea.KeyMsg:
		if m.mode == modeUpload {
			return m.handleUploadKey(msg)
		}
		if msg.String() == "u" && !m.rosterCapturesText() {
			m.mode = modeUpload
			// A highlighted roster entry pre-fills the patient id.
			if row := m.rosterSelectionID(); row != "" {
				m.inputs[uploadPatientID].SetValue(row)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.roster, cmd = m.roster.Update(msg)
	m.toast.Update(msg)
	return m, cmd
}

// rosterCapturesText reports whether the roster is in a text-entry
// state, in which case plain keys must pass through.
func (m *Model) rosterCapturesText() bool {
	return m.roster.Capturing()
}

func (m *Model) rosterSelectionID() string {
	if p := m.roster.Selected(); p != nil {
		return p.ID
	}
	return ""
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeRoster
		m.errMsg = ""
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % uploadFieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + uploadFieldCount - 1) % uploadFieldCount)
		return m, nil
	case "left":
		m.bodyPartIdx = (m.bodyPartIdx + len(bodyParts) - 1) % len(bodyParts)
		return m, nil
	case "right":
		m.bodyPartIdx = (m.bodyPartIdx + 1) % len(bodyParts)
		return m, nil
	case "enter":
		return m.submitUpload()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submitUpload() (Model, tea.Cmd) {
	if m.uploading {
		return m, nil
	}
	patientID := strings.TrimSpace(m.inputs[uploadPatientID].Value())
	path := strings.TrimSpace(m.inputs[uploadFilePath].Value())
	if patientID == "" || path == "" {
		m.errMsg = "Please fill all fields"
		return m, nil
	}
	m.errMsg = ""
	m.uploading = true
	return m, m.uploadCmd(patientID, bodyParts[m.bodyPartIdx], path)
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[i].Focus()
}

func (m *Model) resetUploadForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.setFocus(uploadPatientID)
	m.bodyPartIdx = 0
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	if m.mode == modeUpload {
		return m.renderUpload()
	}

	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Lab Admin Portal"))
	b.WriteString("  ")
	b.WriteString(m.theme.HeaderSubtitle.Render("Manage Patient Appointments"))
	b.WriteString("\n")
	b.WriteString(m.roster.View())
	b.WriteString("\n")
	b.WriteString(m.theme.StageDetail.Render("u upload scan"))
	if m.toast.Visible() {
		b.WriteString("\n")
		b.WriteString(m.toast.View())
	}
	return b.String()
}

func (m Model) renderUpload() string {
	var rows []string
	rows = append(rows, m.theme.CardTitle.Render("Upload Scan"), "")

	labels := [uploadFieldCount]string{"Patient ID", "File"}
	for i := range m.inputs {
		field := m.inputs[i].View()
		if i == m.focus {
			field = m.theme.FormFocused.Render(field)
		} else {
			field = m.theme.FormBlurred.Render(field)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			m.theme.FormLabel.Render(labels[i]), "  ", field))
	}

	var parts []string
	for i, bp := range bodyParts {
		if i == m.bodyPartIdx {
			parts = append(parts, m.theme.FormSelected.Render("["+bp+"]"))
		} else {
			parts = append(parts, m.theme.FormBlurred.Render(" "+bp+" "))
		}
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.FormLabel.Render("Body Part"), "  ", strings.Join(parts, " ")))

	if m.uploading {
		rows = append(rows, "", m.theme.StageActive.Render("Uploading..."))
	}
	if m.errMsg != "" {
		rows = append(rows, "", m.theme.FormError.Render(m.errMsg))
	}
	rows = append(rows, "", m.theme.StageDetail.Render("enter upload · ←/→ body part · esc back"))

	card := m.theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.toast.Visible() {
		card += "\n" + m.toast.View()
	}
	return card
}
