// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patients

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raddesk/raddesk-tui/internal/gateway"
	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/storage"
	"github.com/raddesk/raddesk-tui/internal/ui/components"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
	"github.com/raddesk/raddesk-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// PatientSelectedMsg is emitted when the user opens a roster entry.
type PatientSelectedMsg struct {
	Patient model.Patient
}

type loadedMsg struct {
	Patients  []model.Patient
	FromCache bool
	CachedAt  time.Time
	Err       error
}

type savedMsg struct {
	Patient model.Patient
	Created bool
	Err     error
}

type deletedMsg struct {
	ID  string
	Err error
}

// =============================================================================
// FORM
// =============================================================================

const (
	fieldName = iota
	fieldAge
	fieldDiagnosis
	fieldStatus
	fieldAssignedTo
	fieldLastVisit
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name", "Age", "Diagnosis", "Status", "Assigned To", "Last Visit",
}

// patientStatuses are the roster states the backend recognizes.
var patientStatuses = []string{"Active", "Treatment", "Monitoring", "Discharged"}

type form struct {
	inputs [fieldCount]textinput.Model
	focus  int
	id     string // empty when adding
	errMsg string
}

func newForm(p *model.Patient) form {
	var f form
	for i := range f.inputs {
		in := textinput.New()
		in.CharLimit = 120
		in.Placeholder = fieldLabels[i]
		f.inputs[i] = in
	}
	f.inputs[fieldStatus].SetValue("Active")
	if p != nil {
		f.id = p.ID
		f.inputs[fieldName].SetValue(p.Name)
		f.inputs[fieldAge].SetValue(strconv.Itoa(p.Age))
		f.inputs[fieldDiagnosis].SetValue(p.Diagnosis)
		f.inputs[fieldStatus].SetValue(p.Status)
		f.inputs[fieldAssignedTo].SetValue(p.AssignedTo)
		f.inputs[fieldLastVisit].SetValue(p.LastVisit)
	}
	f.inputs[fieldName].Focus()
	return f
}

func (f *form) patient() (model.Patient, bool) {
	name := strings.TrimSpace(f.inputs[fieldName].Value())
	ageStr := strings.TrimSpace(f.inputs[fieldAge].Value())
	if name == "" || ageStr == "" {
		f.errMsg = "Please fill name and age"
		return model.Patient{}, false
	}
	age, err := strconv.Atoi(ageStr)
	if err != nil || age <= 0 {
		f.errMsg = "Age must be a positive number"
		return model.Patient{}, false
	}
	return model.Patient{
		ID:         f.id,
		Name:       name,
		Age:        age,
		Diagnosis:  strings.TrimSpace(f.inputs[fieldDiagnosis].Value()),
		Status:     strings.TrimSpace(f.inputs[fieldStatus].Value()),
		AssignedTo: strings.TrimSpace(f.inputs[fieldAssignedTo].Value()),
		LastVisit:  strings.TrimSpace(f.inputs[fieldLastVisit].Value()),
	}, true
}

// =============================================================================
// MODEL
// =============================================================================

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeConfirmDelete
)

// Model is the patient roster view.
type Model struct {
	theme *styles.Theme
	gw    *gateway.Client
	cache *storage.PatientCache

	table   table.Model
	search  textinput.Model
	toast   components.Toast
	spinner components.Spinner

	mode      mode
	form      form
	patients  []model.Patient
	fromCache bool
	cachedAt  time.Time
	loading   bool
	searching bool
	errMsg    string

	width, height int
}

// New creates the roster view. cache may be nil to disable the
// offline fallback.
func New(theme *styles.Theme, gw *gateway.Client, cache *storage.PatientCache) Model {
	cols := []table.Column{
		{Title: "ID", Width: 12},
		{Title: "Name", Width: 28},
		{Title: "Age", Width: 4},
		{Title: "Diagnosis", Width: 24},
		{Title: "Status", Width: 11},
		{Title: "Assigned To", Width: 18},
		{Title: "Last Visit", Width: 12},
	}
	tbl := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(12))

	st := table.DefaultStyles()
	st.Header = theme.TableHeader
	st.Selected = theme.RowSelected
	tbl.SetStyles(st)

	search := textinput.New()
	search.Placeholder = "Search by name, ID or diagnosis…"
	search.CharLimit = 80

	return Model{
		theme:   theme,
		gw:      gw,
		cache:   cache,
		table:   tbl,
		search:  search,
		toast:   components.NewToast(theme),
		spinner: components.NewSpinner(),
	}
}

// Init starts the first roster load.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the roster, falling back to the cache when the
// gateway is unreachable.
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Start("Loading patients..."), m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	gw := m.gw
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()

		patients, err := gw.Patients(ctx)
		if err == nil {
			if cache != nil {
				// Best-effort refresh; a cache write failure must not
				// hide a successful fetch.
				_ = cache.ReplaceAll(ctx, patients)
			}
			return loadedMsg{Patients: patients}
		}

		if cache != nil {
			cached, cerr := cache.All(ctx)
			if cerr == nil {
				at, _ := cache.RefreshedAt(ctx)
				return loadedMsg{Patients: cached, FromCache: true, CachedAt: at, Err: err}
			}
		}
		return loadedMsg{Err: err}
	}
}

func (m Model) saveCmd(p model.Patient) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()

		if p.ID == "" {
			created, err := gw.CreatePatient(ctx, p)
			if err != nil {
				return savedMsg{Err: err}
			}
			return savedMsg{Patient: *created, Created: true}
		}
		updated, err := gw.UpdatePatient(ctx, p.ID, p)
		if err != nil {
			return savedMsg{Err: err}
		}
		return savedMsg{Patient: *updated}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
		defer cancel()
		return deletedMsg{ID: id, Err: gw.DeletePatient(ctx, id)}
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
	m.search.Width = width - 12
}

// Capturing reports whether the view is consuming plain text keys
// (search or the edit form), so wrapping views know not to bind them.
func (m *Model) Capturing() bool {
	return m.searching || m.mode != modeBrowse
}

// Selected returns the patient behind the highlighted row, or nil.
func (m *Model) Selected() *model.Patient {
	return m.selected()
}

// selected returns the patient behind the highlighted table row.
func (m *Model) selected() *model.Patient {
	row := m.table.SelectedRow()
	if row == nil {
		return nil
	}
	for i := range m.patients {
		if m.patients[i].ID == row[0] {
			return &m.patients[i]
		}
	}
	return nil
}

// filtered applies the search term the way the roster page does:
// case-insensitive match on name, id, or diagnosis.
func (m *Model) filtered() []model.Patient {
	term := strings.ToLower(strings.TrimSpace(m.search.Value()))
	if term == "" {
		return m.patients
	}
	out := make([]model.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.ID), term) ||
			strings.Contains(strings.ToLower(p.Diagnosis), term) {
			out = append(out, p)
		}
	}
	return out
}

func (m *Model) refreshRows() {
	visible := m.filtered()
	rows := make([]table.Row, 0, len(visible))
	for _, p := range visible {
		rows = append(rows, table.Row{
			p.ID,
			util.TruncateRunes(p.Name, 28),
			strconv.Itoa(p.Age),
			util.TruncateRunes(p.Diagnosis, 24),
			p.Status,
			util.TruncateRunes(p.AssignedTo, 18),
			p.LastVisit,
		})
	}
	m.table.SetRows(rows)
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
		m.fromCache = msg.FromCache
		m.cachedAt = msg.CachedAt
		if msg.Err != nil && msg.Patients == nil {
			m.errMsg = "Failed to load patients"
			return m, m.toast.Error("Failed to load patients")
		}
		m.errMsg = ""
		m.patients = msg.Patients
		m.refreshRows()
		if msg.FromCache {
			return m, m.toast.Info("Offline - showing cached roster")
		}
		return m, nil

	case savedMsg:
		if msg.Err != nil {
			return m, m.toast.Error("Failed to save patient")
		}
		m.mode = modeBrowse
		m.applySaved(msg)
		note := "Patient updated"
		if msg.Created {
			note = "Patient added"
		}
		return m, m.toast.Success(note)

	case deletedMsg:
		if msg.Err != nil {
			return m, m.toast.Error("Failed to delete patient")
		}
		for i := range m.patients {
			if m.patients[i].ID == msg.ID {
				m.patients = append(m.patients[:i], m.patients[i+1:]...)
				break
			}
		}
		m.refreshRows()
		return m, m.toast.Success("Patient deleted")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	m.toast.Update(msg)
	if cmd := m.spinner.Update(msg); cmd != nil {
		return m, cmd
	}
	return m, nil
}

func (m *Model) applySaved(msg savedMsg) {
	if msg.Created {
		m.patients = append(m.patients, msg.Patient)
	} else {
		for i := range m.patients {
			if m.patients[i].ID == msg.Patient.ID {
				m.patients[i] = msg.Patient
				break
			}
		}
	}
	m.refreshRows()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeEdit:
		return m.handleFormKey(msg)
	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			m.mode = modeBrowse
			if p := m.selected(); p != nil {
				return m, m.deleteCmd(p.ID)
			}
			return m, nil
		default:
			m.mode = modeBrowse
			return m, nil
		}
	}

	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			m.table.Focus()
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.refreshRows()
			return m, cmd
		}
		m.refreshRows()
		return m, nil
	}

	switch msg.String() {
	case "/":
		m.searching = true
		m.table.Blur()
		return m, m.search.Focus()
	case "r":
		return m, m.Reload()
	case "a":
		m.mode = modeEdit
		m.form = newForm(nil)
		return m, nil
	case "e":
		if p := m.selected(); p != nil {
			m.mode = modeEdit
			m.form = newForm(p)
		}
		return m, nil
	case "d":
		if m.selected() != nil {
			m.mode = modeConfirmDelete
		}
		return m, nil
	case "enter":
		if p := m.selected(); p != nil {
			sel := *p
			return m, func() tea.Msg { return PatientSelectedMsg{Patient: sel} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil
	case "tab", "down":
		m.setFormFocus((m.form.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFormFocus((m.form.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "left", "right":
		if m.form.focus == fieldStatus {
			m.cycleStatus(msg.String() == "right")
			return m, nil
		}
	case "enter":
		p, ok := m.form.patient()
		if !ok {
			return m, nil
		}
		return m, m.saveCmd(p)
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFormFocus(i int) {
	m.form.inputs[m.form.focus].Blur()
	m.form.focus = i
	m.form.inputs[i].Focus()
}

func (m *Model) cycleStatus(forward bool) {
	cur := m.form.inputs[fieldStatus].Value()
	idx := 0
	for i, s := range patientStatuses {
		if s == cur {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(patientStatuses)
	} else {
		idx = (idx + len(patientStatuses) - 1) % len(patientStatuses)
	}
	m.form.inputs[fieldStatus].SetValue(patientStatuses[idx])
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderTitle.Render("Patient Records"))
	if m.fromCache {
		stamp := "unknown"
		if !m.cachedAt.IsZero() {
			stamp = m.cachedAt.Format("Jan 2 15:04")
		}
		b.WriteString("  ")
		b.WriteString(m.theme.ToastInfo.Render("OFFLINE · cached " + stamp))
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeEdit:
		b.WriteString(m.renderForm())
	case modeConfirmDelete:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(m.theme.FormError.Render("Delete this patient record? (y/n)"))
	default:
		if m.searching || m.search.Value() != "" {
			b.WriteString(m.theme.InputContainer.Render("🔎 " + m.search.View()))
			b.WriteString("\n")
		}
		if m.loading {
			b.WriteString(m.theme.StageActive.Render(m.spinner.View()))
		} else if m.errMsg != "" {
			b.WriteString(m.theme.FormError.Render(m.errMsg))
		} else {
			b.WriteString(m.table.View())
		}
	}

	if m.toast.Visible() {
		b.WriteString("\n")
		b.WriteString(m.toast.View())
	}

	return m.theme.Container.Render(b.String())
}

func (m Model) renderForm() string {
	title := "Edit Patient"
	if m.form.id == "" {
		title = "Add Patient"
	}

	var rows []string
	rows = append(rows, m.theme.CardTitle.Render(title), "")
	for i := range m.form.inputs {
		label := m.theme.FormLabel.Render(fieldLabels[i])
		field := m.form.inputs[i].View()
		if i == m.form.focus {
			field = m.theme.FormFocused.Render(field)
		} else {
			field = m.theme.FormBlurred.Render(field)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, "  ", field))
	}
	if m.form.errMsg != "" {
		rows = append(rows, "", m.theme.FormError.Render(m.form.errMsg))
	}
	rows = append(rows, "", m.theme.StageDetail.Render("enter save · esc cancel · ←/→ cycle status"))

	return m.theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
