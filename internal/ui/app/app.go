// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raddesk/raddesk-tui/internal/config"
	"github.com/raddesk/raddesk-tui/internal/gateway"
	"github.com/raddesk/raddesk-tui/internal/pipeline"
	"github.com/raddesk/raddesk-tui/internal/routes"
	"github.com/raddesk/raddesk-tui/internal/session"
	"github.com/raddesk/raddesk-tui/internal/storage"
	"github.com/raddesk/raddesk-tui/internal/ui/chat"
	"github.com/raddesk/raddesk-tui/internal/ui/components"
	"github.com/raddesk/raddesk-tui/internal/ui/labadmin"
	"github.com/raddesk/raddesk-tui/internal/ui/login"
	"github.com/raddesk/raddesk-tui/internal/ui/patients"
	"github.com/raddesk/raddesk-tui/internal/ui/reports"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
	"github.com/raddesk/raddesk-tui/internal/ui/xray"
)

// sessionRestoredMsg signals that the persisted session (if any) has
// been loaded and the guard can leave the loading state.
type sessionRestoredMsg struct{}

// App is the root model.
type App struct {
	cfg   *config.Config
	theme *styles.Theme
	store *session.Store
	gw    *gateway.Client

	route routes.ID

	loginView    login.Model
	chatView     chat.Model
	xrayView     xray.Model
	patientsView patients.Model
	reportsView  reports.Model
	labadminView labadmin.Model

	statusBar components.StatusBar
	toast     components.Toast

	width, height int
	restored      bool
}

// New wires the root model. cache and convStore may be nil; the views
// degrade to non-persistent behavior.
func New(cfg *config.Config, store *session.Store, gw *gateway.Client,
	convStore *storage.ConversationStore, cache *storage.PatientCache) App {

	theme := styles.NewThemeNamed(cfg.UI.Theme)
	sched := pipeline.TimerScheduler{}
	tick := time.Duration(cfg.Chat.StreamTickMs) * time.Millisecond

	return App{
		cfg:          cfg,
		theme:        theme,
		store:        store,
		gw:           gw,
		route:        routes.RouteLogin,
		loginView:    login.New(theme, store),
		chatView:     chat.New(theme, sched, convStore, tick),
		xrayView:     xray.New(theme, gw, sched, cfg.Chat.SimulatedMode),
		patientsView: patients.New(theme, gw, cache),
		reportsView:  reports.New(theme, gw),
		labadminView: labadmin.New(theme, gw, cache),
		statusBar:    components.NewStatusBar(theme),
		toast:        components.NewToast(theme),
	}
}

// Init restores the persisted session off the update loop.
func (a App) Init() tea.Cmd {
	store := a.store
	restore := func() tea.Msg {
		store.Restore()
		return sessionRestoredMsg{}
	}
	return tea.Batch(restore, a.chatView.Init(), a.loginView.Init())
}

// Route exposes the active route, for tests.
func (a App) Route() routes.ID {
	return a.route
}

// =============================================================================
// NAVIGATION
// =============================================================================

// navigate applies the guard to a navigation request, following at
// most one redirect hop.
func (a App) navigate(target routes.ID) (App, tea.Cmd) {
	role := session.Role("")
	if sess := a.store.Current(); sess != nil {
		role = sess.Role
	}

	for hops := 0; hops < 2; hops++ {
		decision := routes.DecideID(a.store.State(), role, target)
		switch decision.Action {
		case routes.ActionLoading:
			// Stay put until restore finishes.
			return a, nil
		case routes.ActionRedirect:
			target = decision.Target
			continue
		}
		return a.enter(target)
	}
	return a.enter(routes.RouteLogin)
}

// enter switches to a guarded-in route and runs its entry command.
func (a App) enter(target routes.ID) (App, tea.Cmd) {
	if a.route == routes.RouteChat && target != routes.RouteChat {
		// Leaving the chat stops its timers and persists the log.
		a.chatView.Teardown()
		_ = a.chatView.Persist()
	}

	a.route = target
	a.resize()

	switch target {
	case routes.RoutePatients:
		return a, a.patientsView.Reload()
	case routes.RouteReports:
		// The full list belongs to the radiologist workspace; roster
		// hand-offs re-scope after navigation.
		a.reportsView.ClearScope()
		return a, a.reportsView.Reload()
	case routes.RoutePatientDashboard, routes.RoutePatientReport, routes.RouteComparisonView:
		if sess := a.store.Current(); sess != nil {
			a.reportsView.ScopeToSubject(sess.Subject)
		}
		return a, a.reportsView.Reload()
	case routes.RouteLabAdmin:
		return a, a.labadminView.Reload()
	case routes.RouteLogin, routes.RouteSignup:
		a.loginView.Reset()
	}
	return a, nil
}

// =============================================================================
// UPDATE
// =============================================================================

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case sessionRestoredMsg:
		a.restored = true
		if sess := a.store.Current(); sess != nil {
			return a.navigate(routes.HomeFor(sess.Role))
		}
		return a.navigate(routes.RouteLogin)

	case login.LoggedInMsg:
		note := "Welcome back, " + msg.Session.DisplayName
		if msg.SignUp {
			note = "Account created for " + msg.Session.DisplayName
		}
		next, cmd := a.navigate(routes.HomeFor(msg.Session.Role))
		return next, tea.Batch(cmd, next.toast.Success(note))

	case patients.PatientSelectedMsg:
		next, cmd := a.navigate(routes.RouteReports)
		next.reportsView.ScopeToPatient(msg.Patient)
		return next, cmd

	case xray.ReportReviewedMsg:
		a.reportsView.Open(msg.Report)
		next, cmd := a.navigate(routes.RouteReportDetail)
		return next, tea.Batch(cmd, next.toast.Success("Report approved"))

	case tea.KeyMsg:
		if handled, next, cmd := a.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	a.toast.Update(msg)
	return a.updateActive(msg)
}

// handleGlobalKey binds quit, logout, and view switching. Returns
// handled=false for keys the active view owns.
func (a App) handleGlobalKey(msg tea.KeyMsg) (bool, App, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return true, a, a.shutdown()
	case "ctrl+l":
		if a.store.State() != session.StateAuthenticated {
			return false, a, nil
		}
		a.chatView.Teardown()
		_ = a.chatView.Persist()
		a.store.Logout()
		next, cmd := a.navigate(routes.RouteLogin)
		return true, next, tea.Batch(cmd, next.toast.Success("Logged out successfully"))
	}

	sess := a.store.Current()
	if sess == nil {
		return false, a, nil
	}

	// Radiologist workspace switching.
	if sess.Role == session.RoleRadiologist {
		var target routes.ID
		switch msg.String() {
		case "f1":
			target = routes.RouteChat
		case "f2":
			target = routes.RouteXray
		case "f3":
			target = routes.RoutePatients
		case "f4":
			target = routes.RouteReports
		}
		if target != "" && target != a.route {
			next, cmd := a.navigate(target)
			return true, next, cmd
		}
	}
	return false, a, nil
}

// shutdown tears down timer sources and persists before quitting.
func (a *App) shutdown() tea.Cmd {
	a.chatView.Teardown()
	a.xrayView.Teardown()
	_ = a.chatView.Persist()
	return tea.Quit
}

// updateActive forwards a message to the view behind the current route.
func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route {
	case routes.RouteLogin, routes.RouteSignup:
		a.loginView, cmd = a.loginView.Update(msg)
	case routes.RouteChat, routes.RouteCompare:
		a.chatView, cmd = a.chatView.Update(msg)
	case routes.RouteXray:
		a.xrayView, cmd = a.xrayView.Update(msg)
	case routes.RoutePatients:
		a.patientsView, cmd = a.patientsView.Update(msg)
	case routes.RouteReports, routes.RouteReportDetail,
		routes.RoutePatientDashboard, routes.RoutePatientReport,
		routes.RouteComparisonView:
		a.reportsView, cmd = a.reportsView.Update(msg)
		if a.route == routes.RouteReportDetail && !a.reportsView.InDetail() {
			// Closing the report falls back to the list route.
			a.route = routes.RouteReports
			cmd = tea.Batch(cmd, a.reportsView.Reload())
		}
	case routes.RouteLabAdmin:
		a.labadminView, cmd = a.labadminView.Update(msg)
	}
	return a, cmd
}

func (a *App) resize() {
	if a.width == 0 {
		return
	}
	// The bottom row belongs to the status bar.
	h := a.height - 1
	a.theme.SetSize(a.width, h)
	a.loginView.SetSize(a.width, h)
	a.chatView.SetSize(a.width, h)
	a.xrayView.SetSize(a.width, h)
	a.patientsView.SetSize(a.width, h)
	a.reportsView.SetSize(a.width, h)
	a.labadminView.SetSize(a.width, h)
}

// =============================================================================
// VIEW
// =============================================================================

func (a App) View() string {
	if !a.restored {
		return "\n  Restoring session..."
	}

	var body string
	switch a.route {
	case routes.RouteLogin, routes.RouteSignup:
		body = a.loginView.View()
	case routes.RouteChat, routes.RouteCompare:
		body = a.chatView.View()
	case routes.RouteXray:
		body = a.xrayView.View()
	case routes.RoutePatients:
		body = a.patientsView.View()
	case routes.RouteReports, routes.RouteReportDetail,
		routes.RoutePatientDashboard, routes.RoutePatientReport,
		routes.RouteComparisonView:
		body = a.reportsView.View()
	case routes.RouteLabAdmin:
		body = a.labadminView.View()
	}

	out := body
	if a.toast.Visible() {
		out += "\n" + a.toast.View()
	}
	return out + "\n" + a.renderStatusBar()
}

func (a App) renderStatusBar() string {
	role, identity := "", ""
	if sess := a.store.Current(); sess != nil {
		role = string(sess.Role)
		identity = sess.DisplayName
	}
	return a.statusBar.View(a.width, role, identity, string(a.route), a.shortcuts())
}

// shortcuts lists the bindings shown for the current route and role.
func (a App) shortcuts() []components.Shortcut {
	sess := a.store.Current()
	if sess == nil {
		return []components.Shortcut{
			{Key: "tab", Desc: "next field"},
			{Key: "ctrl+t", Desc: "phone login"},
			{Key: "ctrl+s", Desc: "sign up"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	}

	out := []components.Shortcut{}
	if sess.Role == session.RoleRadiologist {
		out = append(out,
			components.Shortcut{Key: "f1", Desc: "chat"},
			components.Shortcut{Key: "f2", Desc: "x-ray"},
			components.Shortcut{Key: "f3", Desc: "patients"},
			components.Shortcut{Key: "f4", Desc: "reports"},
		)
	}
	out = append(out,
		components.Shortcut{Key: "ctrl+l", Desc: "logout"},
		components.Shortcut{Key: "ctrl+c", Desc: "quit"},
	)
	return out
}
