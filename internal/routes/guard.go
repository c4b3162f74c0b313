// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package routes defines the client-side route table and guard policy.
package routes

import (
	"github.com/raddesk/raddesk-tui/internal/session"
)

// =============================================================================
// ROUTE TABLE
// =============================================================================

// ID names a client-side route.
type ID string

const (
	RouteLogin            ID = "login"
	RouteSignup           ID = "signup"
	RouteChat             ID = "chat"
	RouteXray             ID = "xray"
	RouteCompare          ID = "compare"
	RouteReports          ID = "reports"
	RouteReportDetail     ID = "report-detail"
	RoutePatients         ID = "patients"
	RoutePatientDashboard ID = "patient-dashboard"
	RoutePatientReport    ID = "patient-report"
	RouteLabAdmin         ID = "lab-admin"
	RouteComparisonView   ID = "comparison-view"
)

// Route couples an ID with the roles allowed to render it.
// An empty AllowedRoles set means the route is public.
type Route struct {
	ID           ID
	AllowedRoles []session.Role
}

// Table is the full route table.
var Table = map[ID]Route{
	RouteLogin:            {ID: RouteLogin},
	RouteSignup:           {ID: RouteSignup},
	RouteChat:             {ID: RouteChat, AllowedRoles: []session.Role{session.RoleRadiologist}},
	RouteXray:             {ID: RouteXray, AllowedRoles: []session.Role{session.RoleRadiologist}},
	RouteCompare:          {ID: RouteCompare, AllowedRoles: []session.Role{session.RoleRadiologist}},
	RouteReports:          {ID: RouteReports, AllowedRoles: []session.Role{session.RoleRadiologist}},
	RouteReportDetail:     {ID: RouteReportDetail, AllowedRoles: []session.Role{session.RoleRadiologist}},
	RoutePatients:         {ID: RoutePatients, AllowedRoles: []session.Role{session.RoleRadiologist}},
	RoutePatientDashboard: {ID: RoutePatientDashboard, AllowedRoles: []session.Role{session.RolePatient}},
	RoutePatientReport:    {ID: RoutePatientReport, AllowedRoles: []session.Role{session.RolePatient}},
	RouteLabAdmin:         {ID: RouteLabAdmin, AllowedRoles: []session.Role{session.RoleLabAdmin}},

	// The standalone comparison view opens independently keyed by report id
	// and is readable by any authenticated role.
	RouteComparisonView: {ID: RouteComparisonView, AllowedRoles: []session.Role{
		session.RoleRadiologist, session.RolePatient, session.RoleLabAdmin,
	}},
}

// =============================================================================
// GUARD POLICY
// =============================================================================

// Action is the guard's verdict.
type Action int

const (
	// ActionRender renders the requested route.
	ActionRender Action = iota
	// ActionLoading renders the loading placeholder while the session
	// store is still restoring.
	ActionLoading
	// ActionRedirect navigates to Decision.Target instead.
	ActionRedirect
)

// Decision is the outcome of guarding one navigation.
type Decision struct {
	Action Action
	Target ID
}

// HomeFor maps a role to its home route: patients to the patient
// dashboard, lab admins to the console, everyone else to the chat
// workspace.
func HomeFor(role session.Role) ID {
	switch role {
	case session.RolePatient:
		return RoutePatientDashboard
	case session.RoleLabAdmin:
		return RouteLabAdmin
	default:
		return RouteChat
	}
}

// Decide applies the guard policy for one navigation. Pure function of
// the session state, the session role, and the target route.
func Decide(state session.State, role session.Role, route Route) Decision {
	if state == session.StateLoading {
		return Decision{Action: ActionLoading}
	}

	// Public routes render for everyone.
	if len(route.AllowedRoles) == 0 {
		return Decision{Action: ActionRender}
	}

	if state != session.StateAuthenticated {
		return Decision{Action: ActionRedirect, Target: RouteLogin}
	}

	for _, allowed := range route.AllowedRoles {
		if role == allowed {
			return Decision{Action: ActionRender}
		}
	}

	// Authenticated but in the wrong place: send the user home.
	return Decision{Action: ActionRedirect, Target: HomeFor(role)}
}

// DecideID is Decide over the route table. Unknown IDs redirect to the
// session's home route.
func DecideID(state session.State, role session.Role, id ID) Decision {
	route, ok := Table[id]
	if !ok {
		if state == session.StateAuthenticated {
			return Decision{Action: ActionRedirect, Target: HomeFor(role)}
		}
		return Decision{Action: ActionRedirect, Target: RouteLogin}
	}
	return Decide(state, role, route)
}
