// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raddesk/raddesk-tui/internal/gateway"
	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/storage"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

var roster = []model.Patient{
	{ID: "NSSH.1215787", Name: "Anand Bineet Birendra Kumar", Age: 67, Diagnosis: "Pneumonia", Status: "Treatment", AssignedTo: "Dr. Anjali Desai", LastVisit: "2024-09-03"},
	{ID: "NSSH.1243309", Name: "Kaushik V Krishnan", Age: 54, Diagnosis: "Bilateral Pneumonia", Status: "Active", AssignedTo: "Dr. Vikram Singh", LastVisit: "2024-07-01"},
	{ID: "NSSH.1272962", Name: "Shreyas Sanghavi", Age: 41, Diagnosis: "Pneumonia", Status: "Monitoring", AssignedTo: "Dr. Anjali Desai", LastVisit: "2024-07-09"},
}

func rosterServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/patients":
			json.NewEncoder(w).Encode(roster)
		case r.Method == http.MethodPost && r.URL.Path == "/api/patients":
			var p model.Patient
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = "NSSH.9999999"
			json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodPut:
			var p model.Patient
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newCache(t *testing.T) *storage.PatientCache {
	t.Helper()
	cache, err := storage.OpenPatientCache(filepath.Join(t.TempDir(), "patients.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func load(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadCmd()()
	m, _ = m.Update(msg)
	return m
}

func TestLoadPopulatesRosterAndCache(t *testing.T) {
	srv := rosterServer(t)
	defer srv.Close()
	cache := newCache(t)

	m := New(styles.NewTheme(), gateway.NewClient(srv.URL), cache)
	m = load(t, m)

	assert.False(t, m.fromCache)
	require.Len(t, m.patients, 3)
	assert.Len(t, m.table.Rows(), 3)

	cached, err := cache.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roster, cached)
}

func TestLoadFallsBackToCacheWhenOffline(t *testing.T) {
	cache := newCache(t)
	require.NoError(t, cache.ReplaceAll(context.Background(), roster))

	m := New(styles.NewTheme(), gateway.NewClient("http://127.0.0.1:1"), cache)
	m = load(t, m)

	assert.True(t, m.fromCache)
	require.Len(t, m.patients, 3)
	assert.Empty(t, m.errMsg)
}

func TestLoadFailsWithoutCache(t *testing.T) {
	m := New(styles.NewTheme(), gateway.NewClient("http://127.0.0.1:1"), nil)
	m = load(t, m)

	assert.NotEmpty(t, m.errMsg)
	assert.Empty(t, m.patients)
}

func TestUnfilledCacheDoesNotMaskOfflineError(t *testing.T) {
	m := New(styles.NewTheme(), gateway.NewClient("http://127.0.0.1:1"), newCache(t))
	m = load(t, m)

	assert.NotEmpty(t, m.errMsg)
	assert.Empty(t, m.patients)
}

func TestSearchFiltersRoster(t *testing.T) {
	srv := rosterServer(t)
	defer srv.Close()

	m := New(styles.NewTheme(), gateway.NewClient(srv.URL), nil)
	m = load(t, m)

	m.search.SetValue("kaushik")
	m.refreshRows()
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "NSSH.1243309", m.table.Rows()[0][0])

	m.search.SetValue("pneumonia")
	m.refreshRows()
	assert.Len(t, m.table.Rows(), 3)

	m.search.SetValue("")
	m.refreshRows()
	assert.Len(t, m.table.Rows(), 3)
}

func TestFormRequiresNameAndAge(t *testing.T) {
	f := newForm(nil)
	_, ok := f.patient()
	require.False(t, ok)
	assert.Equal(t, "Please fill name and age", f.errMsg)

	f.inputs[fieldName].SetValue("New Patient")
	f.inputs[fieldAge].SetValue("abc")
	_, ok = f.patient()
	require.False(t, ok)
	assert.Equal(t, "Age must be a positive number", f.errMsg)

	f.inputs[fieldAge].SetValue("42")
	p, ok := f.patient()
	require.True(t, ok)
	assert.Equal(t, "New Patient", p.Name)
	assert.Equal(t, 42, p.Age)
}

func TestCreatePatientAppendsToRoster(t *testing.T) {
	srv := rosterServer(t)
	defer srv.Close()

	m := New(styles.NewTheme(), gateway.NewClient(srv.URL), nil)
	m = load(t, m)

	msg := m.saveCmd(model.Patient{Name: "New Patient", Age: 42, Status: "Active"})()
	m, _ = m.Update(msg)

	require.Len(t, m.patients, 4)
	assert.Equal(t, "NSSH.9999999", m.patients[3].ID)
}

func TestUpdatePatientReplacesRosterEntry(t *testing.T) {
	srv := rosterServer(t)
	defer srv.Close()

	m := New(styles.NewTheme(), gateway.NewClient(srv.URL), nil)
	m = load(t, m)

	p := m.patients[1]
	p.Status = "Discharged"
	msg := m.saveCmd(p)()
	m, _ = m.Update(msg)

	require.Len(t, m.patients, 3)
	assert.Equal(t, "Discharged", m.patients[1].Status)
}

func TestDeleteRemovesRosterEntry(t *testing.T) {
	srv := rosterServer(t)
	defer srv.Close()

	m := New(styles.NewTheme(), gateway.NewClient(srv.URL), nil)
	m = load(t, m)

	msg := m.deleteCmd("NSSH.1243309")()
	m, _ = m.Update(msg)

	require.Len(t, m.patients, 2)
	for _, p := range m.patients {
		assert.NotEqual(t, "NSSH.1243309", p.ID)
	}
}

func TestEnterEmitsSelection(t *testing.T) {
	srv := rosterServer(t)
	defer srv.Close()

	m := New(styles.NewTheme(), gateway.NewClient(srv.URL), nil)
	m = load(t, m)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sel, ok := cmd().(PatientSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "NSSH.1215787", sel.Patient.ID)
}
