// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raddesk/raddesk-tui/internal/model"
)

func TestAnalyzeXray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/analyze", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "chest.png", hdr.Filename)

		json.NewEncoder(w).Encode(AnalyzeResponse{
			Status:   "review_required",
			ThreadID: "thread-42",
			CurrentReport: &model.Report{
				PatientID: "NSSH.1215787",
				Status:    model.ReportStatusReviewRequired,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.AnalyzeXray(context.Background(), "chest.png", strings.NewReader("not-a-real-png"))
	require.NoError(t, err)
	require.Equal(t, "review_required", resp.Status)
	require.Equal(t, "thread-42", resp.ThreadID)
	require.NotNil(t, resp.CurrentReport)
}

func TestSendFeedback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/feedback", r.URL.Path)
		var req FeedbackRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, FeedbackApprove, req.Action)
		require.Equal(t, "thread-42", req.ThreadID)
		json.NewEncoder(w).Encode(FeedbackResponse{PDFURL: "/static/report.pdf"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.SendFeedback(context.Background(), FeedbackRequest{ThreadID: "thread-42", Action: FeedbackApprove})
	require.NoError(t, err)
	require.Equal(t, "/static/report.pdf", resp.PDFURL)
}

func TestReportRoundTrip(t *testing.T) {
	stored := model.Report{
		ID:          "r1",
		PatientName: "Anand Kumar",
		Status:      model.ReportStatusReviewRequired,
		FullText:    "draft",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/reports/r1":
			json.NewEncoder(w).Encode(stored)
		case r.Method == http.MethodPut && r.URL.Path == "/api/reports/r1":
			var upd ReportUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
			stored.FullText = upd.FullText
			stored.Status = upd.Status
			json.NewEncoder(w).Encode(stored)
		case r.Method == http.MethodGet && r.URL.Path == "/api/reports":
			json.NewEncoder(w).Encode([]model.Report{stored})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	got, err := c.Report(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "Anand Kumar", got.PatientName)

	upd, err := c.UpdateReport(ctx, "r1", ReportUpdate{FullText: "final text", Status: model.ReportStatusApproved})
	require.NoError(t, err)
	require.Equal(t, "final text", upd.FullText)
	require.Equal(t, model.ReportStatusApproved, upd.Status)

	list, err := c.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAskReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "r1", req.ReportID)
		json.NewEncoder(w).Encode(ChatResponse{Answer: "The findings are stable."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	answer, err := c.AskReport(context.Background(), "r1", "what are the findings?")
	require.NoError(t, err)
	require.Equal(t, "The findings are stable.", answer)
}

func TestPatientCRUD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/patients":
			json.NewEncoder(w).Encode([]model.Patient{{ID: "p1", Name: "Shreyas Sanghavi"}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/patients":
			var p model.Patient
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = "p2"
			json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/patients/p1":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	list, err := c.Patients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	created, err := c.CreatePatient(ctx, model.Patient{Name: "New Patient", Age: 40})
	require.NoError(t, err)
	require.Equal(t, "p2", created.ID)

	require.NoError(t, c.DeletePatient(ctx, "p1"))
}

func TestGatewayErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "report not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Report(context.Background(), "missing")
	require.Error(t, err)

	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	require.Equal(t, http.StatusNotFound, gerr.Status)
	require.Equal(t, "report not found", gerr.Message)
}

func TestUnreachableBackend(t *testing.T) {
	// A port nothing listens on.
	c := NewClient("http://127.0.0.1:1", WithTimeout(time.Second))
	_, err := c.Reports(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnavailable))
}

func TestResolveURL(t *testing.T) {
	c := NewClient("http://backend:8000/")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/static/viz.png", "http://backend:8000/static/viz.png"},
		{"static/viz.png", "http://backend:8000/static/viz.png"},
		{"https://cdn.example.com/x.png", "https://cdn.example.com/x.png"},
	}
	for _, tc := range tests {
		if got := c.ResolveURL(tc.in); got != tc.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
