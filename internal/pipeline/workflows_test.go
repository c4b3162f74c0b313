// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // workflow name, "" for no match
	}{
		{"report for known patient", "Generate a comprehensive report for patient ID NSSH.1215787", "report-generation"},
		{"report by short id", "generate report 1215787", "report-generation"},
		{"extract from report", "Extract patient information from this medical report", "ner-extraction"},
		{"show patients", "Show all patients with pneumonia", "patient-search"},
		{"compare scans", "Compare patient scans from last month", "scan-comparison"},
		{"generic report request", "please generate something", "report-generation"},
		{"bare report mention", "what does the report say", "report-generation"},
		{"case insensitive", "SHOW ALL PATIENTS", "patient-search"},
		{"no match", "hello there", ""},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.input)
			if tc.want == "" {
				if got != nil {
					t.Errorf("Classify(%q) = %q, want no match", tc.input, got.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("Classify(%q) = nil, want %q", tc.input, tc.want)
			}
			if got.Name != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.input, got.Name, tc.want)
			}
			if got.Prompt != tc.input {
				t.Errorf("classified workflow should echo the user's input, got %q", got.Prompt)
			}
		})
	}
}

func TestForUpload(t *testing.T) {
	if w := ForUpload("/tmp/report.PDF"); w.Name != "ner-extraction" {
		t.Errorf("pdf upload routed to %q, want ner-extraction", w.Name)
	}
	if w := ForUpload("/tmp/chest.png"); w.Name != "xray-analysis" {
		t.Errorf("image upload routed to %q, want xray-analysis", w.Name)
	}
	if w := ForUpload("/tmp/chest.png"); w.Result.ImagePath != "/tmp/chest.png" {
		t.Error("xray workflow should carry the upload path into its result")
	}
}

func TestWorkflowShapes(t *testing.T) {
	for _, w := range []Workflow{
		XrayAnalysis("x.png"),
		ReportGeneration(),
		PatientSearch(),
		ScanComparison(),
		NERExtraction(""),
	} {
		t.Run(w.Name, func(t *testing.T) {
			if len(w.Stages) == 0 {
				t.Fatal("workflow has no stages")
			}
			for i, s := range w.Stages {
				if s.Name == "" || s.Description == "" || s.Duration <= 0 {
					t.Errorf("stage %d incomplete: %+v", i, s)
				}
			}
			if w.Prompt == "" {
				t.Error("workflow has no prompt")
			}
			if w.Result.Text == "" && w.Result.Report == nil {
				t.Error("workflow result carries neither text nor a report")
			}
		})
	}
}

func TestReportGenerationResultIsStructured(t *testing.T) {
	w := ReportGeneration()
	r := w.Result.Report
	if r == nil {
		t.Fatal("report workflow must yield a report card")
	}
	if r.PatientID != "NSSH.1215787" {
		t.Errorf("patient id = %q", r.PatientID)
	}
	if r.Status != "review_required" {
		t.Errorf("fresh report status = %q, want review_required", r.Status)
	}
	if !strings.Contains(r.FullText, "IMPRESSION") {
		t.Error("report full text missing impression section")
	}
	if w.Result.Stream {
		t.Error("structured report card is not streamed")
	}
}

func TestHelpResultStreams(t *testing.T) {
	h := HelpResult()
	if !h.Stream {
		t.Error("help response should stream")
	}
	if !strings.Contains(h.Text, "X-ray Analysis") {
		t.Error("help response should list capabilities")
	}
}
