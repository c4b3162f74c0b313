// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log,
// messages, and the medical record types exchanged with the backend.
package model

// =============================================================================
// REPORT TYPE
// =============================================================================

// ReportStatus is the review lifecycle of a report.
type ReportStatus string

const (
	ReportStatusReviewRequired ReportStatus = "review_required"
	ReportStatusApproved       ReportStatus = "approved"
	ReportStatusFinal          ReportStatus = "final"
)

// ScanRef identifies the imaging study a report was produced from.
type ScanRef struct {
	FileURL  string `json:"file_url"`
	Modality string `json:"modality"`
	BodyPart string `json:"body_part"`
}

// NERTags references the entity-visualization artifact for a report.
type NERTags struct {
	VisualizationPath string `json:"visualization_path"`
}

// Report is a radiology report as returned by the backend.
// Optional sections are pointers so that absence is a typed case rather
// than an empty-string guess.
type Report struct {
	ID          string       `json:"id,omitempty"`
	PatientName string       `json:"patientName"`
	PatientID   string       `json:"patientId"`
	Date        string       `json:"date"`
	Status      ReportStatus `json:"status"`
	Findings    string       `json:"findings"`
	FullText    string       `json:"full_text"`

	ComparisonFindings *string  `json:"comparison_findings,omitempty"`
	Scan               *ScanRef `json:"scan,omitempty"`
	NERTags            *NERTags `json:"ner_tags,omitempty"`
	PDFURL             *string  `json:"pdf_url,omitempty"`
}

// HasScan reports whether the report references an imaging study.
func (r *Report) HasScan() bool {
	return r != nil && r.Scan != nil
}

// HasComparison reports whether prior-study comparison findings exist.
func (r *Report) HasComparison() bool {
	return r != nil && r.ComparisonFindings != nil && *r.ComparisonFindings != ""
}

// =============================================================================
// PATIENT TYPE
// =============================================================================

// Patient is one roster entry.
type Patient struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Age        int     `json:"age"`
	Diagnosis  string  `json:"diagnosis"`
	Status     string  `json:"status"`
	AssignedTo string  `json:"assignedTo"`
	LastVisit  string  `json:"lastVisit"`
	Phone      *string `json:"phone,omitempty"`
}

// =============================================================================
// SCAN TYPE
// =============================================================================

// Scan is one uploaded imaging study, as listed by the backend.
type Scan struct {
	ID        string `json:"id,omitempty"`
	PatientID string `json:"patient_id"`
	FileURL   string `json:"file_url"`
	BodyPart  string `json:"body_part"`
	CreatedAt string `json:"created_at,omitempty"`
}
