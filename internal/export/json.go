// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/raddesk/raddesk-tui/internal/model"
)

// JSONExporter renders conversations and reports as indented JSON,
// the same shapes the client persists and the backend serves.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter { return &JSONExporter{} }

func (e *JSONExporter) FileExtension() string { return ".json" }

func (e *JSONExporter) ExportConversation(conv *model.Conversation) ([]byte, error) {
	return json.MarshalIndent(conv, "", "  ")
}

func (e *JSONExporter) ExportReport(r *model.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
