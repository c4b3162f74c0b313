// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation or a report to one output format.
type Exporter interface {
	// ExportConversation renders the full message log.
	ExportConversation(conv *model.Conversation) ([]byte, error)

	// ExportReport renders a single report.
	ExportReport(r *model.Report) ([]byte, error)

	// FileExtension returns the extension for the format (e.g. ".md").
	FileExtension() string
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are written.
	// Default: current working directory.
	OutputDir string

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ConversationToFile writes a conversation using the given exporter
// and returns the output path.
func ConversationToFile(conv *model.Conversation, exp Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	data, err := exp.ExportConversation(conv)
	if err != nil {
		return "", fmt.Errorf("export conversation: %w", err)
	}
	name := baseName(conv.GetTitle(), "conversation") + exp.FileExtension()
	return writeFile(opts.OutputDir, name, data)
}

// ReportToFile writes a report using the given exporter and returns
// the output path.
func ReportToFile(r *model.Report, exp Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	data, err := exp.ExportReport(r)
	if err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}
	name := baseName(r.PatientName, "report") + exp.FileExtension()
	return writeFile(opts.OutputDir, name, data)
}

func writeFile(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// baseName builds a filesystem-safe file name from a title, with a
// timestamp so repeated exports never collide.
func baseName(title, fallback string) string {
	slug := sanitize(title)
	if slug == "" {
		slug = fallback
	}
	return slug + "-" + time.Now().Format("20060102-150405")
}

func sanitize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(util.TruncateRunesNoEllipsis(b.String(), 40), "-")
}
