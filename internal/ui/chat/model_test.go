// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/pipeline"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// fakeScheduler queues scheduled messages instead of sleeping, so
// tests deliver them one by one in order.
type fakeScheduler struct {
	queue  []tea.Msg
	delays []time.Duration
}

func (f *fakeScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	f.delays = append(f.delays, d)
	f.queue = append(f.queue, msg)
	return nil
}

func (f *fakeScheduler) pop() (tea.Msg, bool) {
	if len(f.queue) == 0 {
		return nil, false
	}
	msg := f.queue[0]
	f.queue = f.queue[1:]
	return msg, true
}

func newTestModel(t *testing.T) (Model, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	m := New(styles.NewTheme(), sched, nil, time.Millisecond)
	m.SetSize(100, 30)
	return m, sched
}

func send(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func keyPress(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next, cmd
}

// deliver pumps queued scheduler messages through Update until the
// queue drains or the step limit trips.
func deliver(t *testing.T, m Model, sched *fakeScheduler) Model {
	t.Helper()
	for steps := 0; ; steps++ {
		require.Less(t, steps, 10000, "scheduler queue never drained")
		msg, ok := sched.pop()
		if !ok {
			return m
		}
		m, _ = m.Update(msg)
	}
}

func TestSendStartsClassifiedWorkflow(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(m, "show patient records")

	require.Equal(t, 1, m.Conversation().Len())
	assert.Equal(t, model.RoleUser, m.Conversation().Last().Role)
	assert.True(t, m.controller.Running())
	assert.Equal(t, "Routing to database query pipeline", m.controller.Stages()[0].Description)
}

func TestWorkflowRunsToStreamedAnswer(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "show patient records")
	m = deliver(t, m, sched)

	require.Equal(t, 2, m.Conversation().Len())
	last := m.Conversation().Last()
	assert.Equal(t, model.RoleAgent, last.Role)
	assert.Equal(t, "Patient Management Agent", last.SourceLabel)
	assert.False(t, last.IsStreaming, "reveal should have run to completion")
	assert.Equal(t, last.FinalText, last.VisibleText)
	assert.Contains(t, last.FinalText, "Found 4 Patients with Pneumonia")
	assert.False(t, m.Busy())
}

func TestStreamRevealIsMonotonicPrefix(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "show patient records")

	// Run the pipeline stages but stop pumping once the reveal starts.
	var prev string
	for steps := 0; ; steps++ {
		require.Less(t, steps, 10000)
		msg, ok := sched.pop()
		require.True(t, ok, "stream ended before completing")
		m, _ = m.Update(msg)

		last := m.Conversation().Last()
		if last.Role != model.RoleAgent {
			continue
		}
		if !last.IsStreaming {
			break
		}
		assert.True(t, strings.HasPrefix(last.VisibleText, prev),
			"visible text must only grow")
		assert.True(t, strings.HasPrefix(last.FinalText, last.VisibleText),
			"visible text must be a prefix of the final text")
		prev = last.VisibleText
	}
}

func TestReportWorkflowEmitsStructuredCard(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "generate report for patient 1215787")
	m = deliver(t, m, sched)

	last := m.Conversation().Last()
	require.NotNil(t, last.Report)
	assert.Equal(t, "NSSH.1215787", last.Report.PatientID)
	assert.Equal(t, model.ReportStatusReviewRequired, last.Report.Status)
	assert.False(t, last.IsStreaming)
}

func TestEscCancelsPipelineMidRun(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "compare recent scans")
	require.True(t, m.controller.Running())

	m, _ = keyPress(m, tea.KeyEsc)
	assert.False(t, m.controller.Running())
	assert.Equal(t, pipeline.StatusCancelled, m.controller.Status())

	// Stale stage timers still in the queue must not produce output.
	m = deliver(t, m, sched)
	assert.Equal(t, 1, m.Conversation().Len(), "cancelled run must not settle")
}

func TestEscFreezesActiveStream(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "analyze this x-ray")

	// Pump until the streamed answer appears, then a few reveal ticks.
	for m.Conversation().Len() < 2 {
		msg, ok := sched.pop()
		require.True(t, ok)
		m, _ = m.Update(msg)
	}
	for i := 0; i < 5; i++ {
		msg, ok := sched.pop()
		require.True(t, ok)
		m, _ = m.Update(msg)
	}

	last := m.Conversation().Last()
	require.True(t, last.IsStreaming)
	frozen := last.VisibleText

	m, _ = keyPress(m, tea.KeyEsc)
	assert.False(t, m.Busy())
	assert.Equal(t, frozen, last.VisibleText)
	assert.Equal(t, frozen, last.FinalText, "freeze truncates the final text")

	// A stale tick for the frozen message is a no-op and does not
	// reschedule.
	m = deliver(t, m, sched)
	assert.Equal(t, frozen, last.VisibleText)
	assert.Empty(t, sched.queue)
}

func TestUnrecognizedInputGetsHelpResponse(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "what is the meaning of life")
	require.Equal(t, 1, m.Conversation().Len())
	require.Len(t, sched.delays, 1)
	assert.Equal(t, pipeline.SettleDelay, sched.delays[0])

	m = deliver(t, m, sched)

	last := m.Conversation().Last()
	require.Equal(t, model.RoleAgent, last.Role)
	assert.Contains(t, last.FinalText, "I can help with")
}

func TestEscSuppressesPendingHelpResponse(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "gibberish")
	m, _ = keyPress(m, tea.KeyEsc)

	m = deliver(t, m, sched)
	assert.Equal(t, 1, m.Conversation().Len(), "stale help timer must not fire")
}

func TestSendWhileBusyIsRejected(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(m, "show patient records")
	m, _ = send(m, "analyze this x-ray")

	assert.Equal(t, 1, m.Conversation().Len())
	assert.Equal(t, "Routing to database query pipeline", m.controller.Stages()[0].Description)
}

func TestAttachModeRoutesByExtension(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.attaching)

	m, _ = send(m, "discharge_summary.pdf")
	assert.False(t, m.attaching)
	require.True(t, m.controller.Running())
	assert.Equal(t, "Routing to NER extraction pipeline", m.controller.Stages()[0].Description)
	assert.Equal(t, "discharge_summary.pdf", m.Conversation().Last().Attachment)

	m = deliver(t, m, sched)
	assert.Contains(t, m.Conversation().Last().FinalText, "Medical Entities Extracted Successfully")
}

func TestRegenerateRerunsWorkflow(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "show patient records")
	m = deliver(t, m, sched)
	require.Equal(t, 2, m.Conversation().Len())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, 1, m.Conversation().Len(), "old answer removed")
	require.True(t, m.controller.Running())

	m = deliver(t, m, sched)
	require.Equal(t, 2, m.Conversation().Len())
	assert.Contains(t, m.Conversation().Last().FinalText, "Found 4 Patients with Pneumonia")
}

func TestNewConversationResetsLog(t *testing.T) {
	m, sched := newTestModel(t)

	m, _ = send(m, "show patient records")
	m = deliver(t, m, sched)
	require.NotZero(t, m.Conversation().Len())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Zero(t, m.Conversation().Len())
}
