// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// fakeScheduler returns commands that deliver synchronously when the
// test invokes them, so runs are driven without wall-clock waits.
type fakeScheduler struct {
	delays []time.Duration
}

func (f *fakeScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	f.delays = append(f.delays, d)
	return func() tea.Msg { return msg }
}

func testStages() []Stage {
	return []Stage{
		{Name: "Routing", Description: "route", Duration: 100 * time.Millisecond},
		{Name: "Analysis", Description: "analyze", Duration: 200 * time.Millisecond},
		{Name: "Reporting", Description: "format", Duration: 300 * time.Millisecond},
	}
}

// drive invokes cmd and feeds the produced message back into the
// controller, returning the follow-up command and any emitted result.
func drive(t *testing.T, c *Controller, cmd tea.Cmd) (tea.Cmd, *Result) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a scheduled command")
	}
	return c.Update(cmd())
}

func TestController_RunToCompletion(t *testing.T) {
	sched := &fakeScheduler{}
	c := NewController(sched)

	cmd := c.Start(testStages(), Result{AgentName: "Analysis Agent", Text: "done", Stream: true})
	require.NotNil(t, cmd)
	require.Equal(t, StatusRunning, c.Status())
	require.Equal(t, 0, c.CurrentStage())
	require.Len(t, c.Stages(), 3)

	// Stage index only moves when each wait elapses, never before.
	cmd, res := drive(t, c, cmd)
	require.Nil(t, res)
	require.Equal(t, 1, c.CurrentStage())

	cmd, res = drive(t, c, cmd)
	require.Nil(t, res)
	require.Equal(t, 2, c.CurrentStage())

	// Last stage elapses into the settle wait, not straight to done.
	cmd, res = drive(t, c, cmd)
	require.Nil(t, res)
	require.Equal(t, StatusRunning, c.Status())

	cmd, res = drive(t, c, cmd)
	require.Nil(t, cmd)
	require.NotNil(t, res)
	require.Equal(t, "done", res.Text)
	require.Equal(t, StatusCompleted, c.Status())

	// Stage durations then the settle delay, in order.
	require.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		SettleDelay,
	}, sched.delays)
}

func TestController_SingleFlight(t *testing.T) {
	c := NewController(&fakeScheduler{})

	cmd := c.Start(testStages(), Result{})
	if cmd == nil {
		t.Fatal("first start should schedule")
	}
	if again := c.Start(testStages(), Result{}); again != nil {
		t.Error("second start while running should be refused")
	}
}

func TestController_StartEmptyStages(t *testing.T) {
	c := NewController(&fakeScheduler{})
	if cmd := c.Start(nil, Result{}); cmd != nil {
		t.Error("empty stage list should not start")
	}
	if c.Status() != StatusIdle {
		t.Errorf("status = %v, want idle", c.Status())
	}
}

func TestController_CancelDiscardsPendingTimers(t *testing.T) {
	c := NewController(&fakeScheduler{})

	cmd := c.Start(testStages(), Result{Text: "never"})
	cmd, _ = drive(t, c, cmd)

	require.True(t, c.Cancel())
	require.Equal(t, StatusCancelled, c.Status())
	require.Nil(t, c.Stages())

	// The wait scheduled before Cancel still fires; its run id no
	// longer matches, so it mutates nothing.
	follow, res := c.Update(cmd())
	require.Nil(t, follow)
	require.Nil(t, res)
	require.Equal(t, StatusCancelled, c.Status())
	require.Equal(t, 1, c.CurrentStage())
}

func TestController_CancelIdempotent(t *testing.T) {
	c := NewController(&fakeScheduler{})
	if c.Cancel() {
		t.Error("cancel while idle should be a no-op")
	}

	c.Start(testStages(), Result{})
	if !c.Cancel() {
		t.Error("first cancel should stop the run")
	}
	if c.Cancel() {
		t.Error("second cancel should be a no-op")
	}
}

func TestController_RestartAfterCancel(t *testing.T) {
	c := NewController(&fakeScheduler{})

	staleCmd := c.Start(testStages(), Result{Text: "old"})
	c.Cancel()

	cmd := c.Start(testStages(), Result{Text: "new"})
	require.NotNil(t, cmd)
	require.Equal(t, StatusRunning, c.Status())
	require.Equal(t, 0, c.CurrentStage())

	// A leftover timer from the first run must not advance the second.
	_, res := c.Update(staleCmd())
	require.Nil(t, res)
	require.Equal(t, 0, c.CurrentStage())
}

func TestController_SettleMsgAfterCancelSuppressed(t *testing.T) {
	c := NewController(&fakeScheduler{})

	cmd := c.Start([]Stage{{Name: "only", Duration: time.Millisecond}}, Result{Text: "suppressed"})
	cmd, res := drive(t, c, cmd)
	require.Nil(t, res)

	c.Cancel()

	_, res = c.Update(cmd())
	if res != nil {
		t.Error("cancelled run must not emit its result")
	}
}

func TestController_Fail(t *testing.T) {
	c := NewController(&fakeScheduler{})

	cmd := c.Start(testStages(), Result{Text: "unreachable"})
	cause := errors.New("gateway unreachable")
	c.Fail(cause)

	require.Equal(t, StatusFailed, c.Status())
	require.Equal(t, cause, c.Err())

	_, res := c.Update(cmd())
	require.Nil(t, res)

	// Failure is terminal but not sticky: a fresh run may start.
	if c.Start(testStages(), Result{}) == nil {
		t.Error("start after failure should be allowed")
	}
	if c.Err() != nil {
		t.Error("new run should clear the previous failure cause")
	}
}

func TestController_StaleMessageWrongType(t *testing.T) {
	c := NewController(&fakeScheduler{})
	c.Start(testStages(), Result{})

	follow, res := c.Update(struct{}{})
	if follow != nil || res != nil {
		t.Error("unrelated messages should be ignored")
	}
}
