// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raddesk/raddesk-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// SettleDelay is the pause between the last stage finishing and the
	// result message appearing in the log.
	SettleDelay = 500 * time.Millisecond

	// StreamTickInterval is the cadence of the typewriter reveal.
	StreamTickInterval = 15 * time.Millisecond
)

// =============================================================================
// TYPES
// =============================================================================

// Stage is one step of an agent pipeline.
type Stage struct {
	Name        string
	Description string
	Duration    time.Duration
}

// Status is the lifecycle of one operation run.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the message an operation emits on natural completion.
type Result struct {
	AgentName string
	Text      string
	Report    *model.Report
	Stream    bool
	ImagePath string
}

// StageAdvanceMsg signals that the active stage's wait elapsed.
type StageAdvanceMsg struct{ RunID int }

// SettleMsg signals that the post-pipeline settle delay elapsed.
type SettleMsg struct{ RunID int }

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs at most one operation at a time. Every run carries a
// generation number; timer messages from a superseded run no longer
// match and are discarded, so cancellation never races a tick already
// in flight.
type Controller struct {
	sched Scheduler

	runID   int
	status  Status
	stages  []Stage
	current int
	result  Result
	err     error
}

// NewController returns an idle controller using sched for all waits.
func NewController(sched Scheduler) *Controller {
	return &Controller{sched: sched}
}

// Start begins a new run. The controller is single-flight: if a run is
// already in progress Start returns nil and changes nothing.
func (c *Controller) Start(stages []Stage, result Result) tea.Cmd {
	if c.status == StatusRunning || len(stages) == 0 {
		return nil
	}
	c.runID++
	c.status = StatusRunning
	c.stages = stages
	c.current = 0
	c.result = result
	c.err = nil
	return c.sched.After(stages[0].Duration, StageAdvanceMsg{RunID: c.runID})
}

// Cancel terminates the active run. Pending waits become stale and are
// discarded on arrival. Calling Cancel when nothing is running is a
// no-op; the return value reports whether a run was actually stopped.
func (c *Controller) Cancel() bool {
	if c.status != StatusRunning {
		return false
	}
	c.runID++
	c.status = StatusCancelled
	return true
}

// Fail terminates the active run with an error, as when a gateway call
// backing a stage fails. Cleanup is identical to Cancel.
func (c *Controller) Fail(err error) {
	if c.status != StatusRunning {
		return
	}
	c.runID++
	c.status = StatusFailed
	c.err = err
}

// Update advances the state machine for one timer message. It returns
// the follow-up command, and a non-nil Result exactly once per run, on
// natural completion. Messages from stale runs return (nil, nil).
func (c *Controller) Update(msg tea.Msg) (tea.Cmd, *Result) {
	switch m := msg.(type) {
	case StageAdvanceMsg:
		if m.RunID != c.runID || c.status != StatusRunning {
			return nil, nil
		}
		c.current++
		if c.current < len(c.stages) {
			return c.sched.After(c.stages[c.current].Duration, StageAdvanceMsg{RunID: c.runID}), nil
		}
		return c.sched.After(SettleDelay, SettleMsg{RunID: c.runID}), nil

	case SettleMsg:
		if m.RunID != c.runID || c.status != StatusRunning {
			return nil, nil
		}
		c.status = StatusCompleted
		out := c.result
		return nil, &out
	}
	return nil, nil
}

// Running reports whether a run is in progress.
func (c *Controller) Running() bool { return c.status == StatusRunning }

// Status returns the current lifecycle state.
func (c *Controller) Status() Status { return c.status }

// Err returns the failure cause after Fail, nil otherwise.
func (c *Controller) Err() error { return c.err }

// Stages returns the active run's stage list, nil when idle.
func (c *Controller) Stages() []Stage {
	if c.status != StatusRunning {
		return nil
	}
	return c.stages
}

// CurrentStage is the index of the active stage. The stage shows as
// active for its entire duration window; the index only moves once the
// wait elapses.
func (c *Controller) CurrentStage() int { return c.current }
