package scheduler_test

import (
	"testing"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/scheduler"
)

// ── IsTransitionAllowed: the check cycle ─────────────────────────────────

func TestIsTransitionAllowed_Cycle(t *testing.T) {
	cases := []struct {
		from, to scheduler.State
	}{
		{scheduler.StateIdle, scheduler.StateChecking},
		{scheduler.StateChecking, scheduler.StateSyncing},
		{scheduler.StateChecking, scheduler.StateSkipping},
		{scheduler.StateChecking, scheduler.StateIdle},
		{scheduler.StateSyncing, scheduler.StateIdle},
		{scheduler.StateSkipping, scheduler.StateIdle},
	}
	for _, c := range cases {
		if !scheduler.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) = false, want true", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed: forbidden moves ─────────────────────────────────

func TestIsTransitionAllowed_Forbidden(t *testing.T) {
	cases := []struct {
		from, to scheduler.State
	}{
		{scheduler.StateIdle, scheduler.StateSyncing},  // must check first
		{scheduler.StateIdle, scheduler.StateSkipping}, // must check first
		{scheduler.StateIdle, scheduler.StateIdle},
		{scheduler.StateSyncing, scheduler.StateChecking}, // overlapping tick
		{scheduler.StateSyncing, scheduler.StateSkipping},
		{scheduler.StateSkipping, scheduler.StateSyncing},
		{scheduler.StateChecking, scheduler.StateChecking},
	}
	for _, c := range cases {
		if scheduler.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) = true, want false", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_UnknownState(t *testing.T) {
	if scheduler.IsTransitionAllowed("paused", scheduler.StateIdle) {
		t.Error("unknown source state should have no outgoing transitions")
	}
}
