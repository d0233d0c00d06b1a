package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/harborops/recvplan/core/model"
)

// Data-integrity failures: the problem is in an existing plan record, not in
// the request being validated. Callers must surface them separately from
// ordinary scheduling conflicts.
var (
	ErrMissingExecutionStart = errors.New("cannot validate: in-progress plan has no execution start")
	ErrNonPositiveDuration   = errors.New("cannot validate: plan has non-positive estimated duration")
)

// Overlaps reports whether the closed intervals [start1, end1] and
// [start2, end2] intersect. A shared boundary counts as overlap: two windows
// touching at a single instant still contend for the same yard resources.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return !start1.After(end2) && !end1.Before(start2)
}

// ParseInstant parses an ISO-8601 timestamp with timezone. Malformed input is
// an error, never a zero-time comparison.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", s, err)
	}
	return t, nil
}

// EffectiveWindow returns the occupancy window of a plan for overlap
// comparison. A scheduled plan occupies its planned window. An in-progress
// plan occupies its estimated duration re-anchored to the actual execution
// start: a late start slides the whole window.
func EffectiveWindow(p model.Plan) (start, end time.Time, err error) {
	if p.Status != model.PlanInProgress {
		return p.PlannedStart, p.PlannedEnd, nil
	}
	if p.ExecutionStart == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("plan %s: %w", p.Code, ErrMissingExecutionStart)
	}
	dur := p.EstimatedDuration()
	if dur <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("plan %s: %w", p.Code, ErrNonPositiveDuration)
	}
	return *p.ExecutionStart, p.ExecutionStart.Add(dur), nil
}

// FindConflict scans existing plans for the first one whose effective window
// overlaps [start, end]. Plans that are pending or done no longer occupy the
// yard and are skipped, as is the plan identified by excludeID (the plan
// being edited). The scan short-circuits on the first match.
func FindConflict(start, end time.Time, existing []model.Plan, excludeID string) (*model.Plan, error) {
	for i := range existing {
		p := existing[i]
		if p.ID == excludeID {
			continue
		}
		if p.Status != model.PlanScheduled && p.Status != model.PlanInProgress {
			continue
		}
		os, oe, err := EffectiveWindow(p)
		if err != nil {
			return nil, err
		}
		if Overlaps(start, end, os, oe) {
			return &p, nil
		}
	}
	return nil, nil
}
