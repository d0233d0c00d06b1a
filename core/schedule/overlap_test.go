package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/harborops/recvplan/core/model"
)

func ts(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func TestOverlapsBoundaryTouch(t *testing.T) {
	// Shared boundary counts as overlap.
	if !Overlaps(ts(8, 0), ts(12, 0), ts(12, 0), ts(13, 0)) {
		t.Fatalf("touching intervals must overlap")
	}
	if !Overlaps(ts(12, 0), ts(13, 0), ts(8, 0), ts(12, 0)) {
		t.Fatalf("touch overlap must be symmetric")
	}
}

func TestOverlapsDisjoint(t *testing.T) {
	if Overlaps(ts(8, 0), ts(9, 0), ts(9, 1), ts(10, 0)) {
		t.Fatalf("intervals with a gap must not overlap")
	}
	one := time.Second
	if Overlaps(ts(8, 0), ts(12, 0), ts(12, 0).Add(one), ts(13, 0)) {
		t.Fatalf("one second of separation must not overlap")
	}
}

func TestOverlapsContainment(t *testing.T) {
	if !Overlaps(ts(8, 0), ts(12, 0), ts(9, 0), ts(10, 0)) {
		t.Fatalf("contained interval must overlap")
	}
	if !Overlaps(ts(9, 0), ts(10, 0), ts(8, 0), ts(12, 0)) {
		t.Fatalf("containing interval must overlap")
	}
}

func TestParseInstant(t *testing.T) {
	got, err := ParseInstant("2025-03-10T08:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(ts(8, 0)) {
		t.Fatalf("expected %v got %v", ts(8, 0), got)
	}
	if _, err := ParseInstant("2025-03-10 08:00"); err == nil {
		t.Fatalf("malformed timestamp must fail, not compare as zero")
	}
}

func TestEffectiveWindowScheduled(t *testing.T) {
	p := model.Plan{Code: "P1", Status: model.PlanScheduled, PlannedStart: ts(8, 0), PlannedEnd: ts(12, 0)}
	s, e, err := EffectiveWindow(p)
	if err != nil {
		t.Fatalf("effective window: %v", err)
	}
	if !s.Equal(ts(8, 0)) || !e.Equal(ts(12, 0)) {
		t.Fatalf("scheduled plan must occupy its planned window, got [%v, %v]", s, e)
	}
}

func TestEffectiveWindowSlides(t *testing.T) {
	// Planned 08:00-12:00, started 10:00: occupies 10:00-14:00.
	execStart := ts(10, 0)
	p := model.Plan{
		Code:           "P1",
		Status:         model.PlanInProgress,
		PlannedStart:   ts(8, 0),
		PlannedEnd:     ts(12, 0),
		ExecutionStart: &execStart,
	}
	s, e, err := EffectiveWindow(p)
	if err != nil {
		t.Fatalf("effective window: %v", err)
	}
	if !s.Equal(ts(10, 0)) || !e.Equal(ts(14, 0)) {
		t.Fatalf("expected [10:00, 14:00] got [%v, %v]", s, e)
	}
}

func TestEffectiveWindowMissingExecutionStart(t *testing.T) {
	p := model.Plan{Code: "P1", Status: model.PlanInProgress, PlannedStart: ts(8, 0), PlannedEnd: ts(12, 0)}
	if _, _, err := EffectiveWindow(p); !errors.Is(err, ErrMissingExecutionStart) {
		t.Fatalf("expected ErrMissingExecutionStart got %v", err)
	}
}

func TestEffectiveWindowNonPositiveDuration(t *testing.T) {
	execStart := ts(10, 0)
	p := model.Plan{
		Code:           "P1",
		Status:         model.PlanInProgress,
		PlannedStart:   ts(12, 0),
		PlannedEnd:     ts(12, 0),
		ExecutionStart: &execStart,
	}
	if _, _, err := EffectiveWindow(p); !errors.Is(err, ErrNonPositiveDuration) {
		t.Fatalf("expected ErrNonPositiveDuration got %v", err)
	}
}

func TestFindConflictIgnoresSettledPlans(t *testing.T) {
	existing := []model.Plan{
		{ID: "a", Code: "A", Status: model.PlanDone, PlannedStart: ts(8, 0), PlannedEnd: ts(12, 0)},
		{ID: "b", Code: "B", Status: model.PlanPending, PlannedStart: ts(8, 0), PlannedEnd: ts(12, 0)},
	}
	conflict, err := FindConflict(ts(9, 0), ts(10, 0), existing, "")
	if err != nil {
		t.Fatalf("find conflict: %v", err)
	}
	if conflict != nil {
		t.Fatalf("done/pending plans must be ignored, got conflict with %s", conflict.Code)
	}
}

func TestFindConflictAgainstSlidWindow(t *testing.T) {
	execStart := ts(10, 0)
	existing := []model.Plan{{
		ID:             "a",
		Code:           "A",
		Status:         model.PlanInProgress,
		PlannedStart:   ts(8, 0),
		PlannedEnd:     ts(12, 0),
		ExecutionStart: &execStart,
	}}
	// 12:30-13:30 misses the planned window but hits the slid one.
	conflict, err := FindConflict(ts(12, 30), ts(13, 30), existing, "")
	if err != nil {
		t.Fatalf("find conflict: %v", err)
	}
	if conflict == nil || conflict.Code != "A" {
		t.Fatalf("expected conflict with A, got %v", conflict)
	}
}

func TestFindConflictExcludesSelf(t *testing.T) {
	existing := []model.Plan{{ID: "a", Code: "A", Status: model.PlanScheduled, PlannedStart: ts(8, 0), PlannedEnd: ts(12, 0)}}
	conflict, err := FindConflict(ts(9, 0), ts(11, 0), existing, "a")
	if err != nil {
		t.Fatalf("find conflict: %v", err)
	}
	if conflict != nil {
		t.Fatalf("a plan must never conflict with itself")
	}
}

func TestFindConflictPropagatesIntegrityError(t *testing.T) {
	existing := []model.Plan{{ID: "a", Code: "A", Status: model.PlanInProgress, PlannedStart: ts(8, 0), PlannedEnd: ts(12, 0)}}
	// Proposed window is nowhere near the planned one: the scan must still
	// fail rather than silently treating the broken record as "no conflict".
	_, err := FindConflict(ts(20, 0), ts(21, 0), existing, "")
	if !errors.Is(err, ErrMissingExecutionStart) {
		t.Fatalf("expected ErrMissingExecutionStart got %v", err)
	}
}
