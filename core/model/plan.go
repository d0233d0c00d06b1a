package model

import (
	"fmt"
	"time"
)

// PlanStatus identifies a receive plan's position in its lifecycle.
type PlanStatus string

const (
	PlanScheduled  PlanStatus = "SCHEDULED"
	PlanInProgress PlanStatus = "IN_PROGRESS"
	PlanPending    PlanStatus = "PENDING"
	PlanDone       PlanStatus = "DONE"
)

// IsValid reports whether s is one of the known lifecycle statuses.
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanScheduled, PlanInProgress, PlanPending, PlanDone:
		return true
	}
	return false
}

// Plan is a scheduled window during which a set of containers is received
// at the freight station.
type Plan struct {
	ID   string
	Code string // human-readable reference used in operator-facing messages

	PlannedStart time.Time
	PlannedEnd   time.Time

	// Execution timestamps are set by lifecycle transitions, never by callers.
	ExecutionStart *time.Time
	ExecutionEnd   *time.Time

	Status PlanStatus

	// Readiness flags gating the start of execution.
	EquipmentBooked bool
	PortNotified    bool

	Containers []PlanContainer

	CreatedAt time.Time
}

// EstimatedDuration returns the originally planned occupancy duration.
func (p Plan) EstimatedDuration() time.Duration {
	return p.PlannedEnd.Sub(p.PlannedStart)
}

// Container returns a pointer to the container assignment with the given id,
// or nil if the plan does not hold it.
func (p *Plan) Container(id string) *PlanContainer {
	for i := range p.Containers {
		if p.Containers[i].ID == id {
			return &p.Containers[i]
		}
	}
	return nil
}

// Validate checks structural soundness of the plan record itself.
func (p Plan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("plan id is required")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("unknown plan status %q", p.Status)
	}
	if !p.PlannedEnd.After(p.PlannedStart) {
		return fmt.Errorf("plan %s: planned end must be after planned start", p.Code)
	}
	return nil
}

// Clone returns a deep copy so stored plans cannot be mutated through
// previously returned references.
func (p Plan) Clone() Plan {
	cp := p
	if p.ExecutionStart != nil {
		t := *p.ExecutionStart
		cp.ExecutionStart = &t
	}
	if p.ExecutionEnd != nil {
		t := *p.ExecutionEnd
		cp.ExecutionEnd = &t
	}
	cp.Containers = make([]PlanContainer, len(p.Containers))
	for i, c := range p.Containers {
		cp.Containers[i] = c.Clone()
	}
	return cp
}
