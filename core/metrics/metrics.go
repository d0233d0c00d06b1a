package metrics

import (
	"time"

	"github.com/harborops/recvplan/core/model"
)

// PlanTransitionRecord captures one lifecycle transition for observability.
type PlanTransitionRecord struct {
	PlanID   string
	PlanCode string
	From     model.PlanStatus
	To       model.PlanStatus
	Time     time.Time
}

// ContainerActionRecord captures one container action for observability.
type ContainerActionRecord struct {
	PlanID      string
	ContainerID string
	Action      string
	Status      model.ContainerStatus
	ReceiveKind model.ReceiveKind
	Time        time.Time
}

// ValidationRecord captures the outcome of one plan validation.
type ValidationRecord struct {
	PlanCode string
	Blocked  bool
	Errors   int
	Warnings int
	Duration time.Duration
	Time     time.Time
}

// Sink records engine events for observability purposes.
type Sink interface {
	RecordPlanTransition(rec PlanTransitionRecord) error
	RecordContainerAction(rec ContainerActionRecord) error
	RecordValidation(rec ValidationRecord) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlanTransition(PlanTransitionRecord) error   { return nil }
func (NopSink) RecordContainerAction(ContainerActionRecord) error { return nil }
func (NopSink) RecordValidation(ValidationRecord) error           { return nil }
