package validate

import (
	"fmt"
	"time"

	"github.com/harborops/recvplan/core/logger"
	"github.com/harborops/recvplan/core/metrics"
	"github.com/harborops/recvplan/core/model"
	"github.com/harborops/recvplan/core/schedule"
)

// Code categorizes a blocking validation error. Data-integrity failures get
// their own category so operators know the problem is in existing records,
// not in the request.
type Code string

const (
	CodeEndBeforeStart Code = "end_before_start"
	CodeStartInPast    Code = "start_in_past"
	CodeNoContainers   Code = "no_containers"
	CodeOverlap        Code = "overlap"
	CodeDataIntegrity  Code = "data_integrity"
)

// Error is one blocking validation failure.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string { return string(e.Code) + ": " + e.Message }

// Verdict is the aggregate outcome of validating a proposed plan window.
// Errors block the save; warnings are advisory and never do.
type Verdict struct {
	Errors   []Error  `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the proposal may be saved.
func (v Verdict) OK() bool { return len(v.Errors) == 0 }

// Proposal describes a plan window being created or edited.
type Proposal struct {
	// PlanID is set when editing so the plan never conflicts with itself.
	PlanID   string
	PlanCode string

	Start time.Time
	End   time.Time

	ContainerIDs []string

	// Deadlines of the selected containers, as reported by the inventory
	// collaborator. Used only for advisory warnings.
	Deadlines []schedule.ContainerDeadlines
}

// Validator composes the window sanity rules, the overlap scan and the
// container-count rule into a single verdict.
type Validator struct {
	clock schedule.Clock
	log   logger.Logger
	sink  metrics.Sink
}

// New creates a Validator. sink may be nil.
func New(clock schedule.Clock, log logger.Logger, sink metrics.Sink) (*Validator, error) {
	if clock == nil || log == nil {
		return nil, fmt.Errorf("validate: nil parameter provided to New")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Validator{clock: clock, log: log, sink: sink}, nil
}

// Validate checks the proposal against the existing plans and returns the
// full set of blocking errors plus any deadline warnings. The current instant
// is read once and reused for every check.
func (v *Validator) Validate(p Proposal, existing []model.Plan) Verdict {
	started := time.Now()
	now := v.clock.Now()
	var out Verdict

	if !p.End.After(p.Start) {
		out.Errors = append(out.Errors, Error{
			Code:    CodeEndBeforeStart,
			Message: "planned end must be after planned start",
		})
	}
	// Minute granularity on both sides: a start within the current minute is
	// still acceptable.
	if p.Start.Truncate(time.Minute).Before(now.Truncate(time.Minute)) {
		out.Errors = append(out.Errors, Error{
			Code:    CodeStartInPast,
			Message: "planned start must not be in the past",
		})
	}
	if len(p.ContainerIDs) == 0 {
		out.Errors = append(out.Errors, Error{
			Code:    CodeNoContainers,
			Message: "at least one container must be selected",
		})
	}

	conflict, err := schedule.FindConflict(p.Start, p.End, existing, p.PlanID)
	switch {
	case err != nil:
		out.Errors = append(out.Errors, Error{Code: CodeDataIntegrity, Message: err.Error()})
	case conflict != nil:
		out.Errors = append(out.Errors, Error{
			Code:    CodeOverlap,
			Message: fmt.Sprintf("window overlaps with existing plan %s", conflict.Code),
		})
	}

	out.Warnings = schedule.DeadlineWarnings(p.End, p.Deadlines)

	if !out.OK() {
		v.log.Debugw("plan validation blocked", map[string]any{
			"plan_code": p.PlanCode,
			"errors":    len(out.Errors),
			"warnings":  len(out.Warnings),
		})
	}
	if err := v.sink.RecordValidation(metrics.ValidationRecord{
		PlanCode: p.PlanCode,
		Blocked:  !out.OK(),
		Errors:   len(out.Errors),
		Warnings: len(out.Warnings),
		Duration: time.Since(started),
		Time:     now,
	}); err != nil {
		v.log.Warnf("record validation: %v", err)
	}
	return out
}
