package plan

import (
	"errors"
	"fmt"

	"github.com/harborops/recvplan/core/events"
	"github.com/harborops/recvplan/core/logger"
	"github.com/harborops/recvplan/core/metrics"
	"github.com/harborops/recvplan/core/model"
	"github.com/harborops/recvplan/core/schedule"
	"github.com/harborops/recvplan/internal/eventbus"
)

// Transition-rule violations. Each reason is a distinct sentinel so callers
// can tell them apart with errors.Is.
var (
	ErrInvalidTransition      = errors.New("transition not allowed from current status")
	ErrNoContainers           = errors.New("plan has no containers assigned")
	ErrPrerequisitesUnmet     = errors.New("equipment booking and port notification are required before start")
	ErrAnotherPlanActive      = errors.New("another plan is already in progress")
	ErrContainersWaiting      = errors.New("containers are still waiting to be processed")
	ErrUnreconciledContainers = errors.New("deferred containers must be resolved before completion")
	ErrPlanStarted            = errors.New("plan can only be deleted before execution starts")
)

// next maps each status to its only legal successor. The lifecycle is
// strictly linear; there is no skip and no way back.
var next = map[model.PlanStatus]model.PlanStatus{
	model.PlanScheduled:  model.PlanInProgress,
	model.PlanInProgress: model.PlanPending,
	model.PlanPending:    model.PlanDone,
}

// Engine applies lifecycle transitions to plans. All rule checks and the
// commit happen against a single repository read, so a transition either
// fully succeeds or leaves the plan untouched.
type Engine struct {
	repo  Repository
	clock schedule.Clock
	log   logger.Logger
	sink  metrics.Sink
	bus   eventbus.Bus
}

// NewEngine creates a lifecycle engine. sink and bus may be nil.
func NewEngine(repo Repository, clock schedule.Clock, log logger.Logger, sink metrics.Sink, bus eventbus.Bus) (*Engine, error) {
	if repo == nil || clock == nil || log == nil {
		return nil, fmt.Errorf("plan: nil parameter provided to NewEngine")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{repo: repo, clock: clock, log: log, sink: sink, bus: bus}, nil
}

// Transition moves the plan identified by planID to target, enforcing the
// rules of each edge. On success the updated plan is returned.
func (e *Engine) Transition(planID string, target model.PlanStatus) (*model.Plan, error) {
	p, err := e.repo.Get(planID)
	if err != nil {
		return nil, err
	}
	if next[p.Status] != target {
		return nil, fmt.Errorf("plan %s: %s -> %s: %w", p.Code, p.Status, target, ErrInvalidTransition)
	}

	now := e.clock.Now()
	from := p.Status

	switch target {
	case model.PlanInProgress:
		if len(p.Containers) == 0 {
			return nil, fmt.Errorf("plan %s: %w", p.Code, ErrNoContainers)
		}
		if !p.EquipmentBooked || !p.PortNotified {
			return nil, fmt.Errorf("plan %s: %w", p.Code, ErrPrerequisitesUnmet)
		}
		if !e.repo.AcquireActive(p.ID) {
			return nil, fmt.Errorf("plan %s: %w", p.Code, ErrAnotherPlanActive)
		}
		p.Status = model.PlanInProgress
		p.ExecutionStart = &now
		if err := e.repo.Save(p); err != nil {
			e.repo.ReleaseActive(p.ID)
			return nil, err
		}

	case model.PlanPending:
		for _, c := range p.Containers {
			if c.Status == model.ContainerWaiting {
				return nil, fmt.Errorf("plan %s: %w", p.Code, ErrContainersWaiting)
			}
		}
		p.Status = model.PlanPending
		if err := e.repo.Save(p); err != nil {
			return nil, err
		}
		e.repo.ReleaseActive(p.ID)

	case model.PlanDone:
		for _, c := range p.Containers {
			if !c.Status.Terminal() {
				return nil, fmt.Errorf("plan %s: %w", p.Code, ErrUnreconciledContainers)
			}
		}
		p.Status = model.PlanDone
		p.ExecutionEnd = &now
		if err := e.repo.Save(p); err != nil {
			return nil, err
		}
	}

	e.log.Infof("plan %s: %s -> %s", p.Code, from, p.Status)
	if err := e.sink.RecordPlanTransition(metrics.PlanTransitionRecord{
		PlanID: p.ID, PlanCode: p.Code, From: from, To: p.Status, Time: now,
	}); err != nil {
		e.log.Warnf("record transition: %v", err)
	}
	if e.bus != nil {
		e.bus.Publish(events.PlanTransitionEvent{
			PlanID: p.ID, PlanCode: p.Code, From: from, To: p.Status, At: now,
		})
	}
	return &p, nil
}

// SetReadiness updates the flags gating the start of execution. Only a
// scheduled plan can be toggled.
func (e *Engine) SetReadiness(planID string, equipmentBooked, portNotified bool) (*model.Plan, error) {
	p, err := e.repo.Get(planID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PlanScheduled {
		return nil, fmt.Errorf("plan %s: %w", p.Code, ErrInvalidTransition)
	}
	p.EquipmentBooked = equipmentBooked
	p.PortNotified = portNotified
	if err := e.repo.Save(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a plan that has not started execution yet.
func (e *Engine) Delete(planID string) error {
	p, err := e.repo.Get(planID)
	if err != nil {
		return err
	}
	if p.Status != model.PlanScheduled {
		return fmt.Errorf("plan %s: %w", p.Code, ErrPlanStarted)
	}
	return e.repo.Delete(planID)
}
