package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborops/recvplan/config"
	"github.com/harborops/recvplan/core/events"
	"github.com/harborops/recvplan/core/execution"
	coremetrics "github.com/harborops/recvplan/core/metrics"
	"github.com/harborops/recvplan/core/model"
	"github.com/harborops/recvplan/core/plan"
	"github.com/harborops/recvplan/core/schedule"
	"github.com/harborops/recvplan/core/validate"
	"github.com/harborops/recvplan/infra/logger"
	"github.com/harborops/recvplan/infra/metrics"
	"github.com/harborops/recvplan/infra/mqtt"
	"github.com/harborops/recvplan/infra/store"
	"github.com/harborops/recvplan/internal/eventbus"
)

// Service is the plan-management surface of the engine. It owns the wiring;
// the core packages own the rules.
type Service struct {
	repo      plan.Repository
	engine    *plan.Engine
	validator *validate.Validator
	clock     schedule.Clock
	sink      coremetrics.Sink
	bus       eventbus.Bus
	notifier  *mqtt.Notifier
	log       logger.Logger

	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration, backed by the in-memory
// store.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	var notifier *mqtt.Notifier
	if cfg.MQTT.Enabled {
		n, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = n
	}

	repo := store.NewMemoryStore()
	clock := schedule.SystemClock{}
	svc, err := NewWithDeps(repo, clock, log, sink, bus)
	if err != nil {
		return nil, err
	}
	svc.notifier = notifier
	svc.promEnabled = cfg.Metrics.PrometheusEnabled
	svc.promAddr = cfg.Metrics.PrometheusAddr
	return svc, nil
}

// NewWithDeps creates a Service from explicit collaborators. Used by tests
// and by callers that bring their own persistence.
func NewWithDeps(repo plan.Repository, clock schedule.Clock, log logger.Logger, sink coremetrics.Sink, bus eventbus.Bus) (*Service, error) {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	engine, err := plan.NewEngine(repo, clock, log, sink, bus)
	if err != nil {
		return nil, err
	}
	validator, err := validate.New(clock, log, sink)
	if err != nil {
		return nil, err
	}
	return &Service{
		repo:      repo,
		engine:    engine,
		validator: validator,
		clock:     clock,
		sink:      sink,
		bus:       bus,
		log:       log,
	}, nil
}

// CreatePlanRequest describes a new receive plan.
type CreatePlanRequest struct {
	Code          string
	Start, End    time.Time
	ContainerRefs []string
	Deadlines     []schedule.ContainerDeadlines
}

// CreatePlan validates the proposal and, when nothing blocks it, persists a
// new scheduled plan. The verdict is returned either way so callers can
// surface warnings after a successful save.
func (s *Service) CreatePlan(req CreatePlanRequest) (*model.Plan, validate.Verdict, error) {
	verdict, err := s.ValidatePlan(validate.Proposal{
		PlanCode:     req.Code,
		Start:        req.Start,
		End:          req.End,
		ContainerIDs: req.ContainerRefs,
		Deadlines:    req.Deadlines,
	})
	if err != nil {
		return nil, verdict, err
	}
	if !verdict.OK() {
		return nil, verdict, nil
	}

	now := s.clock.Now()
	p := model.Plan{
		ID:           uuid.NewString(),
		Code:         req.Code,
		PlannedStart: req.Start,
		PlannedEnd:   req.End,
		Status:       model.PlanScheduled,
		CreatedAt:    now,
	}
	for _, ref := range req.ContainerRefs {
		p.Containers = append(p.Containers, model.PlanContainer{
			ID:           uuid.NewString(),
			ContainerRef: ref,
			Status:       model.ContainerWaiting,
			AssignedAt:   now,
		})
	}
	if err := s.repo.Save(p); err != nil {
		return nil, verdict, err
	}
	s.log.Infof("plan %s created: [%s, %s], %d containers",
		p.Code, p.PlannedStart.Format(time.RFC3339), p.PlannedEnd.Format(time.RFC3339), len(p.Containers))
	return &p, verdict, nil
}

// UpdatePlanWindow re-validates and moves a scheduled plan's window.
func (s *Service) UpdatePlanWindow(planID string, start, end time.Time, deadlines []schedule.ContainerDeadlines) (*model.Plan, validate.Verdict, error) {
	p, err := s.repo.Get(planID)
	if err != nil {
		return nil, validate.Verdict{}, err
	}
	if p.Status != model.PlanScheduled {
		return nil, validate.Verdict{}, fmt.Errorf("plan %s: %w", p.Code, plan.ErrPlanStarted)
	}
	ids := make([]string, len(p.Containers))
	for i, c := range p.Containers {
		ids[i] = c.ContainerRef
	}
	verdict, err := s.ValidatePlan(validate.Proposal{
		PlanID:       p.ID,
		PlanCode:     p.Code,
		Start:        start,
		End:          end,
		ContainerIDs: ids,
		Deadlines:    deadlines,
	})
	if err != nil {
		return nil, verdict, err
	}
	if !verdict.OK() {
		return nil, verdict, nil
	}
	p.PlannedStart, p.PlannedEnd = start, end
	if err := s.repo.Save(p); err != nil {
		return nil, verdict, err
	}
	return &p, verdict, nil
}

// ValidatePlan runs the orchestrated checks against all stored plans.
func (s *Service) ValidatePlan(proposal validate.Proposal) (validate.Verdict, error) {
	existing, err := s.repo.List()
	if err != nil {
		return validate.Verdict{}, err
	}
	return s.validator.Validate(proposal, existing), nil
}

// TransitionPlan applies a lifecycle transition.
func (s *Service) TransitionPlan(planID string, target model.PlanStatus) (*model.Plan, error) {
	return s.engine.Transition(planID, target)
}

// SetReadiness toggles the flags gating the start of execution.
func (s *Service) SetReadiness(planID string, equipmentBooked, portNotified bool) (*model.Plan, error) {
	return s.engine.SetReadiness(planID, equipmentBooked, portNotified)
}

// DeletePlan removes a plan that has not started yet.
func (s *Service) DeletePlan(planID string) error {
	return s.engine.Delete(planID)
}

// ApplyContainerAction executes a receive/reject/defer action on one
// container of the in-progress plan and commits the result.
func (s *Service) ApplyContainerAction(planID, containerID string, act execution.Action, payload execution.Payload) (*model.PlanContainer, error) {
	p, err := s.repo.Get(planID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	c, err := execution.Apply(&p, containerID, act, payload, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(p); err != nil {
		return nil, err
	}

	var kind model.ReceiveKind
	if c.Receive != nil {
		kind = c.Receive.Kind
	}
	if err := s.sink.RecordContainerAction(coremetrics.ContainerActionRecord{
		PlanID:      p.ID,
		ContainerID: c.ID,
		Action:      string(act),
		Status:      c.Status,
		ReceiveKind: kind,
		Time:        now,
	}); err != nil {
		s.log.Warnf("record container action: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(events.ContainerActionEvent{
			PlanID:      p.ID,
			PlanCode:    p.Code,
			ContainerID: c.ID,
			Action:      string(act),
			Status:      c.Status,
			At:          now,
		})
	}
	result := c.Clone()
	return &result, nil
}

// Plans returns all stored plans.
func (s *Service) Plans() ([]model.Plan, error) { return s.repo.List() }

// Repository exposes the underlying store, e.g. for the HTTP read API.
func (s *Service) Repository() plan.Repository { return s.repo }

// Run starts the background parts of the service and blocks until the
// context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.notifier != nil {
		go s.notifier.Run(ctx, s.bus)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bus != nil {
		s.bus.Close()
	}
	if s.notifier != nil {
		s.notifier.Close()
	}
	return nil
}
