package execution

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harborops/recvplan/core/model"
)

// Action identifies a tally operation on one container of the active plan.
type Action string

const (
	ActionReceive Action = "receive"
	ActionReject  Action = "reject"
	ActionDefer   Action = "defer"
)

var (
	ErrPlanNotActive       = errors.New("plan is not in progress")
	ErrContainerNotFound   = errors.New("container is not assigned to this plan")
	ErrContainerTerminal   = errors.New("container already received or rejected")
	ErrUnknownAction       = errors.New("unknown container action")
	ErrTruckNumberRequired = errors.New("truck number is required for a normal receive")
	ErrUnknownReceiveKind  = errors.New("unknown receive sub-type")
)

// Payload carries the operator input for a container action. Time defaults to
// the engine's clock reading when nil.
type Payload struct {
	Kind        model.ReceiveKind // receive only
	TruckNumber string            // receive only
	Evidence    []string          // receive only; opaque ids from the evidence store
	Notes       string
	Time        *time.Time
}

// Apply executes the action against the container inside the plan, mutating
// both in place. The plan must be in progress.
//
// Re-applying the action a container already carries updates its metadata in
// place; applying a different action to a received or rejected container is
// rejected. Deferred containers stay actionable and may still be received or
// rejected.
func Apply(p *model.Plan, containerID string, act Action, payload Payload, now time.Time) (*model.PlanContainer, error) {
	if p.Status != model.PlanInProgress {
		return nil, fmt.Errorf("plan %s: %w", p.Code, ErrPlanNotActive)
	}
	c := p.Container(containerID)
	if c == nil {
		return nil, fmt.Errorf("plan %s, container %s: %w", p.Code, containerID, ErrContainerNotFound)
	}

	at := now
	if payload.Time != nil {
		at = *payload.Time
	}

	switch act {
	case ActionReceive:
		if c.Status.Terminal() && c.Status != model.ContainerReceived {
			return nil, fmt.Errorf("container %s: %w", c.ContainerRef, ErrContainerTerminal)
		}
		kind := payload.Kind
		if kind == "" {
			kind = model.ReceiveNormal
		}
		if !kind.IsValid() {
			return nil, fmt.Errorf("container %s: %q: %w", c.ContainerRef, payload.Kind, ErrUnknownReceiveKind)
		}
		if kind == model.ReceiveNormal && payload.TruckNumber == "" {
			return nil, fmt.Errorf("container %s: %w", c.ContainerRef, ErrTruckNumberRequired)
		}
		c.Status = model.ContainerReceived
		c.Receive = &model.ReceiveRecord{
			Kind:        kind,
			TruckNumber: payload.TruckNumber,
			Time:        at,
			Evidence:    append([]string(nil), payload.Evidence...),
			Notes:       payload.Notes,
		}
		c.Reject, c.Defer = nil, nil

	case ActionReject:
		if c.Status.Terminal() && c.Status != model.ContainerRejected {
			return nil, fmt.Errorf("container %s: %w", c.ContainerRef, ErrContainerTerminal)
		}
		c.Status = model.ContainerRejected
		c.Reject = &model.RejectRecord{Time: at, Notes: payload.Notes}
		c.Receive, c.Defer = nil, nil

	case ActionDefer:
		if c.Status.Terminal() {
			return nil, fmt.Errorf("container %s: %w", c.ContainerRef, ErrContainerTerminal)
		}
		c.Status = model.ContainerDeferred
		c.Defer = &model.DeferRecord{Time: at, Notes: payload.Notes}
		c.Receive, c.Reject = nil, nil

	default:
		return nil, fmt.Errorf("%q: %w", act, ErrUnknownAction)
	}
	return c, nil
}

// statusRank orders the display groups: processed containers first, still
// waiting ones last.
var statusRank = map[model.ContainerStatus]int{
	model.ContainerReceived: 0,
	model.ContainerRejected: 1,
	model.ContainerDeferred: 2,
	model.ContainerWaiting:  3,
}

// Ordered returns the containers grouped by status (received, rejected,
// deferred, waiting) and, within each group, by most recent action first.
func Ordered(containers []model.PlanContainer) []model.PlanContainer {
	out := make([]model.PlanContainer, len(containers))
	copy(out, containers)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := statusRank[out[i].Status], statusRank[out[j].Status]
		if ri != rj {
			return ri < rj
		}
		return out[i].ActionTime().After(out[j].ActionTime())
	})
	return out
}

// Tally holds the derived completion counters of a plan. Counters are never
// stored; they are recomputed from the container collection on demand.
type Tally struct {
	Waiting  int `json:"waiting"`
	Received int `json:"received"`
	Rejected int `json:"rejected"`
	Deferred int `json:"deferred"`

	// Receive sub-type breakdown.
	Problem  int `json:"problem"`
	Adjusted int `json:"adjusted"`
}

// Count derives the completion counters from the container collection.
func Count(containers []model.PlanContainer) Tally {
	var t Tally
	for _, c := range containers {
		switch c.Status {
		case model.ContainerWaiting:
			t.Waiting++
		case model.ContainerReceived:
			t.Received++
			if c.Receive != nil {
				switch c.Receive.Kind {
				case model.ReceiveProblem:
					t.Problem++
				case model.ReceiveAdjustedDocument:
					t.Adjusted++
				}
			}
		case model.ContainerRejected:
			t.Rejected++
		case model.ContainerDeferred:
			t.Deferred++
		}
	}
	return t
}
