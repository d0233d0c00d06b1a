package events

import (
	"time"

	"github.com/harborops/recvplan/core/model"
)

// Event is implemented by every engine event carried on the bus.
type Event interface {
	// EventName identifies the event kind, e.g. for topic routing.
	EventName() string
}

// PlanTransitionEvent is published after a plan changes lifecycle status.
type PlanTransitionEvent struct {
	PlanID   string           `json:"plan_id"`
	PlanCode string           `json:"plan_code"`
	From     model.PlanStatus `json:"from"`
	To       model.PlanStatus `json:"to"`
	At       time.Time        `json:"at"`
}

func (PlanTransitionEvent) EventName() string { return "plan_transition" }

// ContainerActionEvent is published after a container action is applied.
type ContainerActionEvent struct {
	PlanID      string                `json:"plan_id"`
	PlanCode    string                `json:"plan_code"`
	ContainerID string                `json:"container_id"`
	Action      string                `json:"action"`
	Status      model.ContainerStatus `json:"status"`
	At          time.Time             `json:"at"`
}

func (ContainerActionEvent) EventName() string { return "container_action" }
