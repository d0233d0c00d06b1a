package model

import "time"

// ContainerStatus identifies a container assignment's execution state inside
// a plan.
type ContainerStatus string

const (
	ContainerWaiting  ContainerStatus = "WAITING"
	ContainerReceived ContainerStatus = "RECEIVED"
	ContainerRejected ContainerStatus = "REJECTED"
	ContainerDeferred ContainerStatus = "DEFERRED"

	// Reserved for later execution phases; no current rule produces them.
	ContainerInProgress ContainerStatus = "IN_PROGRESS"
	ContainerOnHold     ContainerStatus = "ON_HOLD"
	ContainerDone       ContainerStatus = "DONE"
)

// Terminal reports whether the status ends the container's execution.
// Deferred containers remain actionable.
func (s ContainerStatus) Terminal() bool {
	return s == ContainerReceived || s == ContainerRejected
}

// ReceiveKind sub-types a receive action.
type ReceiveKind string

const (
	ReceiveNormal           ReceiveKind = "NORMAL"
	ReceiveProblem          ReceiveKind = "PROBLEM"
	ReceiveAdjustedDocument ReceiveKind = "ADJUSTED_DOCUMENT"
)

// IsValid reports whether k is a known receive sub-type.
func (k ReceiveKind) IsValid() bool {
	switch k {
	case ReceiveNormal, ReceiveProblem, ReceiveAdjustedDocument:
		return true
	}
	return false
}

// ReceiveRecord holds the evidence captured when a container is received.
type ReceiveRecord struct {
	Kind        ReceiveKind
	TruckNumber string
	Time        time.Time
	Evidence    []string // opaque document/photo identifiers from the evidence store
	Notes       string
}

// RejectRecord holds the evidence captured when a container is turned away.
type RejectRecord struct {
	Time  time.Time
	Notes string
}

// DeferRecord holds the reason a container was postponed.
type DeferRecord struct {
	Time  time.Time
	Notes string
}

// PlanContainer is one container's presence inside a plan. The underlying
// container record lives in the inventory system; only its reference is kept.
type PlanContainer struct {
	ID           string
	ContainerRef string

	Status     ContainerStatus
	AssignedAt time.Time

	// Exactly one of the following is non-nil at a time, matching Status.
	Receive *ReceiveRecord
	Reject  *RejectRecord
	Defer   *DeferRecord
}

// ActionTime returns the timestamp of the last recorded action, falling back
// to the assignment time when no action has been taken yet.
func (c PlanContainer) ActionTime() time.Time {
	switch {
	case c.Receive != nil:
		return c.Receive.Time
	case c.Reject != nil:
		return c.Reject.Time
	case c.Defer != nil:
		return c.Defer.Time
	}
	return c.AssignedAt
}

// Clone returns a deep copy of the assignment.
func (c PlanContainer) Clone() PlanContainer {
	cp := c
	if c.Receive != nil {
		r := *c.Receive
		r.Evidence = append([]string(nil), c.Receive.Evidence...)
		cp.Receive = &r
	}
	if c.Reject != nil {
		r := *c.Reject
		cp.Reject = &r
	}
	if c.Defer != nil {
		d := *c.Defer
		cp.Defer = &d
	}
	return cp
}
