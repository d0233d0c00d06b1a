package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/harborops/recvplan/core/metrics"
)

// PromSink records engine events in Prometheus metrics.
type PromSink struct {
	transitions *prometheus.CounterVec
	actions     *prometheus.CounterVec
	validations *prometheus.CounterVec
	valLatency  prometheus.Histogram
}

// NewPromSink registers the engine metrics on the provided registerer. If reg
// is nil, the default registerer is used. Already registered collectors are
// reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_transitions_total",
		Help: "Total number of plan lifecycle transitions",
	}, []string{"from", "to"})
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "container_actions_total",
		Help: "Total number of container actions applied",
	}, []string{"action", "status"})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_validations_total",
		Help: "Total number of plan validations",
	}, []string{"blocked"})
	valLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_validation_duration_seconds",
		Help:    "Duration of plan validation calls",
		Buckets: prometheus.DefBuckets,
	})

	for _, c := range []prometheus.Collector{transitions, actions, validations, valLatency} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{
		transitions: transitions,
		actions:     actions,
		validations: validations,
		valLatency:  valLatency,
	}, nil
}

// RecordPlanTransition increments the transition counter.
func (s *PromSink) RecordPlanTransition(rec coremetrics.PlanTransitionRecord) error {
	s.transitions.WithLabelValues(string(rec.From), string(rec.To)).Inc()
	return nil
}

// RecordContainerAction increments the action counter.
func (s *PromSink) RecordContainerAction(rec coremetrics.ContainerActionRecord) error {
	s.actions.WithLabelValues(rec.Action, string(rec.Status)).Inc()
	return nil
}

// RecordValidation increments the validation counter and observes latency.
func (s *PromSink) RecordValidation(rec coremetrics.ValidationRecord) error {
	s.validations.WithLabelValues(strconv.FormatBool(rec.Blocked)).Inc()
	s.valLatency.Observe(rec.Duration.Seconds())
	return nil
}
