package metrics

import coremetrics "github.com/harborops/recvplan/core/metrics"

// MultiSink fans engine records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlanTransition forwards the record, returning the first error.
func (m *MultiSink) RecordPlanTransition(rec coremetrics.PlanTransitionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlanTransition(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordContainerAction forwards the record, returning the first error.
func (m *MultiSink) RecordContainerAction(rec coremetrics.ContainerActionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordContainerAction(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordValidation forwards the record, returning the first error.
func (m *MultiSink) RecordValidation(rec coremetrics.ValidationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordValidation(rec); err != nil {
			return err
		}
	}
	return nil
}
