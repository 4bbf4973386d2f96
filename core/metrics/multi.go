package metrics

import (
	"errors"

	"github.com/kilianp07/ldarsim/core/events"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTimestep forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTimestep(rec TimestepRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordTimestep(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordReplicate forwards lifecycle events to sinks supporting them.
func (m *MultiSink) RecordReplicate(ev events.ReplicateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ReplicateRecorder); ok {
			if err := rec.RecordReplicate(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink holding resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
