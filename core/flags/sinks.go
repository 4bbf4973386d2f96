package flags

import (
	"context"
	"errors"
	"sync"
)

// NopSink discards every batch.
type NopSink struct{}

func (NopSink) Forward(context.Context, Batch) error { return nil }

// MemorySink keeps every forwarded record in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) Forward(_ context.Context, b Batch) error {
	recs := b.Records()
	m.mu.Lock()
	m.records = append(m.records, recs...)
	m.mu.Unlock()
	return nil
}

// Records returns a copy of the stored records.
func (m *MemorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Query returns the stored records matching q.
func (m *MemorySink) Query(_ context.Context, q Query) ([]Record, error) {
	var out []Record
	for _, r := range m.Records() {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// StoreSink appends every record of a batch to a LogStore.
type StoreSink struct {
	Store LogStore
}

// NewStoreSink wraps store as a Sink.
func NewStoreSink(store LogStore) *StoreSink { return &StoreSink{Store: store} }

func (s *StoreSink) Forward(ctx context.Context, b Batch) error {
	for _, r := range b.Records() {
		if err := s.Store.Append(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying store.
func (s *StoreSink) Close() error { return s.Store.Close() }

// MultiSink forwards batches to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink { return &MultiSink{Sinks: sinks} }

// Forward hands the batch to every sink and joins their errors.
func (m *MultiSink) Forward(ctx context.Context, b Batch) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Forward(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
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
