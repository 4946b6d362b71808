package output

import (
	"errors"
	"fmt"
	"sync"
)

// Sink is a destination for run events.
type Sink interface {
	Write(e Event) error
	Close() error
}

// Manager fans events out to every sink. A failing sink never keeps the
// others from receiving the event.
type Manager struct {
	mu    sync.Mutex
	sinks []Sink
	// errs collects failures from Emit.
	errs []error
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	if s == nil {
		return errors.New("sink must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sinks)
}

// Write sends e to every sink and returns their joined errors.
func (m *Manager) Write(e Event) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(e)
}

// Emit is Write for callers that cannot stop on a diagnostics failure, such
// as the concatenation observer. Errors are kept and returned by Err.
func (m *Manager) Emit(e Event) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeLocked(e); err != nil {
		m.errs = append(m.errs, err)
	}
}

// Err returns every error collected by Emit, or nil.
func (m *Manager) Err() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}

func (m *Manager) writeLocked(e Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(e); err != nil {
			errs = append(errs, fmt.Errorf("write %s to %T: %w", e.Type, s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

func (m *Manager) Close() error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
