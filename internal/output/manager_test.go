package output

import (
	"errors"
	"strings"
	"testing"
)

type recordingSink struct {
	writes   []Event
	writeErr error
	closeErr error
	closed   bool
}

func (s *recordingSink) Write(e Event) error {
	s.writes = append(s.writes, e)
	return s.writeErr
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.closeErr
}

func TestManager(t *testing.T) {
	t.Run("writes to all sinks", func(t *testing.T) {
		a := &recordingSink{}
		b := &recordingSink{}

		mgr := NewManager()
		if err := mgr.AddSink(a); err != nil {
			t.Fatalf("AddSink(a) error: %v", err)
		}
		if err := mgr.AddSink(b); err != nil {
			t.Fatalf("AddSink(b) error: %v", err)
		}
		if mgr.Len() != 2 {
			t.Fatalf("want 2 sinks, got %d", mgr.Len())
		}

		if err := mgr.Write(Event{Type: EventRunStarted}); err != nil {
			t.Fatalf("Write error: %v", err)
		}
		if err := mgr.Write(Event{Type: EventRunFinished}); err != nil {
			t.Fatalf("Write error: %v", err)
		}
		if err := mgr.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}

		for name, s := range map[string]*recordingSink{"a": a, "b": b} {
			if len(s.writes) != 2 || s.writes[0].Type != EventRunStarted || s.writes[1].Type != EventRunFinished {
				t.Fatalf("sink %s got unexpected writes: %#v", name, s.writes)
			}
			if !s.closed {
				t.Fatalf("sink %s not closed", name)
			}
		}
	})

	t.Run("add nil sink errors", func(t *testing.T) {
		if err := NewManager().AddSink(nil); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("nil manager errors", func(t *testing.T) {
		var mgr *Manager
		if err := mgr.Write(Event{}); err == nil {
			t.Fatalf("expected Write error")
		}
		if err := mgr.Close(); err == nil {
			t.Fatalf("expected Close error")
		}
		if mgr.Len() != 0 {
			t.Fatalf("nil manager should have no sinks")
		}
		mgr.Emit(Event{})
		if mgr.Err() != nil {
			t.Fatalf("nil manager should have no errors")
		}
	})

	t.Run("emit collects errors", func(t *testing.T) {
		a := &recordingSink{writeErr: errors.New("disk full")}
		mgr := NewManager()
		_ = mgr.AddSink(a)

		mgr.Emit(Event{Type: EventRunStarted})
		mgr.Emit(Event{Type: EventRunFinished})

		if len(a.writes) != 2 {
			t.Fatalf("want 2 writes, got %d", len(a.writes))
		}
		err := mgr.Err()
		if err == nil {
			t.Fatalf("expected collected error")
		}
		if !strings.Contains(err.Error(), EventRunStarted) || !strings.Contains(err.Error(), EventRunFinished) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("emit without failures", func(t *testing.T) {
		mgr := NewManager()
		_ = mgr.AddSink(&recordingSink{})
		mgr.Emit(Event{Type: EventRunStarted})
		if err := mgr.Err(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("joins write errors and keeps writing", func(t *testing.T) {
		a := &recordingSink{writeErr: errors.New("a failed")}
		b := &recordingSink{}
		mgr := NewManager()
		_ = mgr.AddSink(a)
		_ = mgr.AddSink(b)

		err := mgr.Write(Event{Type: EventEntryResult})
		if err == nil {
			t.Fatalf("expected error")
		}
		if !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), EventEntryResult) {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(b.writes) != 1 {
			t.Fatalf("second sink should still receive the event")
		}
	})

	t.Run("joins close errors", func(t *testing.T) {
		a := &recordingSink{closeErr: errors.New("close a")}
		b := &recordingSink{closeErr: errors.New("close b")}
		mgr := NewManager()
		_ = mgr.AddSink(a)
		_ = mgr.AddSink(b)

		err := mgr.Close()
		if err == nil {
			t.Fatalf("expected error")
		}
		if !strings.Contains(err.Error(), "close a") || !strings.Contains(err.Error(), "close b") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
