package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"ctxcat/internal/concat"

	"github.com/fatih/color"
)

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

// ConsoleSink is the diagnostic stream: one line per failed entry in text
// mode, every event in ndjson mode.
type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "ndjson"
	verbose bool
	mu      sync.Mutex
}

func NewConsoleSink(w io.Writer, format string, verbose bool) *ConsoleSink {
	if w == nil {
		w = os.Stderr
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{writer: w, format: format, verbose: verbose}
}

func (s *ConsoleSink) Write(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "ndjson":
		if err := json.NewEncoder(s.writer).Encode(e); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "text":
		if err := s.writeText(e); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeText(e Event) error {
	switch e.Type {
	case EventRunStarted:
		if !s.verbose {
			return nil
		}
		_, err := fmt.Fprintf(s.writer, "[verbose] concatenating %d entries from %s into %s\n", e.Entries, e.Source, e.Output)
		return err
	case EventEntryResult:
		if e.Result == nil {
			return nil
		}
		r := e.Result
		switch concat.Kind(r.Status) {
		case concat.KindOK:
			if !s.verbose {
				return nil
			}
			_, err := fmt.Fprintf(s.writer, "[verbose] %s (%d bytes)\n", r.Path, r.Bytes)
			return err
		case concat.KindNotFound:
			_, err := warnColor.Fprintf(s.writer, "  Warning: file %s not found, skipping.\n", r.Path)
			return err
		default:
			_, err := errorColor.Fprintf(s.writer, "  %s\n", r.Message)
			return err
		}
	case EventRunFinished:
		if !s.verbose {
			return nil
		}
		_, err := fmt.Fprintf(s.writer, "[verbose] done: %d entries, %d failed, %d bytes written\n", e.Entries, e.Failed, e.DocumentBytes)
		return err
	}
	return nil
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return flushIfPossible(s.writer)
}

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}
