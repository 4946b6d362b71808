package output

import (
	"strings"

	"ctxcat/internal/concat"
)

const (
	EventRunStarted  = "run.started"
	EventEntryResult = "entry.result"
	EventRunFinished = "run.finished"
)

// Result is the machine-readable outcome of one entry.
type Result struct {
	Path     string `json:"path"`
	Status   string `json:"status"`
	Exists   bool   `json:"exists"`
	Encoding string `json:"encoding,omitempty"`
	// Bytes is the size of the decoded content.
	Bytes int `json:"bytes,omitempty"`
	// Message is the marker line written in place of the content.
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Event is a lifecycle record sent to sinks:
// - run.started (Source, Output, Entries planned)
// - entry.result (one per path, in order)
// - run.finished (totals and exit code)
type Event struct {
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
	Output string `json:"output,omitempty"`
	*Result
	Entries       int   `json:"entries,omitempty"`
	Failed        int   `json:"failed,omitempty"`
	DocumentBytes int64 `json:"document_bytes,omitempty"`
	ExitCode      int   `json:"exit_code,omitempty"`
}

// ResultFromEntry converts a concatenation entry.
func ResultFromEntry(e concat.Entry) Result {
	r := Result{
		Path:     e.Path,
		Status:   string(e.Kind),
		Exists:   e.Exists,
		Encoding: e.Encoding,
		Bytes:    len(e.Content),
	}
	if e.Failed() {
		r.Message = strings.TrimSpace(e.Body())
	}
	if e.Err != nil {
		r.Reason = e.Err.Error()
	}
	return r
}

// EntryEvent wraps an entry as an entry.result event.
func EntryEvent(e concat.Entry) Event {
	r := ResultFromEntry(e)
	return Event{Type: EventEntryResult, Result: &r}
}
