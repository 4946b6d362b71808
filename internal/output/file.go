package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Report is the aggregate run report written in json mode.
type Report struct {
	Source        string   `json:"source"`
	Output        string   `json:"output"`
	Entries       []Result `json:"entries"`
	Failed        int      `json:"failed"`
	DocumentBytes int64    `json:"document_bytes"`
	ExitCode      int      `json:"exit_code"`
}

// FileSink writes the run report. In json mode the report is collected in
// memory, written to a temporary file next to path on Close and renamed into
// place, so path never holds half a report. In ndjson mode every event is
// appended to path as it happens.
type FileSink struct {
	path   string
	format string
	file   *os.File
	mu     sync.Mutex
	report Report
	closed bool
}

// ReportFormatFromPath infers the report format from the file extension.
func ReportFormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return "json", nil
	case ".ndjson", ".jsonl":
		return "ndjson", nil
	default:
		return "", fmt.Errorf("cannot infer report format from file extension %q", ext)
	}
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, errors.New("report path required")
	}
	if format == "" {
		f, err := ReportFormatFromPath(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	var (
		f   *os.File
		err error
	)
	switch format {
	case "json":
		f, err = os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	case "ndjson":
		f, err = os.Create(path)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &FileSink{
		path:   path,
		format: format,
		file:   f,
		report: Report{Entries: []Result{}},
	}, nil
}

func (s *FileSink) Write(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("report sink is closed")
	}
	if s.format == "ndjson" {
		return json.NewEncoder(s.file).Encode(e)
	}

	switch e.Type {
	case EventRunStarted:
		s.report.Source = e.Source
		s.report.Output = e.Output
	case EventEntryResult:
		if e.Result != nil {
			s.report.Entries = append(s.report.Entries, *e.Result)
		}
	case EventRunFinished:
		s.report.Failed = e.Failed
		s.report.DocumentBytes = e.DocumentBytes
		s.report.ExitCode = e.ExitCode
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.format == "ndjson" {
		return s.file.Close()
	}

	tmp := s.file.Name()
	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")
	err := enc.Encode(s.report)
	if closeErr := s.file.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, s.path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write report %s: %w", s.path, err)
	}
	return nil
}
