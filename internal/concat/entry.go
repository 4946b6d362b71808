package concat

import "fmt"

// Kind classifies the outcome of reading one path list entry.
type Kind string

const (
	KindOK          Kind = "OK"
	KindNotFound    Kind = "NOT_FOUND"
	KindDecodeError Kind = "DECODE_ERROR"
	KindReadError   Kind = "READ_ERROR"
)

const (
	headerFormat = "--- File: %s ---\n"
	separator    = "\n\n"

	// NotFoundMarker replaces the content of a path that does not exist.
	NotFoundMarker = "[!] File not found.\n"
)

// Entry is the result of the read-or-report step for one path. It lives for a
// single iteration and is handed to the observer after its section is written.
type Entry struct {
	Path   string
	Exists bool
	Kind   Kind

	// Content is the decoded text. Only set when Kind is KindOK.
	Content string

	// Encoding is the encoding the entry was decoded with.
	Encoding string

	// Err is the underlying failure for KindDecodeError and KindReadError.
	Err error
}

// Header returns the section header line.
func (e Entry) Header() string {
	return fmt.Sprintf(headerFormat, e.Path)
}

// Body returns what goes between the header and the separator: the content,
// newline-terminated, or a single marker line.
func (e Entry) Body() string {
	switch e.Kind {
	case KindOK:
		if len(e.Content) == 0 || e.Content[len(e.Content)-1] != '\n' {
			return e.Content + "\n"
		}
		return e.Content
	case KindNotFound:
		return NotFoundMarker
	case KindDecodeError:
		return fmt.Sprintf("[!] ERROR: Could not read file %s with encoding %s. Try another encoding or check the file.\n", e.Path, e.Encoding)
	default:
		return fmt.Sprintf("[!] ERROR: Could not read file %s. Reason: %v\n", e.Path, e.Err)
	}
}

// Section returns the full section: header, body and separator.
func (e Entry) Section() string {
	return e.Header() + e.Body() + separator
}

// Failed reports whether a marker replaced the content.
func (e Entry) Failed() bool {
	return e.Kind != KindOK
}

// Message is a one-line human description of a failed entry, empty for
// successful ones.
func (e Entry) Message() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("file %s not found, skipping", e.Path)
	case KindDecodeError:
		return fmt.Sprintf("could not decode %s as %s: %v", e.Path, e.Encoding, e.Err)
	case KindReadError:
		return fmt.Sprintf("could not read %s: %v", e.Path, e.Err)
	default:
		return ""
	}
}
