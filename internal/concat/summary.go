package concat

// Summary counts the outcome of a run.
type Summary struct {
	Entries      int
	OK           int
	NotFound     int
	DecodeErrors int
	ReadErrors   int

	// Bytes is the size of the document written.
	Bytes int64
}

func (s *Summary) add(e Entry) {
	s.Entries++
	switch e.Kind {
	case KindOK:
		s.OK++
	case KindNotFound:
		s.NotFound++
	case KindDecodeError:
		s.DecodeErrors++
	default:
		s.ReadErrors++
	}
}

// Failed is the number of entries replaced by a marker.
func (s Summary) Failed() int {
	return s.NotFound + s.DecodeErrors + s.ReadErrors
}

// Partial reports whether at least one entry was replaced by a marker.
func (s Summary) Partial() bool {
	return s.Failed() > 0
}
