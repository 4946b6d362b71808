package concat

import "fmt"

// OutputOpenError is returned when the output document cannot be opened for
// writing. The run is aborted before any section is written.
type OutputOpenError struct {
	Path string
	Err  error
}

func (e *OutputOpenError) Error() string {
	return fmt.Sprintf("cannot open output file %s: %v", e.Path, e.Err)
}

func (e *OutputOpenError) Unwrap() error {
	return e.Err
}
