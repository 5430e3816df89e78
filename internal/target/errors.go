package target

import "fmt"

// ConnectionError reports that the display connection could not be opened.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to open display connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ResolutionError reports that no window in the hierarchy carries the
// requested title.
type ResolutionError struct {
	Title string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no window found with title %q", e.Title)
}
