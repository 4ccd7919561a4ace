package domain

import "fmt"

// InvalidURLError is returned when no username can be extracted from a profile URL.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid profile url %q: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("invalid profile url %q: no username in path", e.URL)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// EnumerationError is returned when the repository listing call fails.
// Status is zero when no HTTP response was received.
type EnumerationError struct {
	Username string
	Status   int
	Body     string
	Err      error
}

func (e *EnumerationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to list repositories for %s: %v", e.Username, e.Err)
	}
	return fmt.Sprintf("failed to list repositories for %s: status %d: %s", e.Username, e.Status, e.Body)
}

func (e *EnumerationError) Unwrap() error { return e.Err }
