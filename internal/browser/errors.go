package browser

import "fmt"

// NavigationError means the job page could not be reached or was blocked.
// Attempt-scoped and retryable.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ElementNotFoundError means a target element never became visible within
// the element wait timeout. Attempt-scoped and retryable.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found: %s", e.Selector)
}
