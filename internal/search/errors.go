package search

import "fmt"

// FetchError reports a failed search request for one query variant.
type FetchError struct {
	Provider   string
	Query      string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s search %q: status %d: %v", e.Provider, e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s search %q: %v", e.Provider, e.Query, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
