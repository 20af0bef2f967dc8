// Package llm defines the hosted-model boundary used by the summarizer and
// the decorators shared by every provider.
package llm

import (
	"context"
	"fmt"
)

// Request is one completion call.
type Request struct {
	System      string
	User        string
	Temperature float64
	// SchemaName and Schema describe the JSON object the model must return.
	SchemaName string
	Schema     map[string]any
}

// Model returns the raw text of a single completion.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError is a non-success HTTP answer from a model provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether retrying the call may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 408 || e.StatusCode == 429 || e.StatusCode >= 500
}
