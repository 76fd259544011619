// Package buildctl submits prompts to a running build server and reports
// the outcome.
package buildctl

import (
	"encoding/json"
	"time"
)

// Endpoints a prompt can be sent to.
const (
	EndpointBuild = "build"
	EndpointMatch = "match"
)

// Config holds the settings of one run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Prompts    []string      // Prompts to submit
	Endpoint   string        // build or match
	Workers    int           // Number of concurrent requests
	Timeout    time.Duration // Per-request timeout
	OutputFile string        // Optional JSON file for the results
	Verbose    bool          // Print full response bodies
}

// Result is the outcome of one prompt.
type Result struct {
	Prompt    string          `json:"prompt"`
	RequestID string          `json:"requestId"`
	Status    int             `json:"status"`
	Name      string          `json:"name,omitempty"`
	Overall   int             `json:"overall,omitempty"`
	Index     *int            `json:"index,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  time.Duration   `json:"durationNs"`
	Body      json.RawMessage `json:"body,omitempty"`
}

// OK reports whether the server answered 200.
func (r Result) OK() bool { return r.Status == statusOK }

// Summary aggregates a run.
type Summary struct {
	Submitted int
	Succeeded int
	Failed    int
	ByStatus  map[int]int
	Duration  time.Duration
	Slowest   time.Duration
}
