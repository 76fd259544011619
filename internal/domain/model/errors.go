package model

import (
	"context"
	"errors"
)

// Sentinel error kinds shared by the pipeline. Wrap with fmt.Errorf("%w: ...").
var (
	// ErrInput marks a request that can never succeed as sent.
	ErrInput = errors.New("invalid input")
	// ErrUpstreamData marks a failed or malformed reference dataset.
	ErrUpstreamData = errors.New("reference data unavailable")
	// ErrOracle marks an unreachable oracle or an unusable oracle answer.
	ErrOracle = errors.New("oracle failure")
	// ErrBackpressure marks a request turned away because every worker is busy.
	ErrBackpressure = errors.New("too many requests in flight")
)

// Failure is the structured error object returned to callers.
type Failure struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// NewFailure converts err into a Failure with a per-kind message.
func NewFailure(err error) Failure {
	if err == nil {
		return Failure{}
	}
	return Failure{Error: failureMessage(err), Details: err.Error()}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return "Prompt is required"
	case errors.Is(err, ErrUpstreamData):
		return "Failed to fetch reference data"
	case errors.Is(err, ErrBackpressure):
		return "Too many requests, try again later"
	case errors.Is(err, ErrOracle):
		return "The build assistant returned an unusable response"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out"
	default:
		return "An error occurred during build creation"
	}
}
