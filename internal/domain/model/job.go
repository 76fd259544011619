package model

import "context"

// JobKind selects the pipeline a job runs.
type JobKind string

// Job kinds.
const (
	JobBuild JobKind = "build"
	JobMatch JobKind = "match"
)

// Job is one queued request. Ctx carries the caller's deadline and request
// id; Reply is buffered with capacity one.
type Job struct {
	ID     string
	Kind   JobKind
	Prompt string
	Ctx    context.Context //nolint:containedctx // request scope travels with the job
	Reply  chan JobResult
}

// JobResult is what a worker sends back on Job.Reply.
type JobResult struct {
	Value any
	Err   error
}

// NewJob returns a job with a ready reply channel.
func NewJob(ctx context.Context, id string, kind JobKind, prompt string) Job {
	return Job{ID: id, Kind: kind, Prompt: prompt, Ctx: ctx, Reply: make(chan JobResult, 1)}
}

// Respond delivers res without blocking. Only the first response counts.
func (j Job) Respond(res JobResult) {
	if j.Reply == nil {
		return
	}
	select {
	case j.Reply <- res:
	default:
	}
}
