package hooks

import (
	"bytes"
	"context"
)

// Handle acknowledges a submission. It says nothing about the job's outcome.
type Handle struct {
	ID      string `json:"id"`
	Task    string `json:"task"`
	Backend string `json:"backend"`
}

// Backend runs submitted handlers outside the request path.
type Backend interface {
	Submit(ctx context.Context, h Handler, payload []byte) (Handle, error)
}

// Job is a handler bound to the backend that will run it.
type Job struct {
	Handler
	backend Backend
}

// Delay submits the job with its own copy of payload.
func (j *Job) Delay(ctx context.Context, payload []byte) (Handle, error) {
	return j.backend.Submit(ctx, j.Handler, bytes.Clone(payload))
}
