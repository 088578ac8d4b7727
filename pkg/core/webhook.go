package core

import (
	"io"
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	hmetrics "github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"go.uber.org/zap"
)

// dispatchResult is the acknowledgement sent to the webhook sender.
type dispatchResult struct {
	Model   string         `json:"model"`
	Event   string         `json:"event"`
	Matched bool           `json:"matched"`
	Jobs    []hooks.Handle `json:"jobs"`
	Failed  int            `json:"failed,omitempty"`
}

type webhook struct {
	reg  *hooks.Registry
	keys hooks.EnvelopeKeys
	log  *zap.Logger
}

// ServeHTTP runs after signature verification. It never waits for jobs.
func (h *webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	env, err := hooks.ParseEnvelope(body, h.keys)
	if err != nil {
		h.log.Warn("webhook envelope rejected",
			zap.String("requestId", chimd.GetReqID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	res := dispatchResult{Model: env.Model, Event: env.Event, Jobs: []hooks.Handle{}}
	d, err := h.reg.Execute(r.Context(), env)
	if d == nil && err == nil {
		hmetrics.ObserveDispatch(env.Model, env.Event, hmetrics.OutcomeUnmatched)
		respond(w, res, http.StatusOK)
		return
	}

	res.Matched = true
	if d != nil {
		res.Jobs = append(res.Jobs, d.Handles...)
	}
	if err != nil {
		res.Failed = countJoined(err)
		if len(res.Jobs) == 0 {
			hmetrics.ObserveDispatch(env.Model, env.Event, hmetrics.OutcomeFailed)
			respond(w, res, http.StatusServiceUnavailable)
			return
		}
		hmetrics.ObserveDispatch(env.Model, env.Event, hmetrics.OutcomePartial)
		respond(w, res, http.StatusOK)
		return
	}
	hmetrics.ObserveDispatch(env.Model, env.Event, hmetrics.OutcomeMatched)
	respond(w, res, http.StatusOK)
}

func countJoined(err error) int {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	if err != nil {
		return 1
	}
	return 0
}
