package hooks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNotASource   = errors.New("hooks: plugin does not expose a handler source")
	ErrTaskConflict = errors.New("hooks: task name bound to another handler")
)

// Dispatch is the result of a matched Execute. A nil *Dispatch means no
// handlers are configured for the envelope's (model, event).
type Dispatch struct {
	Model   string
	Event   string
	Handles []Handle
}

// Route lists the task names bound to one (model, event).
type Route struct {
	Model string   `json:"model"`
	Event string   `json:"event"`
	Tasks []string `json:"tasks"`
}

type Option func(*Registry)

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// Registry is the process-wide dispatch table.
//
// Registration happens at startup; Execute only reads. The lock keeps a late
// RegisterPlugin (tests, reloads) from racing with readers.
type Registry struct {
	backend Backend
	log     *zap.Logger

	mu    sync.RWMutex
	jobs  *table[*Job]
	tasks map[string]Handler
}

func NewRegistry(b Backend, opts ...Option) *Registry {
	r := &Registry{
		backend: b,
		log:     zap.NewNop(),
		jobs:    newTable[*Job](),
		tasks:   map[string]Handler{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register returns a Registrar that binds the handler to the backend before
// storing it. The handler itself is returned untouched. A handler whose name
// is already bound to a different handler is refused and logged.
func (r *Registry) Register(model, event string) Registrar {
	model, event = strings.TrimSpace(model), strings.TrimSpace(event)
	return func(h Handler) Handler {
		if _, err := r.add(model, event, h); err != nil {
			r.log.Error("handler refused", zap.String("model", model), zap.String("event", event), zap.Error(err))
		}
		return h
	}
}

// add stores h under (model, event). Each name resolves to one handler across
// the whole table, since remote workers look jobs up by name alone.
func (r *Registry) add(model, event string, h Handler) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.tasks[h.Name]; ok && !prev.Same(h) {
		return false, fmt.Errorf("%w: %q", ErrTaskConflict, h.Name)
	}
	if !r.jobs.add(model, event, h.Name, &Job{Handler: h, backend: r.backend}) {
		return false, nil
	}
	if _, ok := r.tasks[h.Name]; !ok {
		r.tasks[h.Name] = h
	}
	return true, nil
}

// RegisterPlugin merges a plugin's handlers. p must implement Source; anything
// else, a nil source included, is logged and rejected with ErrNotASource.
// Handlers whose names clash with ones already registered are skipped and
// reported through the joined error; the rest are still merged.
func (r *Registry) RegisterPlugin(p any) (int, error) {
	src, ok := p.(Source)
	if !ok || isNil(src) {
		r.log.Error("plugin has no handler source; skipped", zap.String("type", fmt.Sprintf("%T", p)))
		return 0, ErrNotASource
	}
	added := 0
	var errs []error
	for _, reg := range src.Registrations() {
		ok, err := r.add(reg.Model, reg.Event, reg.Handler)
		if err != nil {
			r.log.Error("plugin handler refused",
				zap.String("plugin", src.Name()),
				zap.String("model", reg.Model),
				zap.String("event", reg.Event),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		if ok {
			added++
		}
	}
	r.log.Info("plugin registered",
		zap.String("plugin", src.Name()),
		zap.Int("handlers", added),
		zap.Int("refused", len(errs)),
	)
	return added, errors.Join(errs...)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Execute submits every job registered for env's (model, event) and returns
// as soon as the backend has acknowledged them. Unknown routes are not an
// error: they return a nil Dispatch.
//
// A failed submission does not stop the others; the returned Dispatch holds
// the handles that were accepted and the error joins the failures.
func (r *Registry) Execute(ctx context.Context, env Envelope) (*Dispatch, error) {
	r.mu.RLock()
	jobs, ok := r.jobs.lookup(env.Model, env.Event)
	r.mu.RUnlock()
	if !ok {
		r.log.Warn("no tasks configured",
			zap.String("model", env.Model),
			zap.String("event", env.Event),
		)
		return nil, nil
	}

	d := &Dispatch{Model: env.Model, Event: env.Event, Handles: make([]Handle, 0, len(jobs))}
	var errs []error
	for _, j := range jobs {
		h, err := j.Delay(ctx, env.Data)
		if err != nil {
			r.log.Error("task submission failed",
				zap.String("task", j.Name),
				zap.String("model", env.Model),
				zap.String("event", env.Event),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("submit %s: %w", j.Name, err))
			continue
		}
		d.Handles = append(d.Handles, h)
	}
	return d, errors.Join(errs...)
}

// Task resolves a handler by name. Remote workers use it to map a job message
// back to code; names are unique across the table, so the answer is the same
// handler the gateway dispatched.
func (r *Registry) Task(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.tasks[name]
	return h, ok
}

// Routes returns the dispatch table sorted by model, event and task name.
func (r *Registry) Routes() []Route {
	idx := map[[2]string][]string{}
	r.mu.RLock()
	r.jobs.each(func(model, event, name string, _ *Job) {
		k := [2]string{model, event}
		idx[k] = append(idx[k], name)
	})
	r.mu.RUnlock()

	out := make([]Route, 0, len(idx))
	for k, names := range idx {
		sort.Strings(names)
		out = append(out, Route{Model: k[0], Event: k[1], Tasks: names})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Model != out[j].Model {
			return out[i].Model < out[j].Model
		}
		return out[i].Event < out[j].Event
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jobs.len()
}
