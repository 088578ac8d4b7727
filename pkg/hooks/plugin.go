package hooks

import (
	"sort"
	"strings"
	"sync"
)

// Registration is one (model, event, handler) triple.
type Registration struct {
	Model   string
	Event   string
	Handler Handler
}

// Source is what a plugin must offer the host: its name and the triples it
// accumulated.
type Source interface {
	Name() string
	Registrations() []Registration
}

// PluginRegistry accumulates handlers for one plugin. It is inert until passed
// to Registry.RegisterPlugin.
type PluginRegistry struct {
	name string

	mu    sync.Mutex
	tasks *table[Handler]
}

func NewPluginRegistry(name string) *PluginRegistry {
	return &PluginRegistry{name: name, tasks: newTable[Handler]()}
}

func (p *PluginRegistry) Name() string { return p.name }

// Register returns a Registrar for (model, event).
func (p *PluginRegistry) Register(model, event string) Registrar {
	model, event = strings.TrimSpace(model), strings.TrimSpace(event)
	return func(h Handler) Handler {
		p.mu.Lock()
		p.tasks.add(model, event, h.Name, h)
		p.mu.Unlock()
		return h
	}
}

// Registrations returns every triple, sorted for stable logs.
func (p *PluginRegistry) Registrations() []Registration {
	p.mu.Lock()
	out := make([]Registration, 0, p.tasks.len())
	p.tasks.each(func(model, event, _ string, h Handler) {
		out = append(out, Registration{Model: model, Event: event, Handler: h})
	})
	p.mu.Unlock()
	sortRegistrations(out)
	return out
}

// Len counts the accumulated triples.
func (p *PluginRegistry) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks.len()
}

func sortRegistrations(rs []Registration) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Model != rs[j].Model {
			return rs[i].Model < rs[j].Model
		}
		if rs[i].Event != rs[j].Event {
			return rs[i].Event < rs[j].Event
		}
		return rs[i].Handler.Name < rs[j].Handler.Name
	})
}

var _ Source = (*PluginRegistry)(nil)
