package hooks

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a plugin's handler source. Anything that does not implement
// Source is reported at discovery time, not here.
type Factory func() (any, error)

// Catalog lists the plugins linked into the binary. Plugin packages add
// themselves from init(), the same way database/sql drivers do.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewCatalog() *Catalog {
	return &Catalog{factories: map[string]Factory{}}
}

// Provide adds a plugin under name. Duplicate names panic: two packages
// claiming the same plugin name is a build mistake.
func (c *Catalog) Provide(name string, f Factory) {
	name = strings.TrimSpace(name)
	if name == "" || f == nil {
		panic("hooks: plugin name and factory required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.factories[name]; dup {
		panic(fmt.Sprintf("hooks: plugin %q provided twice", name))
	}
	c.factories[name] = f
}

// Names returns plugin names sorted; discovery order carries no meaning.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.factories))
	for n := range c.factories {
		out = append(out, n)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (c *Catalog) Lookup(name string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[name]
	return f, ok
}

var defaultCatalog = NewCatalog()

// Provide adds a plugin to the process catalog.
func Provide(name string, f Factory) { defaultCatalog.Provide(name, f) }

// DefaultCatalog is the catalog Provide writes to.
func DefaultCatalog() *Catalog { return defaultCatalog }
