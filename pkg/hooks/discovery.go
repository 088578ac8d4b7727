package hooks

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Report summarizes one discovery pass.
type Report struct {
	Loaded  []string
	Skipped []string
	Entries int
}

// Discover feeds every catalog plugin whose name starts with prefix into reg.
// A plugin whose factory fails, panics, or returns something that is not a
// Source is logged and skipped; the rest still load. Run it once, before the
// registry serves traffic.
func Discover(reg *Registry, cat *Catalog, prefix string, log *zap.Logger) Report {
	if log == nil {
		log = zap.NewNop()
	}
	var rep Report
	for _, name := range cat.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		f, _ := cat.Lookup(name)
		v, err := build(f)
		if err != nil {
			log.Error("plugin import failed; skipped", zap.String("plugin", name), zap.Error(err))
			rep.Skipped = append(rep.Skipped, name)
			continue
		}
		n, err := merge(reg, v)
		if errors.Is(err, ErrNotASource) {
			log.Error("plugin is missing its task registry; skipped", zap.String("plugin", name), zap.Error(err))
			rep.Skipped = append(rep.Skipped, name)
			continue
		}
		if err != nil {
			log.Error("plugin loaded with refused handlers", zap.String("plugin", name), zap.Error(err))
		}
		rep.Loaded = append(rep.Loaded, name)
		rep.Entries += n
	}
	log.Info("plugin discovery finished",
		zap.String("prefix", prefix),
		zap.Strings("loaded", rep.Loaded),
		zap.Strings("skipped", rep.Skipped),
		zap.Int("entries", rep.Entries),
	)
	return rep
}

// merge is RegisterPlugin with a Source that panics treated as no Source.
func merge(reg *Registry, v any) (n int, err error) {
	defer func() {
		if p := recover(); p != nil {
			n, err = 0, fmt.Errorf("%w: registrations panicked: %v", ErrNotASource, p)
		}
	}()
	return reg.RegisterPlugin(v)
}

func build(f Factory) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("factory panicked: %v", p)
		}
	}()
	return f()
}
