package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func pluginWith(name string, tasks ...string) Factory {
	return func() (any, error) {
		p := NewPluginRegistry(name)
		for _, t := range tasks {
			p.Register("tenant", "created")(noop(t))
		}
		return p, nil
	}
}

func TestDiscover_SkipsMalformedAndContinues(t *testing.T) {
	cat := NewCatalog()
	cat.Provide("nb_a", pluginWith("a", "a.one"))
	cat.Provide("nb_b", func() (any, error) { return "no registry here", nil })
	cat.Provide("nb_c", pluginWith("c", "c.one", "c.two"))
	cat.Provide("nb_d", func() (any, error) { return nil, errors.New("broken import") })
	cat.Provide("nb_e", func() (any, error) { panic("init blew up") })
	cat.Provide("nb_g", func() (any, error) { return (*PluginRegistry)(nil), nil })
	cat.Provide("nb_h", func() (any, error) { return panickySource{}, nil })
	cat.Provide("other_f", pluginWith("f", "f.one"))

	core, logs := observer.New(zapcore.DebugLevel)
	reg := NewRegistry(&recordingBackend{})
	rep := Discover(reg, cat, "nb_", zap.New(core))

	assert.Equal(t, []string{"nb_a", "nb_c"}, rep.Loaded)
	assert.Equal(t, []string{"nb_b", "nb_d", "nb_e", "nb_g", "nb_h"}, rep.Skipped)
	assert.Equal(t, 3, rep.Entries)
	assert.Equal(t, 3, reg.Len())

	_, ok := reg.Task("f.one")
	assert.False(t, ok, "plugins outside the prefix must not load")

	errs := logs.FilterLevelExact(zapcore.ErrorLevel)
	assert.GreaterOrEqual(t, errs.Len(), 5)
}

type panickySource struct{}

func (panickySource) Name() string                  { return "panicky" }
func (panickySource) Registrations() []Registration { panic("half-built registry") }

func TestDiscover_ClashingPluginLoadsTheRest(t *testing.T) {
	shared := func(name string) Factory {
		return func() (any, error) {
			p := NewPluginRegistry(name)
			p.Register("tenant", "created")(noop("notify"))
			p.Register("tenant", "created")(noop(name + ".own"))
			return p, nil
		}
	}
	cat := NewCatalog()
	cat.Provide("nb_a", shared("a"))
	cat.Provide("nb_b", shared("b"))

	core, logs := observer.New(zapcore.ErrorLevel)
	reg := NewRegistry(&recordingBackend{})
	rep := Discover(reg, cat, "nb_", zap.New(core))

	assert.Equal(t, []string{"nb_a", "nb_b"}, rep.Loaded)
	assert.Empty(t, rep.Skipped)
	assert.Equal(t, 3, rep.Entries)
	assert.Equal(t, 1, logs.FilterMessage("plugin loaded with refused handlers").Len())
}

func TestDiscover_LoadedPluginsDispatch(t *testing.T) {
	cat := NewCatalog()
	cat.Provide("nb_a", pluginWith("a", "a.one"))
	b := &recordingBackend{}
	reg := NewRegistry(b)
	Discover(reg, cat, "nb_", nil)

	d, err := reg.Execute(context.Background(), Envelope{Model: "tenant", Event: "created"})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Len(t, d.Handles, 1)
	assert.Equal(t, 1, b.count())
}

func TestCatalog_ProvideTwicePanics(t *testing.T) {
	cat := NewCatalog()
	cat.Provide("x", pluginWith("x"))
	assert.Panics(t, func() { cat.Provide("x", pluginWith("x")) })
	assert.Panics(t, func() { cat.Provide("", pluginWith("y")) })
}
