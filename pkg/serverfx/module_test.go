package serverfx

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/joeydtaylor/steeze-hooks/pkg/backend"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestProvideBackend_InprocFollowsLifecycle(t *testing.T) {
	m := manifest.Default()
	lc := fxtest.NewLifecycle(t)

	b, err := provideBackend(lc, m, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &backend.Pool{}, b)

	lc.RequireStart()
	done := make(chan struct{})
	_, err = b.Submit(context.Background(), hooks.NewHandler("t", func(context.Context, json.RawMessage) error {
		close(done)
		return nil
	}), nil)
	require.NoError(t, err)
	<-done
	lc.RequireStop()

	_, err = b.Submit(context.Background(), hooks.NewHandler("t", nil), nil)
	assert.ErrorIs(t, err, backend.ErrClosed)
}

func TestProvideBackend_RelayNeedsTargets(t *testing.T) {
	m := manifest.Default()
	m.Backend.Kind = manifest.BackendRelay
	_, err := provideBackend(fxtest.NewLifecycle(t), m, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideRegistry_BuiltinsToggle(t *testing.T) {
	m := manifest.Default()
	reg := ProvideRegistry(m, backend.NewPool(backend.PoolConfig{}, nil), zap.NewNop())
	_, ok := reg.Task("create_tenant")
	assert.True(t, ok)

	m.Hooks.Builtin = false
	reg = ProvideRegistry(m, backend.NewPool(backend.PoolConfig{}, nil), zap.NewNop())
	_, ok = reg.Task("create_tenant")
	assert.False(t, ok)
}
