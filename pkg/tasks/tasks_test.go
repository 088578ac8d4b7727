package tasks

import (
	"context"
	"testing"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type inline struct{}

func (inline) Submit(ctx context.Context, h hooks.Handler, payload []byte) (hooks.Handle, error) {
	return hooks.Handle{ID: h.Name, Task: h.Name, Backend: "inline"}, h.Run(ctx, payload)
}

func TestRegister_BuiltinsRunOnTenantCreate(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := hooks.NewRegistry(inline{})
	Register(reg, zap.New(core))

	task, ok := reg.Task("create_tenant_2")
	require.True(t, ok)
	assert.Equal(t, "create_tenant_2", task.Name)

	d, err := reg.Execute(context.Background(), hooks.Envelope{
		Model: "tenant",
		Event: "create",
		Data:  []byte(`{"name":"acme"}`),
	})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Len(t, d.Handles, 2)

	created := logs.FilterMessage("tenant created").All()
	require.Len(t, created, 1)
	assert.Equal(t, "acme", created[0].ContextMap()["tenant"])
	assert.Equal(t, 1, logs.FilterMessage("tenant create received").Len())
}
