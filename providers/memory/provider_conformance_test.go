package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drft-io/drft/internal/errs"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/providers/memory"
)

type thing struct {
	resource.Base `drft:"-"`
	Name          string `drft:"name"`
}

// Create -> Read -> Update -> Read -> Delete -> Read(not found), the
// lifecycle every provider is expected to satisfy.
func TestConformanceFullLifecycle(t *testing.T) {
	ctx := context.Background()
	p := memory.New()

	require.NoError(t, p.Configure(nil))
	require.NoError(t, p.Initialize(ctx))

	r := &thing{Base: resource.NewBase("t1"), Name: "one"}
	assert.True(t, p.CanHandle(r))

	st, err := p.Create(ctx, r)
	require.NoError(t, err)
	assert.Same(t, r, st.StateResource())

	_, err = p.Read(ctx, r)
	require.NoError(t, err)

	updated := &thing{Base: resource.NewBase("t1"), Name: "two"}
	st2, err := p.Update(ctx, st, updated)
	require.NoError(t, err)
	assert.Same(t, updated, st2.StateResource())

	_, err = p.Read(ctx, updated)
	require.NoError(t, err)

	require.NoError(t, p.Delete(ctx, st2))

	_, err = p.Read(ctx, r)
	require.Error(t, err)
	var nf *errs.ResourceNotFoundError
	require.ErrorAs(t, err, &nf)

	require.NoError(t, p.Dispose(ctx))
}
