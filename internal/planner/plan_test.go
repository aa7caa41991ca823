package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drft-io/drft/internal/planner"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/serializer"
)

type server struct {
	resource.Base `drft:"-"`
	Name          string `drft:"name"`
}

type serverState struct {
	resource.BaseState `drft:"-"`
}

func newRegistry() *serializer.Registry {
	reg := serializer.NewRegistry()
	resource.RegisterBuiltins(reg)
	reg.Register("server", server{})
	reg.Register("serverState", serverState{})
	return reg
}

func opKinds(p *planner.Plan) []planner.Kind {
	out := make([]planner.Kind, len(p.Operations))
	for i, op := range p.Operations {
		out[i] = op.Kind
	}
	return out
}

func opIDs(p *planner.Plan, kind planner.Kind) []string {
	var out []string
	for _, op := range p.Operations {
		if op.Kind != kind {
			continue
		}
		if kind == planner.Delete {
			out = append(out, op.Current.StateResource().ResourceID())
		} else {
			out = append(out, op.Resource.ResourceID())
		}
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// S1 — create with dependencies.
func TestCreateWithDependencies(t *testing.T) {
	reg := newRegistry()

	db := &server{Base: resource.NewBase("db"), Name: "db"}
	web1 := &server{Base: resource.NewBase("web1", db), Name: "web1"}
	web2 := &server{Base: resource.NewBase("web2", db), Name: "web2"}
	lb := &server{Base: resource.NewBase("lb", web1, web2), Name: "lb"}

	actual := resource.NewState("example")
	p, err := planner.Build(reg, []resource.Resource{db, web1, web2, lb}, actual, false)
	require.NoError(t, err)

	require.Len(t, p.Operations, 4)
	ids := opIDs(p, planner.Create)
	assert.Less(t, indexOf(ids, "db"), indexOf(ids, "web1"))
	assert.Less(t, indexOf(ids, "db"), indexOf(ids, "web2"))
	assert.Less(t, indexOf(ids, "web1"), indexOf(ids, "lb"))
	assert.Less(t, indexOf(ids, "web2"), indexOf(ids, "lb"))
}

// S2 — update detection.
func TestUpdateDetectionWithVerboseDiff(t *testing.T) {
	reg := newRegistry()

	old := &server{Base: resource.NewBase("r"), Name: "old"}
	actual := resource.NewState("example")
	actual.Resources["r"] = &serverState{BaseState: resource.NewBaseState(old)}

	desired := &server{Base: resource.NewBase("r"), Name: "new"}
	p, err := planner.Build(reg, []resource.Resource{desired}, actual, true)
	require.NoError(t, err)

	require.Len(t, p.Operations, 1)
	op := p.Operations[0]
	assert.Equal(t, planner.Update, op.Kind)
	require.Len(t, op.Diffs, 1)
	assert.Equal(t, "name", op.Diffs[0].Field)
	assert.Equal(t, "old", op.Diffs[0].Current)
	assert.Equal(t, "new", op.Diffs[0].Desired)
}

// S3 — delete in reverse order.
func TestDeleteInReverseOrder(t *testing.T) {
	reg := newRegistry()

	a := &server{Base: resource.NewBase("a"), Name: "a"}
	b := &server{Base: resource.NewBase("b", a), Name: "b"}

	actual := resource.NewState("example")
	actual.Resources["a"] = &serverState{BaseState: resource.NewBaseState(a)}
	actual.Resources["b"] = &serverState{BaseState: resource.NewBaseState(b)}

	p, err := planner.Build(reg, nil, actual, false)
	require.NoError(t, err)

	require.Equal(t, []planner.Kind{planner.Delete, planner.Delete}, opKinds(p))
	assert.Equal(t, []string{"b", "a"}, opIDs(p, planner.Delete))
}

// S4 — missing dependency is fatal at plan time.
func TestMissingDependencyIsFatal(t *testing.T) {
	reg := newRegistry()

	missingRef := &server{Base: resource.NewBase("missing"), Name: "missing"}
	r := &server{Base: resource.NewBase("r", missingRef), Name: "r"}
	// Only "r" is passed as desired; "missing" is referenced but never
	// declared as a managed resource in this plan.
	desired := []resource.Resource{r}

	actual := resource.NewState("example")
	_, err := planner.Build(reg, desired, actual, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r")
	assert.Contains(t, err.Error(), "missing")
}

func TestIdempotentWhenActualMatchesDesired(t *testing.T) {
	reg := newRegistry()

	r := &server{Base: resource.NewBase("r"), Name: "same"}
	actual := resource.NewState("example")
	actual.Resources["r"] = &serverState{BaseState: resource.NewBaseState(&server{Base: resource.NewBase("r"), Name: "same"})}

	p, err := planner.Build(reg, []resource.Resource{r}, actual, false)
	require.NoError(t, err)
	assert.Empty(t, p.Operations)
}

func TestReadOnlyResourceNeverEmitsAnOperation(t *testing.T) {
	reg := newRegistry()

	ro := &server{Base: resource.NewReadOnlyBase("observed"), Name: "x"}
	actual := resource.NewState("example")

	p, err := planner.Build(reg, []resource.Resource{ro}, actual, false)
	require.NoError(t, err)
	assert.Empty(t, p.Operations)
}

func TestDependentResourceMaterializesAtPlanTimeWhenDepsReady(t *testing.T) {
	reg := newRegistry()

	db := &server{Base: resource.NewBase("db"), Name: "db"}
	dbState := &serverState{BaseState: resource.NewBaseState(db)}
	actual := resource.NewState("example")
	actual.Resources["db"] = dbState

	dep := resource.NewDependentResource("web", []resource.Resource{db}, func(states []resource.ResourceState) (resource.Resource, error) {
		return &server{Base: resource.NewBase("web", db), Name: "built"}, nil
	})

	p, err := planner.Build(reg, []resource.Resource{db, dep}, actual, false)
	require.NoError(t, err)

	require.Len(t, p.Operations, 1)
	built, ok := p.Operations[0].Resource.(*server)
	require.True(t, ok)
	assert.Equal(t, "built", built.Name)
}

func TestDependentResourceDefersWhenDepsNotYetRealized(t *testing.T) {
	reg := newRegistry()

	db := &server{Base: resource.NewBase("db"), Name: "db"}
	dep := resource.NewDependentResource("web", []resource.Resource{db}, func(states []resource.ResourceState) (resource.Resource, error) {
		return &server{Base: resource.NewBase("web", db), Name: "built"}, nil
	})

	actual := resource.NewState("example")
	p, err := planner.Build(reg, []resource.Resource{db, dep}, actual, false)
	require.NoError(t, err)

	require.Len(t, p.Operations, 2)
	_, isWrapper := p.Operations[1].Resource.(*resource.DependentResource)
	assert.True(t, isWrapper)
}
