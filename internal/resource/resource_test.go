package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/serializer"
)

type database struct {
	resource.Base `drft:"-"`
	Engine        string `drft:"engine"`
}

type databaseState struct {
	resource.BaseState `drft:"-"`
	ConnectionURL       string `drft:"connectionUrl"`
}

type webApp struct {
	resource.Base `drft:"-"`
	Image         string `drft:"image"`
}

type webAppState struct {
	resource.BaseState `drft:"-"`
}

func newRegistry() *serializer.Registry {
	reg := serializer.NewRegistry()
	resource.RegisterBuiltins(reg)
	reg.Register("database", database{})
	reg.Register("databaseState", databaseState{})
	reg.Register("webApp", webApp{})
	reg.Register("webAppState", webAppState{})
	return reg
}

func TestEncodeResourceIncludesIdAndDependencies(t *testing.T) {
	reg := newRegistry()

	db := &database{Base: resource.NewBase("db"), Engine: "postgres"}
	web := &webApp{Base: resource.NewBase("web", db), Image: "nginx"}

	enc, err := resource.EncodeResource(reg, web)
	require.NoError(t, err)
	assert.Equal(t, "webApp", enc[".type"])
	assert.Equal(t, "web", enc["id"])
	assert.Equal(t, []any{"db"}, enc["dependencies"])
	assert.Equal(t, "nginx", enc["image"])
}

func TestDecodePersistedStateRewiresDependencies(t *testing.T) {
	reg := newRegistry()

	raw := map[string]any{
		"version": "1.0",
		"stack":   "example",
		"resources": map[string]any{
			"db": map[string]any{
				".type": "databaseState",
				"resource": map[string]any{
					".type":        "database",
					"id":           "db",
					"dependencies": []any{},
					"engine":       "postgres",
				},
				"connectionUrl": "postgres://db",
			},
			"web": map[string]any{
				".type": "webAppState",
				"resource": map[string]any{
					".type":        "webApp",
					"id":           "web",
					"dependencies": []any{"db"},
					"image":        "nginx",
				},
			},
		},
	}

	st, err := resource.DecodePersistedState(reg, raw)
	require.NoError(t, err)
	require.Len(t, st.Resources, 2)

	webState := st.Resources["web"]
	web, ok := webState.StateResource().(*webApp)
	require.True(t, ok)
	require.Len(t, web.Dependencies(), 1)

	dbFromWeb := web.Dependencies()[0]
	assert.Equal(t, "db", dbFromWeb.ResourceID())

	dbState := st.Resources["db"]
	assert.Same(t, dbState.StateResource(), dbFromWeb)
}

func TestDecodePersistedStateFallsBackToGenericState(t *testing.T) {
	reg := newRegistry()

	raw := map[string]any{
		"version": "1.0",
		"stack":   "example",
		"resources": map[string]any{
			"legacy": map[string]any{
				".type": "removedProviderState",
				"resource": map[string]any{
					".type":        "database",
					"id":           "legacy",
					"dependencies": []any{},
					"engine":       "mysql",
				},
			},
		},
	}

	st, err := resource.DecodePersistedState(reg, raw)
	require.NoError(t, err)

	gs, ok := st.Resources["legacy"].(*resource.GenericState)
	require.True(t, ok)
	assert.Equal(t, "legacy", gs.StateResource().ResourceID())
}

func TestEncodeDecodeStateRoundTrip(t *testing.T) {
	reg := newRegistry()

	db := &database{Base: resource.NewBase("db"), Engine: "postgres"}
	dbState := &databaseState{BaseState: resource.NewBaseState(db), ConnectionURL: "postgres://db"}

	st := resource.NewState("example")
	st.Resources["db"] = dbState

	encoded, err := resource.EncodePersistedState(reg, st)
	require.NoError(t, err)

	decoded, err := resource.DecodePersistedState(reg, encoded)
	require.NoError(t, err)

	got, ok := decoded.Resources["db"].(*databaseState)
	require.True(t, ok)
	assert.Equal(t, "postgres://db", got.ConnectionURL)
	assert.Equal(t, "postgres", got.StateResource().(*database).Engine)
}

func TestDependentResourceMaterialize(t *testing.T) {
	db := &database{Base: resource.NewBase("db"), Engine: "postgres"}
	dbState := &databaseState{BaseState: resource.NewBaseState(db), ConnectionURL: "postgres://db"}

	dep := resource.NewDependentResource("web", []resource.Resource{db}, func(states []resource.ResourceState) (resource.Resource, error) {
		conn := states[0].(*databaseState).ConnectionURL
		return &webApp{Base: resource.NewBase("web", db), Image: "nginx:" + conn}, nil
	})

	built, err := dep.Materialize(map[string]resource.ResourceState{"db": dbState})
	require.NoError(t, err)
	assert.Equal(t, "nginx:postgres://db", built.(*webApp).Image)
}

func TestDependentResourceMaterializeMissingDependency(t *testing.T) {
	db := &database{Base: resource.NewBase("db"), Engine: "postgres"}
	dep := resource.NewDependentResource("web", []resource.Resource{db}, func(states []resource.ResourceState) (resource.Resource, error) {
		return nil, nil
	})

	_, err := dep.Materialize(map[string]resource.ResourceState{})
	require.Error(t, err)
}

func TestReadOnlyBaseMarksResourceReadOnly(t *testing.T) {
	r := &database{Base: resource.NewReadOnlyBase("db")}
	assert.True(t, r.IsReadOnly())
}
