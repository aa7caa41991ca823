package serializer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drft-io/drft/internal/serializer"
)

type color struct {
	name string
}

func (c color) EnumName() string { return c.name }

var (
	colorRed   = color{"red"}
	colorGreen = color{"green"}
)

type widget struct {
	Name     string            `drft:"name"`
	Size     int               `drft:"size,omitempty"`
	Tags     []string          `drft:"tags,omitempty"`
	Labels   map[string]string `drft:"labels,omitempty"`
	Hue      color             `drft:"hue"`
	Internal string            `drft:"-"`
}

type box struct {
	Name  string  `drft:"name"`
	Inner *widget `drft:"inner,omitempty"`
}

func newRegistry() *serializer.Registry {
	reg := serializer.NewRegistry()
	reg.Register("widget", widget{})
	reg.Register("box", box{})
	reg.RegisterEnum(colorRed, []serializer.Enum{colorRed, colorGreen})
	return reg
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reg := newRegistry()

	w := widget{
		Name:     "gadget",
		Size:     3,
		Tags:     []string{"a", "b"},
		Labels:   map[string]string{"env": "prod"},
		Hue:      colorGreen,
		Internal: "not serialized",
	}

	encoded, err := reg.Encode(w)
	require.NoError(t, err)
	assert.Equal(t, "widget", encoded[".type"])
	assert.Equal(t, "gadget", encoded["name"])
	assert.Equal(t, "green", encoded["hue"])
	assert.NotContains(t, encoded, "internal")

	decoded, err := reg.Decode("widget", encoded, nil)
	require.NoError(t, err)
	got := decoded.(*widget)
	assert.Equal(t, "gadget", got.Name)
	assert.Equal(t, 3, got.Size)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.Equal(t, colorGreen, got.Hue)
	assert.Empty(t, got.Internal)
}

func TestEncodeOmitsZeroOptionalFields(t *testing.T) {
	reg := newRegistry()

	encoded, err := reg.Encode(widget{Name: "bare", Hue: colorRed})
	require.NoError(t, err)
	assert.NotContains(t, encoded, "size")
	assert.NotContains(t, encoded, "tags")
	assert.NotContains(t, encoded, "labels")
}

func TestDecodeMissingRequiredFieldFails(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Decode("widget", map[string]any{".type": "widget"}, nil)
	require.Error(t, err)
	var de *serializer.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "name", de.Field)
}

func TestDecodeUnresolvableTagFails(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Decode("gizmo", map[string]any{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gizmo")
}

func TestNestedPointerFieldRoundTrips(t *testing.T) {
	reg := newRegistry()

	b := box{Name: "outer", Inner: &widget{Name: "inner", Hue: colorRed}}
	encoded, err := reg.Encode(b)
	require.NoError(t, err)

	inner, ok := encoded["inner"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "widget", inner[".type"])

	decoded, err := reg.Decode("box", encoded, nil)
	require.NoError(t, err)
	got := decoded.(*box)
	require.NotNil(t, got.Inner)
	assert.Equal(t, "inner", got.Inner.Name)
}

func TestNestedPointerFieldOmittedWhenNil(t *testing.T) {
	reg := newRegistry()

	encoded, err := reg.Encode(box{Name: "outer"})
	require.NoError(t, err)
	assert.NotContains(t, encoded, "inner")

	decoded, err := reg.Decode("box", encoded, nil)
	require.NoError(t, err)
	got := decoded.(*box)
	assert.Nil(t, got.Inner)
}

func TestCustomCodec(t *testing.T) {
	reg := serializer.NewRegistry()
	type point struct{ X, Y int }
	reg.RegisterCodec(point{}, func(v any) (any, error) {
		p := v.(point)
		return fmt.Sprintf("%d,%d", p.X, p.Y), nil
	}, func(raw any) (any, error) {
		var x, y int
		_, err := fmt.Sscanf(raw.(string), "%d,%d", &x, &y)
		return point{X: x, Y: y}, err
	})

	type shape struct {
		Origin point `drft:"origin"`
	}
	reg.Register("shape", shape{})

	encoded, err := reg.Encode(shape{Origin: point{X: 1, Y: 2}})
	require.NoError(t, err)
	assert.Equal(t, "1,2", encoded["origin"])

	decoded, err := reg.Decode("shape", encoded, nil)
	require.NoError(t, err)
	assert.Equal(t, point{X: 1, Y: 2}, decoded.(*shape).Origin)
}

func TestCycleDetection(t *testing.T) {
	reg := serializer.NewRegistry()
	type node struct {
		Name string `drft:"name"`
		Next *node  `drft:"next,omitempty"`
	}
	reg.Register("node", node{})

	a := &node{Name: "a"}
	b := &node{Name: "b"}
	a.Next = b
	b.Next = a

	_, err := reg.Encode(a)
	require.Error(t, err)
	var ee *serializer.EncodeError
	require.ErrorAs(t, err, &ee)
}

func TestFieldMapperInterceptsLegacyName(t *testing.T) {
	reg := newRegistry()

	raw := map[string]any{".type": "widget", "legacyName": "old-gadget", "hue": "red"}
	mapper := func(field string, v any) (any, bool, error) {
		if field == "name" {
			if legacy, ok := raw["legacyName"]; ok {
				return legacy, true, nil
			}
		}
		return nil, false, nil
	}

	decoded, err := reg.Decode("widget", raw, mapper)
	require.NoError(t, err)
	assert.Equal(t, "old-gadget", decoded.(*widget).Name)
}

func TestInterfaceFieldRequiresTypeTag(t *testing.T) {
	reg := serializer.NewRegistry()
	type labeled interface{ Label() string }
	type box2 struct {
		Item labeled `drft:"item"`
	}
	reg.Register("box2", box2{})

	_, err := reg.Decode("box2", map[string]any{".type": "box2", "item": map[string]any{"x": 1}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".type")
}

func TestEmptyInterfaceFieldPassesThrough(t *testing.T) {
	reg := serializer.NewRegistry()
	type bag struct {
		Attrs map[string]any `drft:"attrs,omitempty"`
	}
	reg.Register("bag", bag{})

	encoded, err := reg.Encode(bag{Attrs: map[string]any{"count": 3, "ok": true}})
	require.NoError(t, err)

	decoded, err := reg.Decode("bag", encoded, nil)
	require.NoError(t, err)
	got := decoded.(*bag)
	assert.EqualValues(t, 3, got.Attrs["count"])
	assert.Equal(t, true, got.Attrs["ok"])
}
