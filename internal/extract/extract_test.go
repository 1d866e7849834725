package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	payload := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": 5,
			},
		},
		"leaf": "value",
	}

	t.Run("resolves nested path", func(t *testing.T) {
		v, ok := Get(payload, "a.b.c")
		require.True(t, ok)
		assert.Equal(t, 5, v)
	})

	t.Run("missing intermediate key is a miss", func(t *testing.T) {
		v, ok := Get(map[string]any{"a": map[string]any{}}, "a.b.c")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("non-map intermediate is a miss", func(t *testing.T) {
		v, ok := Get(payload, "leaf.deeper")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("nil map is a miss", func(t *testing.T) {
		v, ok := Get(nil, "a.b")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("single segment", func(t *testing.T) {
		v, ok := Get(payload, "leaf")
		require.True(t, ok)
		assert.Equal(t, "value", v)
	})
}

func TestGetOr(t *testing.T) {
	payload := map[string]any{"a": map[string]any{"b": 1.5}}

	assert.Equal(t, 1.5, GetOr(payload, "a.b", nil))
	assert.Nil(t, GetOr(payload, "a.missing", nil))
	assert.Equal(t, "fallback", GetOr(payload, "x.y.z", "fallback"))
}

func TestFloat(t *testing.T) {
	payload := map[string]any{
		"metrics": map[string]any{
			"roe":   0.34,
			"count": 7,
			"name":  "apple",
		},
	}

	t.Run("float64 value", func(t *testing.T) {
		f := Float(payload, "metrics.roe")
		require.NotNil(t, f)
		assert.InDelta(t, 0.34, *f, 1e-9)
	})

	t.Run("int converts", func(t *testing.T) {
		f := Float(payload, "metrics.count")
		require.NotNil(t, f)
		assert.Equal(t, 7.0, *f)
	})

	t.Run("non-numeric is nil", func(t *testing.T) {
		assert.Nil(t, Float(payload, "metrics.name"))
	})

	t.Run("missing is nil", func(t *testing.T) {
		assert.Nil(t, Float(payload, "metrics.missing"))
	})
}

func TestString(t *testing.T) {
	payload := map[string]any{"profile": map[string]any{"sector": "Technology", "beta": 1.2}}

	s := String(payload, "profile.sector")
	require.NotNil(t, s)
	assert.Equal(t, "Technology", *s)

	assert.Nil(t, String(payload, "profile.beta"))
	assert.Nil(t, String(payload, "profile.missing"))
}

func TestStrings(t *testing.T) {
	t.Run("json style slice", func(t *testing.T) {
		payload := map[string]any{"drivers": []any{"earnings beat", 42, "guidance raise"}}
		assert.Equal(t, []string{"earnings beat", "guidance raise"}, Strings(payload, "drivers"))
	})

	t.Run("string slice passthrough", func(t *testing.T) {
		payload := map[string]any{"sources": []string{"FMP", "news"}}
		assert.Equal(t, []string{"FMP", "news"}, Strings(payload, "sources"))
	})

	t.Run("missing is nil", func(t *testing.T) {
		assert.Nil(t, Strings(map[string]any{}, "nope"))
	})
}
