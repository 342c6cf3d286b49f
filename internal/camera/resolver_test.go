package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

func TestResolveExactPresets(t *testing.T) {
	tests := []struct {
		name string
		want Position
	}{
		{"front", Position{X: 0, Y: 2.5, Z: 5, Target: model.Vec3{Y: 0.5}}},
		{"back", Position{X: 0, Y: 2.5, Z: -5, Target: model.Vec3{Y: 0.5}}},
		{"left", Position{X: -5, Y: 2.5, Z: 0, Target: model.Vec3{Y: 0.5}}},
		{"right", Position{X: 5, Y: 2.5, Z: 0, Target: model.Vec3{Y: 0.5}}},
		{"top", Position{X: 0, Y: 7, Z: 0, Target: model.Vec3{Y: 0.5}}},
		{"bottom", Position{X: 0, Y: -3, Z: 0, Target: model.Vec3{Y: 0.5}}},
		{"front_view", Position{X: 0, Y: 2.5, Z: 5, Target: model.Vec3{Y: 0.5}}},
		{"side_view", Position{X: 5, Y: 2.5, Z: 0, Target: model.Vec3{Y: 0.5}}},
		{"top_view", Position{X: 0, Y: 7, Z: 0, Target: model.Vec3{Y: 0.5}}},
		{"isometric", Position{X: 3, Y: 5, Z: 3, Target: model.Vec3{Y: 0.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := Resolve(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, pos)
		})
	}
}

func TestResolveNormalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		wantY float64
	}{
		{"uppercase", "TOP", 7},
		{"mixed case", "Front", 2.5},
		{"surrounding whitespace", "  back  ", 2.5},
		{"spaces become underscores", "side view", 2.5},
		{"multiple spaces", "top   view", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.wantY, pos.Y)
		})
	}
}

func TestResolveFuzzyMatching(t *testing.T) {
	// "overhead top angle" shares the "top" token with the preset.
	pos, ok := Resolve("overhead top angle")
	require.True(t, ok)
	assert.Equal(t, 7.0, pos.Y)

	// "iso" is a substring of "isometric".
	pos, ok = Resolve("iso")
	require.True(t, ok)
	assert.Equal(t, Position{X: 3, Y: 5, Z: 3, Target: model.Vec3{Y: 0.5}}, pos)

	// Hyphenated input splits into matchable tokens.
	pos, ok = Resolve("front-facing")
	require.True(t, ok)
	assert.Equal(t, 5.0, pos.Z)
}

func TestResolveNoMatch(t *testing.T) {
	for _, input := range []string{"", "   ", "sideways diagonal", "xyzzy"} {
		_, ok := Resolve(input)
		assert.False(t, ok, "input %q should not resolve", input)
	}
}

func TestResolveDeterministic(t *testing.T) {
	// Ambiguous inputs must resolve identically on every call.
	first, ok := Resolve("view")
	require.True(t, ok)

	for i := 0; i < 50; i++ {
		pos, ok := Resolve("view")
		require.True(t, ok)
		assert.Equal(t, first, pos)
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	assert.Len(t, names, 10)
	assert.Contains(t, names, "front")
	assert.Contains(t, names, "isometric")

	// Sorted for stable error messages.
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
