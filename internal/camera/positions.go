package camera

import (
	"sort"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

// Position is a named camera preset: eye coordinates plus look-at target.
type Position struct {
	X      float64
	Y      float64
	Z      float64
	Target model.Vec3
}

// Params converts a preset into the wire payload of a moveTo command.
func (p Position) Params() model.CameraParams {
	return model.CameraParams{X: p.X, Y: p.Y, Z: p.Z, Target: p.Target}
}

var defaultTarget = model.Vec3{X: 0, Y: 0.5, Z: 0}

// presets are fixed at process start and never mutated. The *_view entries
// are aliases the voice agent tends to produce for the plain directions.
var presets = map[string]Position{
	"front":      {X: 0, Y: 2.5, Z: 5, Target: defaultTarget},
	"back":       {X: 0, Y: 2.5, Z: -5, Target: defaultTarget},
	"left":       {X: -5, Y: 2.5, Z: 0, Target: defaultTarget},
	"right":      {X: 5, Y: 2.5, Z: 0, Target: defaultTarget},
	"top":        {X: 0, Y: 7, Z: 0, Target: defaultTarget},
	"bottom":     {X: 0, Y: -3, Z: 0, Target: defaultTarget},
	"front_view": {X: 0, Y: 2.5, Z: 5, Target: defaultTarget},
	"side_view":  {X: 5, Y: 2.5, Z: 0, Target: defaultTarget},
	"top_view":   {X: 0, Y: 7, Z: 0, Target: defaultTarget},
	"isometric":  {X: 3, Y: 5, Z: 3, Target: defaultTarget},
}

// PresetNames returns the preset keys in sorted order, for error messages.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
