package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/camera"
	"github.com/sceneit/viewer-relay-go/internal/model"
)

// CameraService turns spoken position requests into moveTo broadcasts.
type CameraService struct {
	hub Broadcaster
}

func NewCameraService(hub Broadcaster) *CameraService {
	return &CameraService{hub: hub}
}

// ExecuteCameraMovement resolves a named preset from any string argument,
// falling back to raw coordinates when all of x, y, z are numeric. An
// unresolvable request produces a failure result and no broadcast.
func (s *CameraService) ExecuteCameraMovement(ctx context.Context, args map[string]any) model.ToolResult {
	// Named positions win over coordinates. Arguments are scanned in
	// sorted key order so repeated calls resolve the same way.
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, ok := args[key].(string)
		if !ok {
			continue
		}
		pos, found := camera.Resolve(name)
		if !found {
			continue
		}

		log.Info().
			Str("position", name).
			Float64("x", pos.X).Float64("y", pos.Y).Float64("z", pos.Z).
			Msg("camera moving to named position")

		s.hub.Broadcast(model.NewCameraCommand(pos.Params()))

		return model.ToolResult{
			Success: true,
			Message: fmt.Sprintf("Camera moved to %s view", name),
		}
	}

	if x, y, z, ok := numericCoordinates(args); ok {
		params := model.CameraParams{X: x, Y: y, Z: z, Target: parseTarget(args["target"])}

		log.Info().
			Float64("x", x).Float64("y", y).Float64("z", z).
			Msg("camera moving to coordinates")

		s.hub.Broadcast(model.NewCameraCommand(params))

		return model.ToolResult{
			Success: true,
			Message: fmt.Sprintf("Camera moved to position %v, %v, %v", x, y, z),
		}
	}

	return model.ToolResult{
		Success: false,
		Message: fmt.Sprintf("Invalid camera position. Available positions: %s",
			strings.Join(camera.PresetNames(), ", ")),
	}
}

// numericCoordinates gates the raw-coordinate path on all three axes being
// present as JSON numbers.
func numericCoordinates(args map[string]any) (x, y, z float64, ok bool) {
	x, xok := args["x"].(float64)
	y, yok := args["y"].(float64)
	z, zok := args["z"].(float64)
	return x, y, z, xok && yok && zok
}

func parseTarget(raw any) model.Vec3 {
	target, ok := raw.(map[string]any)
	if !ok {
		return model.Vec3{}
	}
	x, _ := target["x"].(float64)
	y, _ := target["y"].(float64)
	z, _ := target["z"].(float64)
	return model.Vec3{X: x, Y: y, Z: z}
}
