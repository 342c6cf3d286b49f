package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

type mockBroadcaster struct {
	mu       sync.Mutex
	messages []any
}

func (m *mockBroadcaster) Broadcast(message any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

func (m *mockBroadcaster) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.messages...)
}

func TestExecuteCameraMovementNamedPosition(t *testing.T) {
	hub := &mockBroadcaster{}
	svc := NewCameraService(hub)

	result := svc.ExecuteCameraMovement(context.Background(), map[string]any{"position": "top"})

	assert.True(t, result.Success)
	assert.Equal(t, "Camera moved to top view", result.Message)

	messages := hub.Messages()
	require.Len(t, messages, 1)

	cmd, ok := messages[0].(model.CameraCommand)
	require.True(t, ok)
	assert.Equal(t, model.MessageTypeCameraCommand, cmd.Type)
	assert.Equal(t, model.CameraActionMoveTo, cmd.Action)
	assert.Equal(t, model.CameraParams{X: 0, Y: 7, Z: 0, Target: model.Vec3{Y: 0.5}}, cmd.Params)
}

func TestExecuteCameraMovementFuzzyName(t *testing.T) {
	hub := &mockBroadcaster{}
	svc := NewCameraService(hub)

	result := svc.ExecuteCameraMovement(context.Background(), map[string]any{"view": "Side View"})

	assert.True(t, result.Success)
	assert.Len(t, hub.Messages(), 1)
}

func TestExecuteCameraMovementCoordinates(t *testing.T) {
	hub := &mockBroadcaster{}
	svc := NewCameraService(hub)

	result := svc.ExecuteCameraMovement(context.Background(), map[string]any{
		"x": 1.0, "y": 2.0, "z": 3.0,
		"target": map[string]any{"x": 0.0, "y": 1.0, "z": 0.0},
	})

	assert.True(t, result.Success)
	assert.Equal(t, "Camera moved to position 1, 2, 3", result.Message)

	messages := hub.Messages()
	require.Len(t, messages, 1)

	cmd := messages[0].(model.CameraCommand)
	assert.Equal(t, model.CameraParams{X: 1, Y: 2, Z: 3, Target: model.Vec3{Y: 1}}, cmd.Params)
}

func TestExecuteCameraMovementPartialCoordinates(t *testing.T) {
	hub := &mockBroadcaster{}
	svc := NewCameraService(hub)

	// Missing z: neither a named position nor full coordinates.
	result := svc.ExecuteCameraMovement(context.Background(), map[string]any{"x": 1.0, "y": 2.0})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Invalid camera position")
	assert.Empty(t, hub.Messages())
}

func TestExecuteCameraMovementInvalidPosition(t *testing.T) {
	hub := &mockBroadcaster{}
	svc := NewCameraService(hub)

	result := svc.ExecuteCameraMovement(context.Background(), map[string]any{"position": "underneath the rug"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Available positions:")
	assert.Contains(t, result.Message, "isometric")
	assert.Empty(t, hub.Messages(), "failed resolution must not broadcast")
}
