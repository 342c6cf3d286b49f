package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

func TestDispatchBatchContinuesPastFailures(t *testing.T) {
	d := &Dispatcher{handlers: map[string]ToolHandler{
		"ok": func(ctx context.Context, args map[string]any) model.ToolResult {
			return model.ToolResult{Success: true, Message: "done"}
		},
		"boom": func(ctx context.Context, args map[string]any) model.ToolResult {
			panic("handler exploded")
		},
	}}

	calls := []model.ToolCall{
		{ID: "call-1", Function: model.ToolCallFunction{Name: "ok"}},
		{ID: "call-2", Function: model.ToolCallFunction{Name: "boom"}},
		{ID: "call-3", Function: model.ToolCallFunction{Name: "ok"}},
	}

	results := d.Dispatch(context.Background(), calls)
	require.Len(t, results, 3)

	// Results preserve input order and carry the caller's ids.
	assert.Equal(t, "call-1", results[0].ToolCallID)
	assert.Equal(t, "call-2", results[1].ToolCallID)
	assert.Equal(t, "call-3", results[2].ToolCallID)

	assert.True(t, results[0].Result.Success)
	assert.False(t, results[1].Result.Success)
	assert.Equal(t, "An error occurred while executing boom", results[1].Result.Message)
	assert.True(t, results[2].Result.Success)
}

func TestDispatchUnknownFunction(t *testing.T) {
	d := &Dispatcher{handlers: map[string]ToolHandler{}}

	results := d.Dispatch(context.Background(), []model.ToolCall{
		{ID: "call-1", Function: model.ToolCallFunction{Name: "teleport"}},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Result.Success)
	assert.Equal(t, "Unknown function: teleport", results[0].Result.Message)
}

func TestDispatchSkipsNamelessCalls(t *testing.T) {
	d := &Dispatcher{handlers: map[string]ToolHandler{
		"ok": func(ctx context.Context, args map[string]any) model.ToolResult {
			return model.ToolResult{Success: true, Message: "done"}
		},
	}}

	results := d.Dispatch(context.Background(), []model.ToolCall{
		{ID: "call-1"},
		{ID: "call-2", Function: model.ToolCallFunction{Name: "ok"}},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "call-2", results[0].ToolCallID)
}

func TestDispatchFlatFunctionShape(t *testing.T) {
	var gotArgs map[string]any
	d := &Dispatcher{handlers: map[string]ToolHandler{
		"ok": func(ctx context.Context, args map[string]any) model.ToolResult {
			gotArgs = args
			return model.ToolResult{Success: true, Message: "done"}
		},
	}}

	// Some agent payloads flatten name/arguments onto the call.
	results := d.Dispatch(context.Background(), []model.ToolCall{
		{ID: "call-1", Name: "ok", Arguments: map[string]any{"k": "v"}},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Result.Success)
	assert.Equal(t, map[string]any{"k": "v"}, gotArgs)
}
