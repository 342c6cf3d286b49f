package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

// Broadcaster pushes a command to every connected viewer session.
// Implemented by relay.Hub.
type Broadcaster interface {
	Broadcast(message any)
}

// ToolHandler executes one tool call and reports the outcome. Business
// failures are encoded in the result, never as an error.
type ToolHandler func(ctx context.Context, args map[string]any) model.ToolResult

// Dispatcher routes tool-call batches from the voice-agent webhook to a
// fixed handler registry. Calls are independent: one failure never aborts
// the rest of the batch, and results preserve input order.
type Dispatcher struct {
	handlers map[string]ToolHandler
}

func NewDispatcher(cameraService *CameraService, purchaseService *PurchaseService) *Dispatcher {
	return &Dispatcher{
		handlers: map[string]ToolHandler{
			"executeCameraMovement": cameraService.ExecuteCameraMovement,
			"processPurchase":       purchaseService.ProcessPurchase,
		},
	}
}

// Dispatch runs every call in the batch and returns one result per call,
// tagged with the caller's id. Calls without a function name are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []model.ToolCall) []model.ToolCallResult {
	results := make([]model.ToolCallResult, 0, len(calls))

	for _, call := range calls {
		name := call.FunctionName()
		if name == "" {
			continue
		}

		results = append(results, model.ToolCallResult{
			ToolCallID: call.ID,
			Result:     d.dispatchOne(ctx, name, call.FunctionArguments()),
		})
	}

	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, name string, args map[string]any) (result model.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("function", name).Any("panic", r).Msg("tool handler panicked")
			result = model.ToolResult{
				Success: false,
				Message: fmt.Sprintf("An error occurred while executing %s", name),
			}
		}
	}()

	handler, ok := d.handlers[name]
	if !ok {
		log.Warn().Str("function", name).Msg("unknown tool function")
		return model.ToolResult{
			Success: false,
			Message: fmt.Sprintf("Unknown function: %s", name),
		}
	}

	return handler(ctx, args)
}
