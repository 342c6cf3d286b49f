package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/model"
	"github.com/sceneit/viewer-relay-go/internal/service"
)

// WebhookHandler receives tool-call batches from the voice agent and
// answers synchronously with one result per call.
type WebhookHandler struct {
	dispatcher *service.Dispatcher
}

func NewWebhookHandler(dispatcher *service.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// Webhook handles POST /vapi/webhook. Tool-call batches get a results
// payload; anything else is acknowledged with {received:true} so the agent
// platform's non-tool events never error. Business failures ride inside
// 200 responses; only an uncaught error produces a 500.
func (h *WebhookHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Any("panic", rec).Msg("webhook handler panicked")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Internal server error",
			})
		}
	}()

	var req model.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("unparseable webhook body, acknowledging")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if !req.IsToolCalls() {
		msgType := ""
		if req.Message != nil {
			msgType = req.Message.Type
		}
		log.Debug().Str("type", msgType).Msg("ignoring non-tool-call webhook message")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	log.Info().Int("calls", len(req.Message.ToolCallList)).Msg("received tool-call batch")

	results := h.dispatcher.Dispatch(r.Context(), req.Message.ToolCallList)
	writeJSON(w, http.StatusOK, model.WebhookResponse{Results: results})
}
