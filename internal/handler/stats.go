package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/repository"
)

const recentPurchaseLimit = 20

// ClientCounter reports how many viewer sessions are connected.
// Implemented by relay.Hub.
type ClientCounter interface {
	ClientCount() int
}

// StatsHandler exposes relay operability data: connected viewer count and
// the most recent purchase broadcasts.
type StatsHandler struct {
	counter   ClientCounter
	eventRepo repository.PurchaseEventRepository
}

func NewStatsHandler(counter ClientCounter, eventRepo repository.PurchaseEventRepository) *StatsHandler {
	return &StatsHandler{counter: counter, eventRepo: eventRepo}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"clientCount": h.counter.ClientCount(),
		"timestamp":   time.Now().UnixMilli(),
	}

	if h.eventRepo != nil {
		events, err := h.eventRepo.FindRecent(r.Context(), recentPurchaseLimit)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load recent purchase events")
		} else {
			recent := make([]map[string]any, 0, len(events))
			for _, event := range events {
				recent = append(recent, map[string]any{
					"productId":        event.ProductID,
					"variantId":        event.VariantID,
					"quantity":         event.Quantity,
					"globalPurchaseId": event.GlobalPurchaseID,
					"createdAt":        event.CreatedAt.Format(time.RFC3339),
				})
			}
			stats["recentPurchases"] = recent
		}
	}

	writeJSON(w, http.StatusOK, stats)
}
