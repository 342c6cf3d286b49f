package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/model"
	"github.com/sceneit/viewer-relay-go/internal/viewer"
)

// logCamera logs camera moves instead of driving a 3D scene.
type logCamera struct{}

func (logCamera) MoveTo(position, target model.Vec3) {
	log.Info().
		Float64("x", position.X).Float64("y", position.Y).Float64("z", position.Z).
		Float64("targetX", target.X).Float64("targetY", target.Y).Float64("targetZ", target.Z).
		Msg("camera moved")
}

// logCart logs cart additions.
type logCart struct{}

func (logCart) AddItem(item model.CartItem, quantity int) {
	log.Info().
		Str("title", item.Merchandise.Title).
		Str("variantId", item.Merchandise.ID).
		Int("quantity", quantity).
		Str("amount", item.Cost.TotalAmount.Amount).
		Msg("item added to cart")
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	url := flag.String("url", "ws://localhost:8081/", "relay websocket url")
	delay := flag.Duration("reconnect-delay", viewer.DefaultReconnectDelay, "delay between reconnect attempts")
	attempts := flag.Int("reconnect-attempts", viewer.DefaultMaxReconnectAttempts, "max reconnect attempts")
	ledgerTTL := flag.Duration("ledger-ttl", viewer.DefaultLedgerTTL, "purchase idempotency ledger TTL")
	flag.Parse()

	receiver := viewer.NewReceiver(viewer.Options{
		URL:                  *url,
		ReconnectDelay:       *delay,
		MaxReconnectAttempts: *attempts,
		LedgerTTL:            *ledgerTTL,
	}, logCamera{}, logCart{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down viewer")
		receiver.Close()
		cancel()
	}()

	if err := receiver.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("viewer stopped with error")
		os.Exit(1)
	}

	// Give the close handshake a moment before exiting.
	time.Sleep(100 * time.Millisecond)
	log.Info().Msg("viewer stopped")
}
