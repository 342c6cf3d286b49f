package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

// State is the receiver's connection lifecycle.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateClosed       State = "closed"
)

const (
	DefaultReconnectDelay       = 3 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultLedgerTTL            = 30 * time.Second

	dialTimeout = 10 * time.Second
)

// CameraController applies a camera move. Moves are instantaneous; any
// animation is the controller's concern.
type CameraController interface {
	MoveTo(position, target model.Vec3)
}

// Cart applies an add-to-cart command to local cart state.
type Cart interface {
	AddItem(item model.CartItem, quantity int)
}

// Options configures a Receiver. Zero values take the defaults above.
type Options struct {
	URL                  string
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	LedgerTTL            time.Duration
}

// Receiver is the client side of the relay: it holds one WebSocket to the
// hub, dispatches incoming commands to the injected camera and cart, and
// reconnects with a fixed delay and attempt cap when the connection drops.
type Receiver struct {
	url         string
	camera      CameraController
	cart        Cart
	ledger      *Ledger
	delay       time.Duration
	maxAttempts int
	dialer      *websocket.Dialer

	mu    sync.Mutex
	state State
	conn  *websocket.Conn

	closeOnce sync.Once
	closed    chan struct{}
}

func NewReceiver(opts Options, camera CameraController, cart Cart) *Receiver {
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	maxAttempts := opts.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxReconnectAttempts
	}
	ledgerTTL := opts.LedgerTTL
	if ledgerTTL <= 0 {
		ledgerTTL = DefaultLedgerTTL
	}

	return &Receiver{
		url:         opts.URL,
		camera:      camera,
		cart:        cart,
		ledger:      NewLedger(ledgerTTL),
		delay:       delay,
		maxAttempts: maxAttempts,
		dialer:      &websocket.Dialer{HandshakeTimeout: dialTimeout},
		state:       StateDisconnected,
		closed:      make(chan struct{}),
	}
}

// State returns the current connection state.
func (r *Receiver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Receiver) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run connects and processes messages until the context is cancelled, the
// receiver is closed, or the reconnect attempts run out. Running out of
// attempts is not an error: the receiver goes silent, matching the relay's
// best-effort delivery.
func (r *Receiver) Run(ctx context.Context) error {
	attempts := 0

	for {
		if r.stopped(ctx) {
			r.setState(StateClosed)
			return ctx.Err()
		}

		r.setState(StateConnecting)
		conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
		if err != nil {
			r.setState(StateDisconnected)
			attempts++
			log.Warn().Err(err).Int("attempt", attempts).Str("url", r.url).Msg("relay dial failed")
			if attempts >= r.maxAttempts {
				log.Info().Int("attempts", attempts).Msg("reconnect attempts exhausted, stopping")
				r.setState(StateClosed)
				return nil
			}
			if !r.wait(ctx) {
				r.setState(StateClosed)
				return ctx.Err()
			}
			continue
		}

		attempts = 0
		r.mu.Lock()
		r.conn = conn
		r.state = StateConnected
		r.mu.Unlock()
		log.Info().Str("url", r.url).Msg("connected to relay")

		err = r.readLoop(conn)
		conn.Close()
		r.mu.Lock()
		r.conn = nil
		r.mu.Unlock()

		if r.stopped(ctx) {
			r.setState(StateClosed)
			return ctx.Err()
		}

		r.setState(StateDisconnected)
		attempts++
		log.Warn().Err(err).Int("attempt", attempts).Msg("relay connection lost")
		if attempts >= r.maxAttempts {
			log.Info().Int("attempts", attempts).Msg("reconnect attempts exhausted, stopping")
			r.setState(StateClosed)
			return nil
		}
		if !r.wait(ctx) {
			r.setState(StateClosed)
			return ctx.Err()
		}
	}
}

func (r *Receiver) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := r.HandleMessage(data); err != nil {
			log.Warn().Err(err).Msg("failed to handle relay message")
		}
	}
}

// envelope peeks at the discriminator before the full decode.
type envelope struct {
	Type string `json:"type"`
}

// HandleMessage dispatches one relay frame. Exported so callers with their
// own transport can feed frames through the same logic.
func (r *Receiver) HandleMessage(data []byte) error {
	r.ledger.Prune()

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode message envelope: %w", err)
	}

	switch env.Type {
	case model.MessageTypeCameraCommand:
		return r.handleCamera(data)
	case model.MessageTypeAddToCart:
		return r.handleCart(data)
	default:
		log.Debug().Str("type", env.Type).Msg("ignoring unknown relay message type")
		return nil
	}
}

func (r *Receiver) handleCamera(data []byte) error {
	var cmd model.CameraCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("decode camera command: %w", err)
	}
	if cmd.Action != model.CameraActionMoveTo {
		log.Debug().Str("action", cmd.Action).Msg("ignoring unknown camera action")
		return nil
	}

	position := model.Vec3{X: cmd.Params.X, Y: cmd.Params.Y, Z: cmd.Params.Z}
	log.Info().
		Float64("x", position.X).Float64("y", position.Y).Float64("z", position.Z).
		Msg("applying camera move")

	r.camera.MoveTo(position, cmd.Params.Target)
	return nil
}

func (r *Receiver) handleCart(data []byte) error {
	var cmd model.CartCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("decode cart command: %w", err)
	}
	if cmd.Action != model.CartActionAddItem {
		log.Debug().Str("action", cmd.Action).Msg("ignoring unknown cart action")
		return nil
	}

	if cmd.GlobalPurchaseID != "" && r.ledger.Seen(cmd.GlobalPurchaseID) {
		log.Info().Str("globalPurchaseId", cmd.GlobalPurchaseID).Msg("duplicate cart command ignored")
		return nil
	}

	log.Info().
		Str("productId", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Str("globalPurchaseId", cmd.GlobalPurchaseID).
		Msg("applying cart command")

	r.cart.AddItem(cmd.CartItem, cmd.Quantity)
	return nil
}

// wait sleeps the fixed reconnect delay, returning false if the receiver
// stopped in the meantime.
func (r *Receiver) wait(ctx context.Context) bool {
	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-r.closed:
		return false
	case <-timer.C:
		return true
	}
}

func (r *Receiver) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}

// Close tears the connection down and stops reconnecting.
func (r *Receiver) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
		r.mu.Lock()
		if r.conn != nil {
			r.conn.Close()
		}
		r.state = StateClosed
		r.mu.Unlock()
	})
}
