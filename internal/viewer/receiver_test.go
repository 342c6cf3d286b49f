package viewer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

type recordingCamera struct {
	mu    sync.Mutex
	moves []model.Vec3
}

func (c *recordingCamera) MoveTo(position, target model.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moves = append(c.moves, position)
}

func (c *recordingCamera) Moves() []model.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Vec3(nil), c.moves...)
}

type recordingCart struct {
	mu    sync.Mutex
	items []model.CartItem
}

func (c *recordingCart) AddItem(item model.CartItem, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

func (c *recordingCart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.CartItem(nil), c.items...)
}

func newTestReceiver(camera CameraController, cart Cart) *Receiver {
	return NewReceiver(Options{URL: "ws://unused"}, camera, cart)
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleCameraCommand(t *testing.T) {
	camera := &recordingCamera{}
	cart := &recordingCart{}
	r := newTestReceiver(camera, cart)

	cmd := model.NewCameraCommand(model.CameraParams{X: 3, Y: 5, Z: 3, Target: model.Vec3{Y: 0.5}})
	require.NoError(t, r.HandleMessage(marshal(t, cmd)))

	moves := camera.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, model.Vec3{X: 3, Y: 5, Z: 3}, moves[0])
	assert.Empty(t, cart.Items())
}

func TestHandleCartCommand(t *testing.T) {
	camera := &recordingCamera{}
	cart := &recordingCart{}
	r := newTestReceiver(camera, cart)

	cmd := model.CartCommand{
		Type:             model.MessageTypeAddToCart,
		Action:           model.CartActionAddItem,
		ProductID:        "ghost-1",
		Quantity:         2,
		CartItem:         model.CartItem{ID: "temp-1", Quantity: 2},
		GlobalPurchaseID: "purchase-ghost-1-2-abc",
	}
	require.NoError(t, r.HandleMessage(marshal(t, cmd)))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "temp-1", items[0].ID)
}

func TestHandleCartCommandDuplicateIgnored(t *testing.T) {
	camera := &recordingCamera{}
	cart := &recordingCart{}
	r := newTestReceiver(camera, cart)

	cmd := model.CartCommand{
		Type:             model.MessageTypeAddToCart,
		Action:           model.CartActionAddItem,
		GlobalPurchaseID: "purchase-once",
	}
	data := marshal(t, cmd)

	require.NoError(t, r.HandleMessage(data))
	require.NoError(t, r.HandleMessage(data))

	assert.Len(t, cart.Items(), 1, "same globalPurchaseId must apply once")
}

func TestHandleUnknownMessageType(t *testing.T) {
	camera := &recordingCamera{}
	cart := &recordingCart{}
	r := newTestReceiver(camera, cart)

	require.NoError(t, r.HandleMessage([]byte(`{"type":"ping"}`)))
	assert.Empty(t, camera.Moves())
	assert.Empty(t, cart.Items())
}

func TestHandleMalformedMessage(t *testing.T) {
	r := newTestReceiver(&recordingCamera{}, &recordingCart{})
	assert.Error(t, r.HandleMessage([]byte("{not json")))
}

func TestLedgerExpiry(t *testing.T) {
	ledger := NewLedger(30 * time.Second)

	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }

	assert.False(t, ledger.Seen("p-1"))
	assert.True(t, ledger.Seen("p-1"))

	// Within the TTL nothing is pruned.
	now = now.Add(10 * time.Second)
	assert.Equal(t, 0, ledger.Prune())
	assert.True(t, ledger.Seen("p-1"))

	// Jump past the TTL; the entry expires.
	now = now.Add(31 * time.Second)
	assert.Equal(t, 1, ledger.Prune())
	assert.Equal(t, 0, ledger.Len())
	assert.False(t, ledger.Seen("p-1"))
}

func TestLedgerPruneOnEveryMessage(t *testing.T) {
	r := newTestReceiver(&recordingCamera{}, &recordingCart{})

	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	r.ledger.now = func() time.Time { return now }

	cmd := model.CartCommand{
		Type:             model.MessageTypeAddToCart,
		Action:           model.CartActionAddItem,
		GlobalPurchaseID: "purchase-old",
	}
	require.NoError(t, r.HandleMessage(marshal(t, cmd)))
	assert.Equal(t, 1, r.ledger.Len())

	// The next message, whatever its type, prunes the expired entry.
	now = now.Add(31 * time.Second)
	require.NoError(t, r.HandleMessage([]byte(`{"type":"ping"}`)))
	assert.Equal(t, 0, r.ledger.Len())
}

func TestReceiverStopsAfterMaxAttempts(t *testing.T) {
	r := NewReceiver(Options{
		URL:                  "ws://127.0.0.1:1", // nothing listens here
		ReconnectDelay:       10 * time.Millisecond,
		MaxReconnectAttempts: 3,
	}, &recordingCamera{}, &recordingCart{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err, "exhausting attempts is a silent stop")
	case <-time.After(5 * time.Second):
		t.Fatal("receiver did not stop after exhausting attempts")
	}

	assert.Equal(t, StateClosed, r.State())
}

func TestReceiverClose(t *testing.T) {
	r := NewReceiver(Options{
		URL:                  "ws://127.0.0.1:1",
		ReconnectDelay:       time.Minute,
		MaxReconnectAttempts: 100,
	}, &recordingCamera{}, &recordingCart{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	r.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("receiver did not stop after Close")
	}

	assert.Equal(t, StateClosed, r.State())
}
