package editor

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"resume-builder/internal/shared/telemetry"
)

// PreviewEvent is pushed to subscribers after every change of a session.
type PreviewEvent struct {
	SessionID string `json:"sessionId"`
	Revision  int64  `json:"revision"`
	Template  string `json:"template"`
	HTML      string `json:"html"`
}

// Hub fans preview events out to the subscribers of a session. The
// returned cancel func must be called to release the subscription.
type Hub interface {
	Publish(ctx context.Context, ev PreviewEvent) error
	Subscribe(ctx context.Context, sessionID string) (<-chan PreviewEvent, func(), error)
}

const subscriberBuffer = 8

// MemoryHub is an in-process Hub.
type MemoryHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan PreviewEvent
}

// NewMemoryHub constructs a MemoryHub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[string]map[int]chan PreviewEvent)}
}

// Publish delivers ev to current subscribers without blocking.
func (h *MemoryHub) Publish(_ context.Context, ev PreviewEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[ev.SessionID] {
		offer(ch, ev)
	}
	return nil
}

// offer queues ev on ch. When ch is full the oldest pending event is
// dropped, so a slow subscriber always ends on the latest revision.
// ch must have a single sender.
func offer(ch chan PreviewEvent, ev PreviewEvent) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe registers a subscriber for sessionID.
func (h *MemoryHub) Subscribe(_ context.Context, sessionID string) (<-chan PreviewEvent, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	ch := make(chan PreviewEvent, subscriberBuffer)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan PreviewEvent)
	}
	h.subs[sessionID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[sessionID], id)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// RedisHub publishes preview events on a per-session channel so every
// instance serving a websocket sees them.
type RedisHub struct {
	rdb *redis.Client
}

// NewRedisHub constructs a RedisHub.
func NewRedisHub(rdb *redis.Client) *RedisHub {
	return &RedisHub{rdb: rdb}
}

func previewChannel(sessionID string) string {
	return "session:" + sessionID + ":preview"
}

// Publish sends ev to the session channel.
func (h *RedisHub) Publish(ctx context.Context, ev PreviewEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, previewChannel(ev.SessionID), data).Err()
}

// Subscribe listens on the session channel until cancel or ctx is done.
func (h *RedisHub) Subscribe(ctx context.Context, sessionID string) (<-chan PreviewEvent, func(), error) {
	ctx, stop := context.WithCancel(ctx)
	pubsub := h.rdb.Subscribe(ctx, previewChannel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		stop()
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan PreviewEvent, subscriberBuffer)
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev PreviewEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					telemetry.Warn("preview.decode_failed", map[string]any{"session_id": sessionID, "error": err.Error()})
					continue
				}
				offer(out, ev)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

var (
	_ Hub = (*MemoryHub)(nil)
	_ Hub = (*RedisHub)(nil)
)
