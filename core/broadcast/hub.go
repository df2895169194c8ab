// Package broadcast fans relayed conversation output out to a set of
// websocket listeners. The hub is a delivery sink: transcript fragments and
// finished turn audio are pushed to every connected listener, and a listener
// that cannot keep up is dropped rather than allowed to stall the rest.
package broadcast

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const defaultSendBuffer = 32

// frame is one queued websocket message, already encoded.
type frame struct {
	messageType int
	payload     []byte
}

type listener struct {
	id   string
	send chan frame

	closeOnce sync.Once
}

func (l *listener) close() {
	l.closeOnce.Do(func() { close(l.send) })
}

type Hub struct {
	mu        sync.Mutex
	listeners map[string]*listener

	sendBuffer int

	onCountChanged    func(count int)
	onListenerDropped func(id string)
}

type HubOption func(*Hub)

// WithSendBuffer sets how many frames a listener may fall behind before it
// is dropped.
func WithSendBuffer(size int) HubOption {
	return func(h *Hub) { h.sendBuffer = size }
}

// WithListenerCountCallback registers a callback for listener count changes.
func WithListenerCountCallback(callback func(count int)) HubOption {
	return func(h *Hub) { h.onCountChanged = callback }
}

// WithListenerDroppedCallback registers a callback invoked when a listener
// is dropped for falling behind.
func WithListenerDroppedCallback(callback func(id string)) HubOption {
	return func(h *Hub) { h.onListenerDropped = callback }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		listeners:  map[string]*listener{},
		sendBuffer: defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListenerCount returns the number of connected listeners.
func (h *Hub) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// register adds a listener. A listener joining mid-turn sees only what is
// broadcast after this point; there is no backlog replay.
func (h *Hub) register() *listener {
	l := &listener{
		id:   uuid.NewString(),
		send: make(chan frame, h.sendBuffer),
	}

	h.mu.Lock()
	h.listeners[l.id] = l
	count := len(h.listeners)
	h.mu.Unlock()

	h.notifyCount(count)
	return l
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	l, ok := h.listeners[id]
	if ok {
		delete(h.listeners, id)
	}
	count := len(h.listeners)
	h.mu.Unlock()

	if !ok {
		return
	}
	l.close()
	h.notifyCount(count)
}

// broadcast queues a frame on every listener. Listeners with a full send
// buffer are dropped on the spot so one stalled connection cannot hold up
// delivery to the others.
func (h *Hub) broadcast(f frame) {
	h.mu.Lock()
	var dropped []*listener
	for _, l := range h.listeners {
		select {
		case l.send <- f:
		default:
			delete(h.listeners, l.id)
			dropped = append(dropped, l)
		}
	}
	count := len(h.listeners)
	h.mu.Unlock()

	for _, l := range dropped {
		l.close()
		log.Printf("Dropped listener %s: send buffer full", l.id)
		if h.onListenerDropped != nil {
			h.onListenerDropped(l.id)
		}
	}
	if len(dropped) > 0 {
		h.notifyCount(count)
	}
}

func (h *Hub) notifyCount(count int) {
	if h.onCountChanged != nil {
		h.onCountChanged(count)
	}
}

// DeliverPartialText relays a streamed transcript fragment.
func (h *Hub) DeliverPartialText(turnID, text string) error {
	return h.broadcastJSON(TextMessage{Type: MessageTypeText, Text: text})
}

// DeliverFullText relays the final transcript of a completed turn.
func (h *Hub) DeliverFullText(turnID, text string) error {
	return h.broadcastJSON(FullTextMessage{Type: MessageTypeFullText, Text: text})
}

// DeliverTurnAudio relays a finished turn's WAV container as one binary
// websocket frame.
func (h *Hub) DeliverTurnAudio(turnID string, container []byte) error {
	h.broadcast(frame{messageType: websocket.BinaryMessage, payload: container})
	return nil
}

func (h *Hub) broadcastJSON(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast message: %w", err)
	}
	h.broadcast(frame{messageType: websocket.TextMessage, payload: payload})
	return nil
}
