package broadcast

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
)

func drain(l *listener) []frame {
	var frames []frame
	for {
		select {
		case f, ok := <-l.send:
			if !ok {
				return frames
			}
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestBroadcastReachesEveryListener(t *testing.T) {
	hub := NewHub()
	first := hub.register()
	second := hub.register()

	if err := hub.DeliverPartialText("turn_1", "hi"); err != nil {
		t.Fatalf("failed to broadcast partial text: %v", err)
	}

	for _, l := range []*listener{first, second} {
		frames := drain(l)
		if len(frames) != 1 {
			t.Fatalf("expected one frame, got %d", len(frames))
		}
		var msg TextMessage
		if err := json.Unmarshal(frames[0].payload, &msg); err != nil {
			t.Fatalf("failed to decode broadcast frame: %v", err)
		}
		if msg.Type != MessageTypeText || msg.Text != "hi" {
			t.Fatalf("expected text message with hi, got %+v", msg)
		}
	}
}

func TestSlowListenerIsDroppedWithoutBlockingOthers(t *testing.T) {
	var droppedID string
	hub := NewHub(
		WithSendBuffer(1),
		WithListenerDroppedCallback(func(id string) { droppedID = id }),
	)
	slow := hub.register()
	healthy := hub.register()

	// First delivery fills the slow listener's buffer, second overflows it.
	if err := hub.DeliverPartialText("turn_1", "one"); err != nil {
		t.Fatalf("failed to broadcast: %v", err)
	}
	if err := hub.DeliverPartialText("turn_1", "two"); err != nil {
		t.Fatalf("failed to broadcast: %v", err)
	}
	drain(healthy)

	if err := hub.DeliverFullText("turn_1", "one two"); err != nil {
		t.Fatalf("failed to broadcast after drop: %v", err)
	}

	if droppedID != slow.id {
		t.Fatalf("expected slow listener %s to be dropped, got %q", slow.id, droppedID)
	}
	if got := hub.ListenerCount(); got != 1 {
		t.Fatalf("expected one listener left, got %d", got)
	}
	if frames := drain(healthy); len(frames) != 1 {
		t.Fatalf("expected healthy listener to keep receiving, got %d frames", len(frames))
	}
}

func TestMidTurnJoinSeesNoBacklog(t *testing.T) {
	hub := NewHub()
	early := hub.register()

	if err := hub.DeliverPartialText("turn_1", "before join"); err != nil {
		t.Fatalf("failed to broadcast: %v", err)
	}

	late := hub.register()
	if frames := drain(late); len(frames) != 0 {
		t.Fatalf("expected no backlog for a late listener, got %d frames", len(frames))
	}

	if err := hub.DeliverPartialText("turn_1", "after join"); err != nil {
		t.Fatalf("failed to broadcast: %v", err)
	}
	if frames := drain(late); len(frames) != 1 {
		t.Fatalf("expected late listener to receive subsequent frames, got %d", len(frames))
	}
	drain(early)
}

func TestTurnAudioIsBroadcastAsBinaryFrame(t *testing.T) {
	hub := NewHub()
	l := hub.register()

	container := []byte{'R', 'I', 'F', 'F', 0x01, 0x02}
	if err := hub.DeliverTurnAudio("turn_1", container); err != nil {
		t.Fatalf("failed to broadcast audio: %v", err)
	}

	frames := drain(l)
	if len(frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(frames))
	}
	if frames[0].messageType != websocket.BinaryMessage {
		t.Fatalf("expected binary frame, got type %d", frames[0].messageType)
	}
	if string(frames[0].payload) != string(container) {
		t.Fatalf("expected container payload to pass through unchanged")
	}
}

func TestListenerCountCallback(t *testing.T) {
	var counts []int
	hub := NewHub(WithListenerCountCallback(func(count int) { counts = append(counts, count) }))

	l := hub.register()
	hub.register()
	hub.unregister(l.id)

	expected := []int{1, 2, 1}
	if len(counts) != len(expected) {
		t.Fatalf("expected counts %v, got %v", expected, counts)
	}
	for i, count := range expected {
		if counts[i] != count {
			t.Fatalf("expected counts %v, got %v", expected, counts)
		}
	}
}
