package bridge

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/voicebridge/voicebridge/core/audio"
	"github.com/voicebridge/voicebridge/core/events"
	"github.com/voicebridge/voicebridge/core/realtime"
)

type fakeSession struct {
	connected  bool
	connectErr error
	callback   func(events.Event)
	appended   [][]byte
}

func (s *fakeSession) Connect(ctx context.Context, opts ...realtime.SessionOption) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	options := realtime.SessionOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	s.callback = options.EventCallback
	s.connected = true
	return nil
}

func (s *fakeSession) Disconnect() error {
	s.connected = false
	return nil
}

func (s *fakeSession) IsConnected() bool { return s.connected }

func (s *fakeSession) AppendInputAudio(pcm []byte) error {
	s.appended = append(s.appended, pcm)
	return nil
}

type fakeSource struct {
	started bool
	stopped bool
	onAudio func(audio []byte)
}

func (s *fakeSource) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	s.started = true
	s.onAudio = onAudio
	return nil
}

func (s *fakeSource) StopCapture() error {
	s.stopped = true
	return nil
}

type recordingSink struct {
	partials   []string
	fulls      []string
	containers [][]byte
}

func (s *recordingSink) DeliverPartialText(turnID, text string) error {
	s.partials = append(s.partials, text)
	return nil
}

func (s *recordingSink) DeliverTurnAudio(turnID string, container []byte) error {
	s.containers = append(s.containers, container)
	return nil
}

func (s *recordingSink) DeliverFullText(turnID, text string) error {
	s.fulls = append(s.fulls, text)
	return nil
}

type failingSink struct{}

func (failingSink) DeliverPartialText(turnID, text string) error {
	return fmt.Errorf("partial text delivery failed")
}

func (failingSink) DeliverTurnAudio(turnID string, container []byte) error {
	return fmt.Errorf("audio delivery failed")
}

func (failingSink) DeliverFullText(turnID, text string) error {
	return fmt.Errorf("full text delivery failed")
}

func startedBridge(t *testing.T, sinks ...Sink) (*Bridge, *fakeSession) {
	t.Helper()

	session := &fakeSession{}
	b := NewBridge(WithSessionClient(session), WithSinks(sinks...))
	if err := b.StartConversation(context.Background()); err != nil {
		t.Fatalf("failed to start conversation: %v", err)
	}
	return b, session
}

func TestTurnAccumulationResetsBetweenTurns(t *testing.T) {
	sink := &recordingSink{}
	_, session := startedBridge(t, sink)

	pcm := []byte{0x01, 0x00, 0x02, 0x00}
	session.callback(events.NewTurnStarted("turn_1"))
	session.callback(events.NewTurnTextDelta("turn_1", "hi"))
	session.callback(events.NewTurnAudioDelta("turn_1", pcm))
	session.callback(events.NewTurnCompleted("turn_1", "hi"))

	session.callback(events.NewTurnStarted("turn_2"))
	session.callback(events.NewTurnTextDelta("turn_2", "yo"))
	session.callback(events.NewTurnCompleted("turn_2", "yo"))

	if len(sink.partials) != 2 || sink.partials[0] != "hi" || sink.partials[1] != "yo" {
		t.Fatalf("expected partials [hi yo], got %v", sink.partials)
	}
	if len(sink.fulls) != 2 || sink.fulls[0] != "hi" || sink.fulls[1] != "yo" {
		t.Fatalf("expected finals [hi yo], got %v", sink.fulls)
	}
	if len(sink.containers) != 1 {
		t.Fatalf("expected one audio container, got %d", len(sink.containers))
	}

	payload, _, err := audio.DecodeWAV(sink.containers[0])
	if err != nil {
		t.Fatalf("failed to decode delivered container: %v", err)
	}
	if !bytes.Equal(payload, pcm) {
		t.Fatalf("expected container payload %v, got %v", pcm, payload)
	}
}

func TestTurnWithoutAudioSkipsAudioDelivery(t *testing.T) {
	sink := &recordingSink{}
	_, session := startedBridge(t, sink)

	session.callback(events.NewTurnStarted("turn_1"))
	session.callback(events.NewTurnTextDelta("turn_1", "text only"))
	session.callback(events.NewTurnCompleted("turn_1", "text only"))

	if len(sink.containers) != 0 {
		t.Fatalf("expected no audio for a text-only turn, got %d containers", len(sink.containers))
	}
	if len(sink.fulls) != 1 || sink.fulls[0] != "text only" {
		t.Fatalf("expected final transcript to be delivered, got %v", sink.fulls)
	}
}

func TestDeltaBeforeStartOpensTurn(t *testing.T) {
	sink := &recordingSink{}
	_, session := startedBridge(t, sink)

	session.callback(events.NewTurnTextDelta("turn_1", "early"))
	session.callback(events.NewTurnCompleted("turn_1", ""))

	if len(sink.partials) != 1 || sink.partials[0] != "early" {
		t.Fatalf("expected delta before start to be relayed, got %v", sink.partials)
	}
	if len(sink.fulls) != 1 || sink.fulls[0] != "early" {
		t.Fatalf("expected accumulated transcript on completion, got %v", sink.fulls)
	}
}

func TestFinalTextFallsBackToCompletionTranscript(t *testing.T) {
	sink := &recordingSink{}
	_, session := startedBridge(t, sink)

	session.callback(events.NewTurnStarted("turn_1"))
	session.callback(events.NewTurnCompleted("turn_1", "from completion"))

	if len(sink.fulls) != 1 || sink.fulls[0] != "from completion" {
		t.Fatalf("expected completion transcript fallback, got %v", sink.fulls)
	}
}

func TestFramesDroppedWhileDisconnected(t *testing.T) {
	session := &fakeSession{}
	b := NewBridge(WithSessionClient(session))

	if err := b.SendAudio([]byte{0x01, 0x02}); err != nil {
		t.Fatalf("unexpected error sending audio: %v", err)
	}
	if len(session.appended) != 0 {
		t.Fatalf("expected no frames forwarded while disconnected, got %d", len(session.appended))
	}
	if got := b.FramesDropped(); got != 1 {
		t.Fatalf("expected 1 dropped frame, got %d", got)
	}

	if err := b.StartConversation(context.Background()); err != nil {
		t.Fatalf("failed to start conversation: %v", err)
	}
	if err := b.SendAudio([]byte{0x03, 0x04}); err != nil {
		t.Fatalf("unexpected error sending audio: %v", err)
	}
	if len(session.appended) != 1 {
		t.Fatalf("expected frame forwarded while connected, got %d", len(session.appended))
	}
}

func TestSinkFailureDoesNotBlockOthers(t *testing.T) {
	healthy := &recordingSink{}
	_, session := startedBridge(t, failingSink{}, healthy)

	session.callback(events.NewTurnStarted("turn_1"))
	session.callback(events.NewTurnTextDelta("turn_1", "hi"))
	session.callback(events.NewTurnAudioDelta("turn_1", []byte{0x01, 0x00}))
	session.callback(events.NewTurnCompleted("turn_1", "hi"))

	if len(healthy.partials) != 1 || len(healthy.fulls) != 1 || len(healthy.containers) != 1 {
		t.Fatalf("expected healthy sink to receive everything, got %d/%d/%d deliveries",
			len(healthy.partials), len(healthy.fulls), len(healthy.containers))
	}
}

func TestStopDiscardsPartialTurn(t *testing.T) {
	sink := &recordingSink{}
	b, session := startedBridge(t, sink)

	session.callback(events.NewTurnStarted("turn_1"))
	session.callback(events.NewTurnTextDelta("turn_1", "cut off"))

	if err := b.Stop(); err != nil {
		t.Fatalf("failed to stop bridge: %v", err)
	}
	if got := b.State(); got != StateDisconnected {
		t.Fatalf("expected disconnected state after stop, got %q", got)
	}

	session.callback(events.NewTurnCompleted("turn_1", "cut off"))
	if len(sink.fulls) != 0 || len(sink.containers) != 0 {
		t.Fatalf("expected discarded turn to emit nothing, got %v finals and %d containers",
			sink.fulls, len(sink.containers))
	}
}

func TestStartConversationLifecycle(t *testing.T) {
	session := &fakeSession{}
	source := &fakeSource{}
	b := NewBridge(WithSessionClient(session), WithFrameSource(source))

	var states []State
	if err := b.StartConversation(context.Background(),
		WithStateChangedCallback(func(state State) { states = append(states, state) }),
	); err != nil {
		t.Fatalf("failed to start conversation: %v", err)
	}

	if got := b.State(); got != StateStreaming {
		t.Fatalf("expected streaming state, got %q", got)
	}
	if !source.started {
		t.Fatalf("expected capture to be started")
	}
	expected := []State{StateConnecting, StateConnected, StateStreaming}
	if len(states) != len(expected) {
		t.Fatalf("expected transitions %v, got %v", expected, states)
	}
	for i, state := range expected {
		if states[i] != state {
			t.Fatalf("expected transitions %v, got %v", expected, states)
		}
	}

	if err := b.StartConversation(context.Background()); err == nil {
		t.Fatalf("expected second start to be rejected while streaming")
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("failed to stop bridge: %v", err)
	}
	if !source.stopped {
		t.Fatalf("expected capture to be stopped")
	}
	if session.connected {
		t.Fatalf("expected session to be disconnected")
	}
}

func TestFailedConnectLeavesBridgeIdle(t *testing.T) {
	session := &fakeSession{connectErr: fmt.Errorf("dial failed")}
	b := NewBridge(WithSessionClient(session))

	if err := b.StartConversation(context.Background()); err == nil {
		t.Fatalf("expected connect failure to surface")
	}
	if got := b.State(); got != StateIdle {
		t.Fatalf("expected bridge to stay idle after failed connect, got %q", got)
	}
}
