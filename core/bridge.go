// Package bridge wires a microphone frame source, a realtime conversational
// session, and a set of delivery sinks into one relay. Captured PCM frames
// flow upstream while the session is open; response turns are accumulated and
// fanned out to every sink as they stream back.
package bridge

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/voicebridge/voicebridge/core/audio"
	"github.com/voicebridge/voicebridge/core/events"
	"github.com/voicebridge/voicebridge/core/realtime"
	"go.opentelemetry.io/otel/codes"
)

// State is the bridge's lifecycle phase. Transitions only move forward
// through Connecting into Streaming and end in Disconnected; there is no
// automatic reconnect.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateStreaming    State = "streaming"
	StateDisconnected State = "disconnected"
)

// SessionClient is the upstream conversational session the bridge drives.
// [realtime.Client] is the production implementation.
type SessionClient interface {
	Connect(ctx context.Context, opts ...realtime.SessionOption) error
	Disconnect() error
	IsConnected() bool
	AppendInputAudio(pcm []byte) error
}

// FrameSource produces captured PCM frames. Capture clients under
// core/audio satisfy it.
type FrameSource interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// Bridge relays one conversation. A bridge can be started again after a
// Stop; every start opens a fresh session with no carried-over turn state.
type Bridge struct {
	session     SessionClient
	frameSource FrameSource
	sinks       []Sink

	sessionConfig realtime.SessionConfig
	encodingInfo  audio.EncodingInfo

	state   State
	stateMu sync.Mutex

	turn   *turnBuffer
	turnMu sync.Mutex

	runOptions    RunOptions
	baseContext   context.Context
	closeOnce     sync.Once
	framesDropped atomic.Uint64
}

// NewBridge creates a bridge. Without a session client or frame source the
// bridge is inert; options wire in the production implementations.
func NewBridge(opts ...BridgeOption) *Bridge {
	b := &Bridge{
		state:         StateIdle,
		sessionConfig: realtime.DefaultSessionConfig(),
		encodingInfo:  audio.GetDefaultEncodingInfo(),
		baseContext:   context.Background(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// State returns the current lifecycle phase.
func (b *Bridge) State() State {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	return b.state
}

// FramesDropped returns how many captured frames were discarded because no
// session was open to receive them.
func (b *Bridge) FramesDropped() uint64 {
	return b.framesDropped.Load()
}

// StartConversation opens the upstream session and starts forwarding
// captured frames. It fails if a conversation is already in flight, and
// leaves the bridge idle if the session cannot be opened.
func (b *Bridge) StartConversation(ctx context.Context, opts ...RunOption) error {
	ctx, span := tracer.Start(ctx, "start conversation")
	defer span.End()

	b.stateMu.Lock()
	if b.state != StateIdle && b.state != StateDisconnected {
		state := b.state
		b.stateMu.Unlock()
		return fmt.Errorf("conversation already in flight (state %q)", state)
	}
	b.state = StateConnecting
	b.stateMu.Unlock()

	options := RunOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	b.runOptions = options
	b.baseContext = ctx
	b.notifyState(StateConnecting)

	if b.session == nil {
		b.setState(StateIdle)
		return fmt.Errorf("no session client configured")
	}

	if err := b.session.Connect(ctx,
		realtime.WithSessionConfig(b.sessionConfig),
		realtime.WithEventCallback(b.handleEvent),
	); err != nil {
		recordedErr := fmt.Errorf("failed to open realtime session: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		b.setState(StateIdle)
		return recordedErr
	}
	b.setState(StateConnected)

	if b.frameSource != nil {
		if err := b.frameSource.StartCapture(ctx, b.handleFrame); err != nil {
			recordedErr := fmt.Errorf("failed to start audio capture: %w", err)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			if disconnectErr := b.session.Disconnect(); disconnectErr != nil {
				span.RecordError(disconnectErr)
			}
			b.setState(StateIdle)
			return recordedErr
		}
	}
	b.setState(StateStreaming)

	return nil
}

// Stop ends the conversation: capture stops, the session closes, and any
// partially accumulated turn is discarded without emission.
func (b *Bridge) Stop() error {
	var errs []error

	if b.frameSource != nil {
		if err := b.frameSource.StopCapture(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audio capture: %w", err))
		}
	}
	if b.session != nil {
		if err := b.session.Disconnect(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close realtime session: %w", err))
		}
	}

	b.turnMu.Lock()
	b.turn = nil
	b.turnMu.Unlock()

	b.setState(StateDisconnected)

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Close stops the conversation. Safe to call more than once.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		if err := b.Stop(); err != nil {
			log.Printf("Failed to stop bridge on close: %v", err)
		}
	})
}

// SendAudio forwards one PCM frame as if it had been captured. Frames sent
// while no session is open are dropped.
func (b *Bridge) SendAudio(pcm []byte) error {
	b.handleFrame(pcm)
	return nil
}

// handleFrame is the capture callback. Frames are forwarded upstream only
// while the session is open; everything else is counted and dropped.
func (b *Bridge) handleFrame(pcm []byte) {
	if b.session == nil || !b.session.IsConnected() {
		dropped := b.framesDropped.Add(1)
		if b.runOptions.onFrameDropped != nil {
			b.runOptions.onFrameDropped(dropped)
		}
		return
	}

	if err := b.session.AppendInputAudio(pcm); err != nil {
		log.Printf("Failed to forward captured frame: %v", err)
	}
}

// handleEvent receives response events from the session, in transport order.
func (b *Bridge) handleEvent(event events.Event) {
	if b.State() == StateDisconnected {
		return
	}

	switch t := event.(type) {
	case events.TurnStarted:
		b.openTurn(t.TurnID)
	case events.TurnTextDelta:
		b.accumulateText(t.TurnID, t.Text)
	case events.TurnAudioDelta:
		b.accumulateAudio(t.TurnID, t.PCM)
	case events.TurnCompleted:
		b.completeTurn(t.TurnID, t.FinalText)
	case events.SessionError:
		log.Printf("Realtime session error: %s", t.Reason)
		if b.runOptions.onSessionError != nil {
			b.runOptions.onSessionError(t.Reason)
		}
	}
}

func (b *Bridge) setState(state State) {
	b.stateMu.Lock()
	b.state = state
	b.stateMu.Unlock()
	b.notifyState(state)
}

func (b *Bridge) notifyState(state State) {
	if b.runOptions.onStateChanged != nil {
		b.runOptions.onStateChanged(state)
	}
}
