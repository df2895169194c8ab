package bridge

import (
	"github.com/voicebridge/voicebridge/core/audio"
	"github.com/voicebridge/voicebridge/core/realtime"
)

type BridgeOption func(*Bridge)

// WithSessionClient wires in the upstream conversational session.
func WithSessionClient(client SessionClient) BridgeOption {
	return func(b *Bridge) { b.session = client }
}

// WithFrameSource wires in the microphone capture client. A bridge without
// one relays only frames injected through [Bridge.SendAudio].
func WithFrameSource(source FrameSource) BridgeOption {
	return func(b *Bridge) { b.frameSource = source }
}

// WithSinks registers the delivery sinks. Sinks are invoked in registration
// order; a failing sink does not affect the others.
func WithSinks(sinks ...Sink) BridgeOption {
	return func(b *Bridge) { b.sinks = append(b.sinks, sinks...) }
}

// WithSessionConfig sets the session parameters applied when a conversation
// starts.
func WithSessionConfig(config realtime.SessionConfig) BridgeOption {
	return func(b *Bridge) { b.sessionConfig = config }
}

// WithEncodingInfo overrides the encoding the turn audio containers are
// stamped with. Defaults to 24kHz 16-bit mono.
func WithEncodingInfo(info audio.EncodingInfo) BridgeOption {
	return func(b *Bridge) { b.encodingInfo = info }
}

type RunOptions struct {
	onStateChanged func(state State)
	onPartialText  func(turnID, text string)
	onFullText     func(turnID, text string)
	onTurnAudio    func(turnID string, container []byte)
	onSessionError func(reason string)
	onFrameDropped func(dropped uint64)
}

type RunOption func(*RunOptions)

// WithStateChangedCallback registers a callback for lifecycle transitions.
func WithStateChangedCallback(callback func(state State)) RunOption {
	return func(o *RunOptions) { o.onStateChanged = callback }
}

// WithPartialTextCallback registers a callback for streamed transcript
// fragments. Fragments are append-only within a turn.
func WithPartialTextCallback(callback func(turnID, text string)) RunOption {
	return func(o *RunOptions) { o.onPartialText = callback }
}

// WithFullTextCallback registers a callback for the final transcript of a
// completed turn.
func WithFullTextCallback(callback func(turnID, text string)) RunOption {
	return func(o *RunOptions) { o.onFullText = callback }
}

// WithTurnAudioCallback registers a callback for the WAV container of a
// completed turn. Turns that produced no audio do not trigger it.
func WithTurnAudioCallback(callback func(turnID string, container []byte)) RunOption {
	return func(o *RunOptions) { o.onTurnAudio = callback }
}

// WithSessionErrorCallback registers a callback for session-level errors.
// The conversation keeps running; it is up to the caller to stop it.
func WithSessionErrorCallback(callback func(reason string)) RunOption {
	return func(o *RunOptions) { o.onSessionError = callback }
}

// WithFrameDroppedCallback registers a callback invoked whenever a captured
// frame is discarded because no session is open. It receives the running
// total of dropped frames.
func WithFrameDroppedCallback(callback func(dropped uint64)) RunOption {
	return func(o *RunOptions) { o.onFrameDropped = callback }
}
