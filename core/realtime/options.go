package realtime

import (
	"fmt"

	"github.com/voicebridge/voicebridge/core/events"
)

// Voice identifies one of the fixed voices the conversational API accepts.
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

func (v Voice) Valid() bool {
	switch v {
	case VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer:
		return true
	}
	return false
}

// ParseVoice converts a configured voice name into a [Voice].
func ParseVoice(name string) (Voice, error) {
	voice := Voice(name)
	if !voice.Valid() {
		return "", fmt.Errorf("unrecognized voice %q", name)
	}
	return voice, nil
}

// TurnDetection selects who decides when a user turn ends.
type TurnDetection string

const (
	// TurnDetectionNone leaves turn boundaries to the client.
	TurnDetectionNone TurnDetection = "none"
	// TurnDetectionServerVAD lets the remote endpoint detect end of speech.
	TurnDetectionServerVAD TurnDetection = "server_vad"
)

func (t TurnDetection) Valid() bool {
	return t == TurnDetectionNone || t == TurnDetectionServerVAD
}

// SessionConfig is the static session configuration applied right after a
// successful connect.
type SessionConfig struct {
	Instructions       string
	Voice              Voice
	TurnDetection      TurnDetection
	TranscriptionModel string
}

// DefaultSessionConfig matches the parameters the service was originally
// tuned for.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Voice:              VoiceAlloy,
		TurnDetection:      TurnDetectionNone,
		TranscriptionModel: "whisper-1",
	}
}

type SessionOptions struct {
	Config SessionConfig

	EventCallback func(events.Event)
}

type SessionOption func(*SessionOptions)

// WithSessionConfig replaces the default session configuration wholesale.
func WithSessionConfig(config SessionConfig) SessionOption {
	return func(o *SessionOptions) { o.Config = config }
}

// WithInstructions sets the persona/system prompt for the session.
func WithInstructions(instructions string) SessionOption {
	return func(o *SessionOptions) { o.Config.Instructions = instructions }
}

// WithVoice selects the assistant voice.
func WithVoice(voice Voice) SessionOption {
	return func(o *SessionOptions) { o.Config.Voice = voice }
}

// WithTurnDetection selects the turn detection mode.
func WithTurnDetection(mode TurnDetection) SessionOption {
	return func(o *SessionOptions) { o.Config.TurnDetection = mode }
}

// WithTranscriptionModel sets the model transcribing input audio.
func WithTranscriptionModel(model string) SessionOption {
	return func(o *SessionOptions) { o.Config.TranscriptionModel = model }
}

// WithEventCallback registers the callback receiving response events. Events
// are delivered in transport order, one at a time.
func WithEventCallback(callback func(events.Event)) SessionOption {
	return func(o *SessionOptions) { o.EventCallback = callback }
}
