package localsink

import "github.com/voicebridge/voicebridge/core"

// Notification is one item on the visualizer's stream.
type Notification interface{ isNotification() }

// StateChanged reports a bridge lifecycle transition.
type StateChanged struct {
	State bridge.State
}

// PartialText carries a streamed transcript fragment.
type PartialText struct {
	TurnID string
	Text   string
}

// FullText carries the final transcript of a completed turn.
type FullText struct {
	TurnID string
	Text   string
}

// PlaybackStarted reports that a turn's audio reached the device, along
// with its precomputed amplitude envelope (one value per 1000-sample
// chunk, normalized to [0,1]).
type PlaybackStarted struct {
	TurnID     string
	Amplitudes []float64
}

// PlaybackEnded reports that a turn's audio finished playing.
type PlaybackEnded struct {
	TurnID string
}

// SessionTrouble reports a non-fatal session error.
type SessionTrouble struct {
	Reason string
}

func (StateChanged) isNotification()    {}
func (PartialText) isNotification()     {}
func (FullText) isNotification()        {}
func (PlaybackStarted) isNotification() {}
func (PlaybackEnded) isNotification()   {}
func (SessionTrouble) isNotification()  {}
