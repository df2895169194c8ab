package events

const (
	// KindTurnStarted identifies the opening of a new assistant turn.
	KindTurnStarted Kind = "turn.started"
	// KindTurnTextDelta identifies a streamed transcript fragment.
	KindTurnTextDelta Kind = "turn.text_delta"
	// KindTurnAudioDelta identifies a streamed raw PCM fragment.
	KindTurnAudioDelta Kind = "turn.audio_delta"
	// KindTurnCompleted identifies the completion of the open turn.
	KindTurnCompleted Kind = "turn.completed"
)

// TurnStarted marks the opening of a new assistant turn.
type TurnStarted struct {
	Base
	TurnID string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(turnID string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), TurnID: turnID}
}

// TurnTextDelta carries an append-only transcript fragment for a turn.
type TurnTextDelta struct {
	Base
	TurnID string
	Text   string
}

// NewTurnTextDelta creates a text delta event.
func NewTurnTextDelta(turnID, text string) TurnTextDelta {
	return TurnTextDelta{Base: NewBase(KindTurnTextDelta), TurnID: turnID, Text: text}
}

// TurnAudioDelta carries a raw PCM fragment for a turn. The bytes belong to
// the receiver once emitted; the session does not retain them.
type TurnAudioDelta struct {
	Base
	TurnID string
	PCM    []byte
}

// NewTurnAudioDelta creates an audio delta event.
func NewTurnAudioDelta(turnID string, pcm []byte) TurnAudioDelta {
	return TurnAudioDelta{Base: NewBase(KindTurnAudioDelta), TurnID: turnID, PCM: pcm}
}

// TurnCompleted marks the completion of a turn and carries the final
// transcript the session assembled for it.
type TurnCompleted struct {
	Base
	TurnID    string
	FinalText string
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(turnID, finalText string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), TurnID: turnID, FinalText: finalText}
}
