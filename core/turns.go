package bridge

import (
	"log"
	"strings"

	"github.com/voicebridge/voicebridge/core/audio"
)

// turnBuffer accumulates exactly one response turn. A fresh buffer is
// created when a turn opens and released when the turn completes or the
// conversation stops; nothing leaks across turn boundaries.
type turnBuffer struct {
	id   string
	pcm  []byte
	text strings.Builder
}

func newTurnBuffer(id string) *turnBuffer {
	return &turnBuffer{id: id}
}

func (t *turnBuffer) appendAudio(pcm []byte) {
	t.pcm = append(t.pcm, pcm...)
}

func (t *turnBuffer) appendText(text string) {
	t.text.WriteString(text)
}

func (t *turnBuffer) transcript() string {
	return t.text.String()
}

// openTurn starts accumulating a new turn. An already open turn stays live:
// the upstream session streams one turn at a time, so a second start before
// completion means the start notice for the live turn was duplicated.
func (b *Bridge) openTurn(turnID string) {
	b.turnMu.Lock()
	if b.turn == nil {
		b.turn = newTurnBuffer(turnID)
	}
	b.turnMu.Unlock()
}

// accumulateText appends a transcript fragment to the live turn, opening one
// if a delta arrives before the start notice. The fragment is also relayed
// to the sinks immediately, without waiting for the turn to complete.
func (b *Bridge) accumulateText(turnID, text string) {
	b.turnMu.Lock()
	if b.turn == nil {
		b.turn = newTurnBuffer(turnID)
	}
	b.turn.appendText(text)
	id := b.turn.id
	b.turnMu.Unlock()

	b.eachSink("partial text", func(sink Sink) error {
		return sink.DeliverPartialText(id, text)
	})
	if b.runOptions.onPartialText != nil {
		b.runOptions.onPartialText(id, text)
	}
}

// accumulateAudio appends a PCM fragment to the live turn. Audio is held
// back until completion so the sinks receive one container per turn.
func (b *Bridge) accumulateAudio(turnID string, pcm []byte) {
	b.turnMu.Lock()
	if b.turn == nil {
		b.turn = newTurnBuffer(turnID)
	}
	b.turn.appendAudio(pcm)
	b.turnMu.Unlock()
}

// completeTurn seals the live turn: accumulated audio is wrapped into a WAV
// container (skipped entirely when the turn produced none), the final
// transcript goes out, and the buffer is released for the next turn.
func (b *Bridge) completeTurn(turnID, finalText string) {
	b.turnMu.Lock()
	turn := b.turn
	b.turn = nil
	b.turnMu.Unlock()

	if turn == nil {
		turn = newTurnBuffer(turnID)
	}

	transcript := turn.transcript()
	if transcript == "" {
		transcript = finalText
	}

	if len(turn.pcm) > 0 {
		container, err := audio.EncodeWAV(turn.pcm, b.encodingInfo)
		if err != nil {
			log.Printf("Failed to encode turn audio: %v", err)
		} else {
			b.eachSink("turn audio", func(sink Sink) error {
				return sink.DeliverTurnAudio(turn.id, container)
			})
			if b.runOptions.onTurnAudio != nil {
				b.runOptions.onTurnAudio(turn.id, container)
			}
		}
	}

	b.eachSink("full text", func(sink Sink) error {
		return sink.DeliverFullText(turn.id, transcript)
	})
	if b.runOptions.onFullText != nil {
		b.runOptions.onFullText(turn.id, transcript)
	}
}
