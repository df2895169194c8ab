package bridge

import "log"

// Sink receives the relayed output of a conversation. Partial text arrives
// once per transcript fragment while a turn streams; the WAV container and
// final transcript arrive once the turn completes. Implementations are
// called sequentially from the session's event goroutine and should return
// quickly.
type Sink interface {
	DeliverPartialText(turnID, text string) error
	DeliverTurnAudio(turnID string, container []byte) error
	DeliverFullText(turnID, text string) error
}

// eachSink fans a delivery out to every configured sink. A failing sink is
// logged and skipped; it never blocks delivery to the others.
func (b *Bridge) eachSink(what string, deliver func(Sink) error) {
	for _, sink := range b.sinks {
		if err := deliver(sink); err != nil {
			log.Printf("Failed to deliver %s to sink: %v", what, err)
		}
	}
}
