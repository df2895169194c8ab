// Package localsink plays relayed turn audio on the local speakers and
// feeds a terminal visualizer. Containers that arrive while a turn is
// still playing are queued and played in arrival order, never clobbering
// the one in flight.
package localsink

import (
	"fmt"
	"log"
	"sync"

	"github.com/voicebridge/voicebridge/core/audio"
)

// amplitudeChunkSize is how many samples feed one visualizer bar.
const amplitudeChunkSize = 1000

// Player is the playback device the sink drains into. The miniaudio client
// satisfies it; Mark must fire its callback once everything queued before
// the call has been played out.
type Player interface {
	SendAudio(audio []byte) error
	Mark(mark string, callback func(string)) error
}

type queuedTurn struct {
	id  string
	pcm []byte
}

// Sink queues finished turns for sequential local playback.
type Sink struct {
	player Player

	mu      sync.Mutex
	queue   []queuedTurn
	playing bool

	notifications chan Notification
}

type SinkOption func(*Sink)

// WithNotificationBuffer sets the capacity of the notification channel.
func WithNotificationBuffer(size int) SinkOption {
	return func(s *Sink) { s.notifications = make(chan Notification, size) }
}

func NewSink(player Player, opts ...SinkOption) *Sink {
	s := &Sink{
		player:        player,
		notifications: make(chan Notification, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notifications returns the stream the visualizer renders from. The channel
// is never closed; notifications that find it full are discarded.
func (s *Sink) Notifications() <-chan Notification {
	return s.notifications
}

// Notify injects an out-of-band notification, used to surface bridge state
// changes and session errors on the same stream.
func (s *Sink) Notify(n Notification) {
	s.emit(n)
}

// DeliverPartialText surfaces a streamed transcript fragment.
func (s *Sink) DeliverPartialText(turnID, text string) error {
	s.emit(PartialText{TurnID: turnID, Text: text})
	return nil
}

// DeliverFullText surfaces the final transcript of a completed turn.
func (s *Sink) DeliverFullText(turnID, text string) error {
	s.emit(FullText{TurnID: turnID, Text: text})
	return nil
}

// DeliverTurnAudio queues a turn's audio for playback. If nothing is
// playing the turn starts immediately; otherwise it waits its turn.
func (s *Sink) DeliverTurnAudio(turnID string, container []byte) error {
	pcm, _, err := audio.DecodeWAV(container)
	if err != nil {
		return fmt.Errorf("failed to decode turn audio: %w", err)
	}

	s.mu.Lock()
	s.queue = append(s.queue, queuedTurn{id: turnID, pcm: pcm})
	start := !s.playing
	if start {
		s.playing = true
	}
	s.mu.Unlock()

	if start {
		s.playNext()
	}
	return nil
}

// playNext dequeues and plays one turn. The playback mark placed after the
// turn's audio chains the next one once the device has drained it.
func (s *Sink) playNext() {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.playing = false
		s.mu.Unlock()
		return
	}
	turn := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	samples := audio.Samples(turn.pcm)
	s.emit(PlaybackStarted{
		TurnID:     turn.id,
		Amplitudes: audio.MeanAbsAmplitude(samples, amplitudeChunkSize),
	})

	if err := s.player.SendAudio(turn.pcm); err != nil {
		log.Printf("Failed to queue turn %s for playback: %v", turn.id, err)
		s.emit(PlaybackEnded{TurnID: turn.id})
		s.playNext()
		return
	}

	if err := s.player.Mark(turn.id, func(string) {
		s.emit(PlaybackEnded{TurnID: turn.id})
		s.playNext()
	}); err != nil {
		log.Printf("Failed to mark end of turn %s: %v", turn.id, err)
		s.emit(PlaybackEnded{TurnID: turn.id})
		s.playNext()
	}
}

func (s *Sink) emit(n Notification) {
	select {
	case s.notifications <- n:
	default:
	}
}
