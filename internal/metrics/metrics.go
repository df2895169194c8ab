// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicebridge_turns_completed_total",
		Help: "Total number of completed response turns relayed",
	})

	audioBytesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicebridge_audio_bytes_total",
		Help: "Total audio bytes relayed to sinks, including container headers",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicebridge_frames_dropped_total",
		Help: "Captured frames discarded because no session was open",
	})

	listeners = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voicebridge_broadcast_listeners",
		Help: "Number of connected broadcast listeners",
	})

	listenersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicebridge_broadcast_listeners_dropped_total",
		Help: "Listeners dropped for falling behind on delivery",
	})

	sessionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicebridge_session_errors_total",
		Help: "Errors reported by the realtime session",
	})
)

// RecordTurnCompleted records one finished turn.
func RecordTurnCompleted() {
	turnsCompleted.Inc()
}

// RecordAudioRelayed records relayed audio volume.
func RecordAudioRelayed(bytes int) {
	audioBytesRelayed.Add(float64(bytes))
}

// RecordFrameDropped records one discarded capture frame.
func RecordFrameDropped() {
	framesDropped.Inc()
}

// SetListeners updates the connected listener gauge.
func SetListeners(count int) {
	listeners.Set(float64(count))
}

// RecordListenerDropped records one listener dropped for falling behind.
func RecordListenerDropped() {
	listenersDropped.Inc()
}

// RecordSessionError records one session-level error.
func RecordSessionError() {
	sessionErrors.Inc()
}
