// voicebridge runs the relay entirely locally: microphone in, responses
// played on the speakers, with a terminal visualizer following playback.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/voicebridge/voicebridge/core"
	"github.com/voicebridge/voicebridge/core/audio/miniaudio"
	"github.com/voicebridge/voicebridge/core/localsink"
	"github.com/voicebridge/voicebridge/core/realtime"
	"github.com/voicebridge/voicebridge/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	// Without a browser client there is no push-to-talk, so let the server
	// detect turn boundaries unless explicitly configured otherwise.
	if os.Getenv("TURN_DETECTION") == "" {
		cfg.TurnDetection = string(realtime.TurnDetectionServerVAD)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := realtime.NewClient(cfg.OpenAIAPIKey, realtime.WithModel(cfg.RealtimeModel))
	if err != nil {
		log.Fatalf("Failed to create realtime client: %v", err)
	}

	audioClient, err := miniaudio.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize audio devices: %v", err)
	}
	defer audioClient.Close()

	sink := localsink.NewSink(audioClient)

	b := bridge.NewBridge(
		bridge.WithSessionClient(session),
		bridge.WithFrameSource(audioClient),
		bridge.WithSinks(sink),
		bridge.WithSessionConfig(cfg.SessionConfig()),
	)
	defer b.Close()

	if err := b.StartConversation(ctx,
		bridge.WithStateChangedCallback(func(state bridge.State) {
			sink.Notify(localsink.StateChanged{State: state})
		}),
		bridge.WithSessionErrorCallback(func(reason string) {
			sink.Notify(localsink.SessionTrouble{Reason: reason})
		}),
	); err != nil {
		log.Fatalf("Failed to start conversation: %v", err)
	}

	if err := localsink.Run(sink.Notifications()); err != nil {
		log.Fatalf("Visualizer failed: %v", err)
	}
}
