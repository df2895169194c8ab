// voicebridge-server relays a microphone conversation to browser clients.
// Captured audio streams to the conversational API; response turns are
// broadcast to every connected websocket listener alongside a static
// browser UI.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voicebridge/voicebridge/core"
	"github.com/voicebridge/voicebridge/core/audio/miniaudio"
	"github.com/voicebridge/voicebridge/core/broadcast"
	"github.com/voicebridge/voicebridge/core/realtime"
	"github.com/voicebridge/voicebridge/internal/config"
	"github.com/voicebridge/voicebridge/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
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

	hub := broadcast.NewHub(
		broadcast.WithListenerCountCallback(metrics.SetListeners),
		broadcast.WithListenerDroppedCallback(func(string) { metrics.RecordListenerDropped() }),
	)

	b := bridge.NewBridge(
		bridge.WithSessionClient(session),
		bridge.WithFrameSource(audioClient),
		bridge.WithSinks(hub),
		bridge.WithSessionConfig(cfg.SessionConfig()),
	)
	defer b.Close()

	startConversation := func() error {
		err := b.StartConversation(ctx,
			bridge.WithFullTextCallback(func(turnID, text string) { metrics.RecordTurnCompleted() }),
			bridge.WithTurnAudioCallback(func(turnID string, container []byte) {
				metrics.RecordAudioRelayed(len(container))
			}),
			bridge.WithFrameDroppedCallback(func(uint64) { metrics.RecordFrameDropped() }),
			bridge.WithSessionErrorCallback(func(string) { metrics.RecordSessionError() }),
		)
		if err != nil {
			return fmt.Errorf("failed to start conversation: %w", err)
		}
		log.Println("Conversation started, speak now")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS(
		broadcast.WithStartConversationCallback(startConversation),
		broadcast.WithListenerGoneCallback(func(remaining int) {
			if remaining > 0 {
				return
			}
			if err := b.Stop(); err != nil {
				log.Printf("Failed to stop conversation: %v", err)
			}
		}),
	))
	mux.HandleFunc("/protocol", broadcast.ProtocolHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		log.Println("Prometheus metrics enabled at /metrics")
	}
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(mux, "voicebridge-server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
