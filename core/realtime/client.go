// Package realtime implements the streaming session client for the
// conversational speech API. It forwards captured PCM frames upstream and
// emits typed response events as the remote endpoint streams a turn back.
package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/jinzhu/copier"
	"github.com/voicebridge/voicebridge/core/events"
)

const (
	defaultHost  = "api.openai.com"
	defaultPath  = "/v1/realtime"
	defaultModel = "gpt-4o-realtime-preview"
)

// Client drives one bidirectional session over a websocket. All exported
// methods are safe for concurrent use; response events are delivered from a
// single reader goroutine in transport order.
type Client struct {
	apiKey string
	model  string

	conn   *websocket.Conn
	connMu sync.Mutex

	connected atomic.Bool

	options SessionOptions
}

type ClientOption func(*Client)

// WithModel overrides the realtime model the session is opened against.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// NewClient creates a session client. An empty apiKey falls back to the
// OPENAI_API_KEY environment variable.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv("OPENAI_API_KEY"); !ok {
			return nil, fmt.Errorf("openai api key not found")
		}
	}

	client := &Client{apiKey: apiKey, model: defaultModel}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Connect dials the realtime endpoint, applies the session configuration,
// and starts delivering response events to the registered callback.
func (c *Client) Connect(ctx context.Context, opts ...SessionOption) error {
	options := SessionOptions{Config: DefaultSessionConfig()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.EventCallback == nil {
		options.EventCallback = func(events.Event) {}
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.connected.Load() {
		return fmt.Errorf("session already connected")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(
		ctx,
		(&url.URL{
			Scheme:   "wss",
			Host:     defaultHost,
			Path:     defaultPath,
			RawQuery: url.Values{"model": {c.model}}.Encode(),
		}).String(),
		http.Header{
			"Authorization": {"Bearer " + c.apiKey},
			"OpenAI-Beta":   {"realtime=v1"},
		})
	if err != nil {
		return fmt.Errorf("failed to open socket connection to realtime endpoint: %w", err)
	}

	c.conn = conn
	c.options = options
	c.connected.Store(true)

	if err := c.updateSessionLocked(options.Config); err != nil {
		c.conn = nil
		c.connected.Store(false)
		conn.Close()
		return fmt.Errorf("failed to configure session: %w", err)
	}

	go c.readAndProcessMessages(conn, options)

	return nil
}

// Disconnect tears the session down. Frames appended afterwards are
// rejected until the next Connect.
func (c *Client) Disconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.connected.Store(false)
	if c.conn == nil {
		return nil
	}

	err := c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	closeErr := c.conn.Close()
	c.conn = nil

	if err != nil {
		return fmt.Errorf("failed to send close message: %w", err)
	}
	return closeErr
}

// IsConnected reports whether the session is currently open.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// AppendInputAudio forwards one captured PCM frame to the session's input
// audio buffer. The frame is not retained.
func (c *Client) AppendInputAudio(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}

	return c.sendMessage(inputAudioAppendMsg{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(pcm),
	})
}

// UpdateSession reapplies session parameters on an open session.
func (c *Client) UpdateSession(config SessionConfig) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.updateSessionLocked(config)
}

// updateSessionLocked is a version of [Client.UpdateSession] that is safe to
// call while holding connMu. Unset fields are filled from the defaults.
func (c *Client) updateSessionLocked(config SessionConfig) error {
	defaults := DefaultSessionConfig()
	merged := config
	if merged.Voice == "" || merged.TurnDetection == "" || merged.TranscriptionModel == "" {
		base := SessionConfig{}
		if err := copier.Copy(&base, &defaults); err != nil {
			return fmt.Errorf("failed to clone default session config: %w", err)
		}
		if merged.Voice == "" {
			merged.Voice = base.Voice
		}
		if merged.TurnDetection == "" {
			merged.TurnDetection = base.TurnDetection
		}
		if merged.TranscriptionModel == "" {
			merged.TranscriptionModel = base.TranscriptionModel
		}
	}

	if !merged.Voice.Valid() {
		return fmt.Errorf("unrecognized voice %q", merged.Voice)
	}
	if !merged.TurnDetection.Valid() {
		return fmt.Errorf("unrecognized turn detection mode %q", merged.TurnDetection)
	}

	return c.writeJSONLocked(sessionUpdateMsg{
		Type: "session.update",
		Session: sessionConfig{
			Instructions:            merged.Instructions,
			Voice:                   string(merged.Voice),
			TurnDetection:           &turnDetection{Type: string(merged.TurnDetection)},
			InputAudioTranscription: &inputTranscription{Model: merged.TranscriptionModel},
		},
	})
}

func (c *Client) sendMessage(msg any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.writeJSONLocked(msg)
}

func (c *Client) writeJSONLocked(msg any) error {
	if !c.connected.Load() || c.conn == nil {
		return fmt.Errorf("session not connected")
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to realtime session: %w", err)
	}
	return nil
}

func (c *Client) readAndProcessMessages(conn *websocket.Conn, options SessionOptions) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if c.connected.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("Realtime websocket read error: %v", err)
				options.EventCallback(events.NewSessionError(err.Error()))
			}

			c.connMu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.connected.Store(false)
			}
			c.connMu.Unlock()
			conn.Close()
			return
		}

		if event, ok := decodeServerEvent(msg); ok {
			options.EventCallback(event)
		}
	}
}

// decodeServerEvent translates a raw server message into a response event.
// Messages that carry no turn payload (acks, rate limit notices, input
// buffer bookkeeping) are skipped.
func decodeServerEvent(raw []byte) (events.Event, bool) {
	var envelope serverEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("Failed to unmarshal realtime message: %v", err)
		return nil, false
	}

	switch envelope.Type {
	case "response.output_item.added":
		var msg outputItemAddedMsg
		if err := decodeInto(raw, &msg); err != nil {
			log.Printf("Failed to unmarshal realtime message: %v", err)
			return nil, false
		}
		if !msg.Item.isAssistantMessage() {
			return nil, false
		}
		return events.NewTurnStarted(msg.Item.ID), true

	case "response.text.delta", "response.audio_transcript.delta":
		var msg deltaMsg
		if err := decodeInto(raw, &msg); err != nil {
			log.Printf("Failed to unmarshal realtime message: %v", err)
			return nil, false
		}
		if msg.Delta == "" {
			return nil, false
		}
		return events.NewTurnTextDelta(msg.ItemID, msg.Delta), true

	case "response.audio.delta":
		var msg deltaMsg
		if err := decodeInto(raw, &msg); err != nil {
			log.Printf("Failed to unmarshal realtime message: %v", err)
			return nil, false
		}
		pcm, err := base64.StdEncoding.DecodeString(msg.Delta)
		if err != nil {
			log.Printf("Failed to decode realtime audio delta: %v", err)
			return nil, false
		}
		if len(pcm) == 0 {
			return nil, false
		}
		return events.NewTurnAudioDelta(msg.ItemID, pcm), true

	case "response.output_item.done":
		var msg outputItemDoneMsg
		if err := decodeInto(raw, &msg); err != nil {
			log.Printf("Failed to unmarshal realtime message: %v", err)
			return nil, false
		}
		if !msg.Item.isAssistantMessage() {
			return nil, false
		}
		return events.NewTurnCompleted(msg.Item.ID, msg.Item.finalText()), true

	case "error":
		var msg errorMsg
		if err := decodeInto(raw, &msg); err != nil {
			log.Printf("Failed to unmarshal realtime message: %v", err)
			return nil, false
		}
		return events.NewSessionError(msg.Error.Message), true
	}

	return nil, false
}
