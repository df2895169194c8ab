package realtime

import "encoding/json"

// Client → server messages.

type sessionUpdateMsg struct {
	Type    string        `json:"type"`
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	Instructions            string              `json:"instructions,omitempty"`
	Voice                   string              `json:"voice,omitempty"`
	TurnDetection           *turnDetection      `json:"turn_detection"`
	InputAudioTranscription *inputTranscription `json:"input_audio_transcription,omitempty"`
}

type turnDetection struct {
	Type string `json:"type"`
}

type inputTranscription struct {
	Model string `json:"model"`
}

type inputAudioAppendMsg struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// Server → client messages. Only the envelope is decoded up front; the
// payload is re-decoded per type the way the deepgram listeners do it.

type serverEnvelope struct {
	Type string `json:"type"`
}

type outputItemAddedMsg struct {
	Item conversationItem `json:"item"`
}

type outputItemDoneMsg struct {
	Item conversationItem `json:"item"`
}

type conversationItem struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// finalText assembles the item's terminal transcript: audio parts carry it
// in "transcript", text parts in "text".
func (i conversationItem) finalText() string {
	text := ""
	for _, part := range i.Content {
		switch part.Type {
		case "audio":
			text += part.Transcript
		case "text":
			text += part.Text
		}
	}
	return text
}

// isAssistantMessage reports whether the item is an assistant response the
// relay should accumulate. Other item types (user messages, function calls)
// pass through the stream and are ignored.
func (i conversationItem) isAssistantMessage() bool {
	return i.Type == "message" && i.Role == "assistant"
}

type deltaMsg struct {
	ItemID string `json:"item_id"`
	Delta  string `json:"delta"`
}

type errorMsg struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeInto(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}
