package broadcast

// Message types on the listener-facing websocket. Text-bearing messages are
// JSON; turn audio travels as a raw binary frame holding the WAV container.
const (
	MessageTypeText              = "text"
	MessageTypeFullText          = "full_text"
	MessageTypeStartConversation = "start_conversation"
)

// TextMessage carries one streamed transcript fragment.
type TextMessage struct {
	Type string `json:"type" jsonschema:"enum=text"`
	Text string `json:"text"`
}

// FullTextMessage carries the complete transcript of a finished turn.
type FullTextMessage struct {
	Type string `json:"type" jsonschema:"enum=full_text"`
	Text string `json:"text"`
}

// StartConversationMessage is sent by a listener to open the upstream
// session. Closing the websocket acts as the stop request.
type StartConversationMessage struct {
	Type string `json:"type" jsonschema:"enum=start_conversation"`
}

// clientMessage is the envelope used to route listener messages.
type clientMessage struct {
	Type string `json:"type"`
}
