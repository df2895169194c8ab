package broadcast

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/invopop/jsonschema"
)

// ProtocolHandler serves a JSON-schema description of the listener-facing
// wire messages, so browser clients can be generated or validated against
// the live server.
func ProtocolHandler() http.HandlerFunc {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schemas := map[string]*jsonschema.Schema{
		MessageTypeText:              reflector.Reflect(&TextMessage{}),
		MessageTypeFullText:          reflector.Reflect(&FullTextMessage{}),
		MessageTypeStartConversation: reflector.Reflect(&StartConversationMessage{}),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(schemas); err != nil {
			log.Printf("Failed to encode protocol schema: %v", err)
		}
	}
}
