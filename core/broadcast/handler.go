package broadcast

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type HandlerOptions struct {
	onStartConversation func() error
	onListenerGone      func(remaining int)
}

type HandlerOption func(*HandlerOptions)

// WithStartConversationCallback registers the callback invoked when a
// listener asks to open the upstream session.
func WithStartConversationCallback(callback func() error) HandlerOption {
	return func(o *HandlerOptions) { o.onStartConversation = callback }
}

// WithListenerGoneCallback registers a callback invoked after a listener
// disconnects, with the number of listeners left.
func WithListenerGoneCallback(callback func(remaining int)) HandlerOption {
	return func(o *HandlerOptions) { o.onListenerGone = callback }
}

// ServeWS returns the websocket upgrade handler. Each connection becomes a
// hub listener: one writer goroutine drains its send queue while the read
// loop handles listener requests until the socket closes.
func (h *Hub) ServeWS(opts ...HandlerOption) http.HandlerFunc {
	options := HandlerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade listener connection: %v", err)
			return
		}

		l := h.register()
		log.Printf("Listener %s connected", l.id)

		go func() {
			for f := range l.send {
				if err := conn.WriteMessage(f.messageType, f.payload); err != nil {
					log.Printf("Failed to write to listener %s: %v", l.id, err)
					break
				}
			}
			conn.Close()
		}()

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("Listener %s read error: %v", l.id, err)
				}
				break
			}

			var msg clientMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				log.Printf("Listener %s sent malformed message: %v", l.id, err)
				continue
			}

			switch msg.Type {
			case MessageTypeStartConversation:
				if options.onStartConversation == nil {
					continue
				}
				if err := options.onStartConversation(); err != nil {
					log.Printf("Failed to start conversation for listener %s: %v", l.id, err)
				}
			default:
				log.Printf("Listener %s sent unknown message type %q", l.id, msg.Type)
			}
		}

		h.unregister(l.id)
		log.Printf("Listener %s disconnected", l.id)
		if options.onListenerGone != nil {
			options.onListenerGone(h.ListenerCount())
		}
	}
}
