package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/lib/logger/sl"
)

const (
	EventSubscribe = "subscribe"

	sendBuffer = 16
	writeWait  = 10 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	// dropped is owned by the Run loop.
	dropped bool
}

type subscription struct {
	client  *client
	channel string
}

type broadcast struct {
	channel string
	data    []byte
}

// Hub fans messages out to the connections subscribed to their channel.
// The channel map is owned by the Run loop.
type Hub struct {
	log         *slog.Logger
	channels    map[string]map[*client]struct{}
	subscribe   chan subscription
	unsubscribe chan *client
	broadcast   chan broadcast
	done        chan struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:         log,
		channels:    make(map[string]map[*client]struct{}),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan *client),
		broadcast:   make(chan broadcast),
		done:        make(chan struct{}),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (hub *Hub) Run(ctx context.Context) {
	defer close(hub.done)

	for {
		select {
		case <-ctx.Done():
			for _, receivers := range hub.channels {
				for c := range receivers {
					hub.drop(c)
				}
			}

			return
		case sub := <-hub.subscribe:
			if sub.client.dropped {
				continue
			}
			if hub.channels[sub.channel] == nil {
				hub.channels[sub.channel] = make(map[*client]struct{})
			}
			hub.channels[sub.channel][sub.client] = struct{}{}
		case c := <-hub.unsubscribe:
			hub.drop(c)
		case msg := <-hub.broadcast:
			for c := range hub.channels[msg.channel] {
				select {
				case c.send <- msg.data:
				default:
					hub.log.Info("dropping slow connection", slog.String("channel", msg.channel))

					hub.drop(c)
				}
			}
		}
	}
}

// drop removes c from every channel and closes its send queue once.
func (hub *Hub) drop(c *client) {
	if c.dropped {
		return
	}

	for name, receivers := range hub.channels {
		delete(receivers, c)
		if len(receivers) == 0 {
			delete(hub.channels, name)
		}
	}

	c.dropped = true
	close(c.send)
}

// send hands v to the Run loop unless the hub has stopped.
func send[T any](hub *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-hub.done:
		return false
	}
}

// HandleConnection upgrades the request and subscribes it to every ?channel= given.
func (hub *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	const op = "ws.handler.HandleConnection"

	log := hub.log.With(slog.String("op", op))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", sl.Err(err))

		return
	}

	c := &client{conn: ws, send: make(chan []byte, sendBuffer)}

	go hub.writePump(c)

	channels := r.URL.Query()["channel"]
	if len(channels) == 0 {
		channels = []string{""}
	}

	for i, name := range channels {
		if !send(hub, hub.subscribe, subscription{client: c, channel: name}) {
			if i == 0 {
				// never registered, so the Run loop will not close it
				close(c.send)
			}

			return
		}
	}

	defer send(hub, hub.unsubscribe, c)

	for {
		_, p, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("failed to read message", sl.Err(err))
			}

			return
		}

		var message event.Message

		if err = json.Unmarshal(p, &message); err != nil {
			log.Error("failed to unmarshal message", sl.Err(err))

			continue
		}

		if message.Event == EventSubscribe {
			if !send(hub, hub.subscribe, subscription{client: c, channel: message.Channel}) {
				return
			}

			continue
		}

		log.Debug("incoming message",
			sl.String("channel", message.Channel),
			sl.String("event", message.Event),
		)

		data, err := json.Marshal(message)
		if err != nil {
			log.Error("failed to marshal message", sl.Err(err))

			continue
		}

		if !send(hub, hub.broadcast, broadcast{channel: message.Channel, data: data}) {
			return
		}
	}
}

func (hub *Hub) writePump(c *client) {
	defer func() {
		_ = c.conn.Close()
	}()

	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			hub.log.Error("failed to write message", sl.Err(err))

			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
