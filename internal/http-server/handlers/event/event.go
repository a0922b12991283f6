package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/lib/logger/sl"
)

const (
	ChannelRoulette = "roulette"
	ChannelBalance  = "balance-channel"

	EventSpin    = "spin"
	EventIncome  = "income-event"
	EventOutcome = "outcome-event"
	EventRefund  = "refund-event"
)

const (
	DriverWS     = "ws"
	DriverPusher = "pusher"
	DriverNone   = "none"
)

type Message struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Data    map[string]interface{} `json:"data"`
}

type Publisher interface {
	TriggerEvent(m Message) error
}

// New builds the publisher selected by cfg.Driver.
func New(cfg config.Events, log *slog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case DriverWS:
		return NewWSEvent(log, cfg.WSURL), nil
	case DriverPusher:
		return NewPusherEvent(log, &pusher.Client{
			AppID:   cfg.Pusher.AppID,
			Key:     cfg.Pusher.Key,
			Secret:  cfg.Pusher.Secret,
			Cluster: cfg.Pusher.Cluster,
			Secure:  true,
		}), nil
	case DriverNone, "":
		return Noop{}, nil
	}

	return nil, fmt.Errorf("event.New: unsupported driver %q", cfg.Driver)
}

// WSEvent pushes messages to the ws hub over one lazily dialed connection.
type WSEvent struct {
	log    *slog.Logger
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWSEvent(log *slog.Logger, url string) *WSEvent {
	return &WSEvent{
		log:    log,
		url:    url,
		dialer: websocket.DefaultDialer,
	}
}

func (p *WSEvent) TriggerEvent(m Message) error {
	const op = "handlers.event.WSEvent.TriggerEvent"

	msg, err := json.Marshal(m)
	if err != nil {
		p.log.Error("failed to marshal message", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		p.conn, _, err = p.dialer.Dial(p.url, nil)
		if err != nil {
			p.log.Error("failed to dial ws hub", sl.Err(err))

			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		p.log.Error("failed to trigger event", sl.Err(err))

		_ = p.conn.Close()
		p.conn = nil

		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Debug("event triggered", slog.String("channel", m.Channel), slog.String("event", m.Event))

	return nil
}

func (p *WSEvent) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}

	err := p.conn.Close()
	p.conn = nil

	return err
}

type PusherEvent struct {
	log    *slog.Logger
	pusher *pusher.Client
}

func NewPusherEvent(log *slog.Logger, pusherClient *pusher.Client) *PusherEvent {
	return &PusherEvent{
		log:    log,
		pusher: pusherClient,
	}
}

func (p *PusherEvent) TriggerEvent(m Message) error {
	const op = "handlers.event.PusherEvent.TriggerEvent"

	if err := p.pusher.Trigger(m.Channel, m.Event, m.Data); err != nil {
		p.log.Error("failed to trigger pusher event", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type Noop struct{}

func (Noop) TriggerEvent(Message) error { return nil }

// Recorder keeps every message; used by tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) TriggerEvent(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, m)

	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Message(nil), r.messages...)
}
