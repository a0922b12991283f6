package event

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-empire/internal/config"
	"game-empire/internal/lib/logger/handler/slogdiscard"
)

func TestNewSelectsDriver(t *testing.T) {
	log := slogdiscard.NewDiscardLogger()

	p, err := New(config.Events{Driver: DriverNone}, log)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)

	p, err = New(config.Events{Driver: DriverWS, WSURL: "ws://localhost:1/ws"}, log)
	require.NoError(t, err)
	assert.IsType(t, &WSEvent{}, p)

	p, err = New(config.Events{Driver: DriverPusher}, log)
	require.NoError(t, err)
	assert.IsType(t, &PusherEvent{}, p)

	_, err = New(config.Events{Driver: "kafka"}, log)
	require.Error(t, err)
}

func TestWSEventWritesJSON(t *testing.T) {
	received := make(chan Message, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, p, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var m Message
		if json.Unmarshal(p, &m) == nil {
			received <- m
		}
	}))
	defer srv.Close()

	p := NewWSEvent(slogdiscard.NewDiscardLogger(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	defer p.Close()

	require.NoError(t, p.TriggerEvent(Message{
		Channel: ChannelRoulette,
		Event:   EventSpin,
		Data:    map[string]interface{}{"result_number": 7},
	}))

	select {
	case m := <-received:
		assert.Equal(t, ChannelRoulette, m.Channel)
		assert.Equal(t, EventSpin, m.Event)
		assert.Equal(t, float64(7), m.Data["result_number"])
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
}

func TestWSEventDialFailure(t *testing.T) {
	p := NewWSEvent(slogdiscard.NewDiscardLogger(), "ws://127.0.0.1:1/ws")

	require.Error(t, p.TriggerEvent(Message{Channel: ChannelBalance}))
}
