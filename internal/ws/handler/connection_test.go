package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/lib/logger/handler/slogdiscard"
)

func startHub(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slogdiscard.NewDiscardLogger())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleConnection))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) event.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, p, err := conn.ReadMessage()
	require.NoError(t, err)

	var m event.Message
	require.NoError(t, json.Unmarshal(p, &m))

	return m
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	url := startHub(t)

	subscriber := dial(t, url+"?channel=roulette")
	other := dial(t, url+"?channel=balance-channel")
	publisher := dial(t, url+"?channel=api")

	// let the hub register the subscriptions
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, publisher.WriteJSON(event.Message{
		Channel: "roulette",
		Event:   "spin",
		Data:    map[string]interface{}{"result_number": 17},
	}))

	m := readMessage(t, subscriber)
	assert.Equal(t, "spin", m.Event)
	assert.Equal(t, float64(17), m.Data["result_number"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	require.Error(t, err)
}

func TestSubscribeMessage(t *testing.T) {
	url := startHub(t)

	listener := dial(t, url)
	publisher := dial(t, url+"?channel=api")

	require.NoError(t, listener.WriteJSON(event.Message{Channel: "balance-channel", Event: EventSubscribe}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, publisher.WriteJSON(event.Message{Channel: "balance-channel", Event: "income-event"}))

	m := readMessage(t, listener)
	assert.Equal(t, "income-event", m.Event)
}

func TestDisconnectUnsubscribes(t *testing.T) {
	url := startHub(t)

	gone := dial(t, url+"?channel=roulette")
	stays := dial(t, url+"?channel=roulette")
	publisher := dial(t, url+"?channel=api")

	require.NoError(t, gone.Close())
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, publisher.WriteJSON(event.Message{Channel: "roulette", Event: "spin"}))

	m := readMessage(t, stays)
	assert.Equal(t, "spin", m.Event)
}
