package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-empire/internal/client"
	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/router"
	"game-empire/internal/lib/logger/handler/slogdiscard"
	"game-empire/internal/storage/sqlstore"
)

func newTable(t *testing.T) *client.Table {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		Roulette: config.RouletteSettings{MinBet: 1, MaxBet: 10000, MaxBetsPerRound: 10},
		Users:    config.Users{SignupBalance: 1000, Header: client.UserHeader},
	}

	api := router.New(slogdiscard.NewDiscardLogger(), cfg, store, event.Noop{}, nil)

	srv := httptest.NewServer(api.Handler)
	t.Cleanup(srv.Close)

	c := client.New(srv.URL)
	_, err = c.CreateUser(context.Background())
	require.NoError(t, err)

	return client.NewTable(c)
}

func TestREPLSession(t *testing.T) {
	var out bytes.Buffer
	r := newREPL(newTable(t), &out)

	in := strings.Join([]string{
		"bet",
		"session",
		"amount 99999",
		"amount 10",
		"type straight 17",
		"bet",
		"spin seed",
		"history",
		"stats",
		"nonsense",
		"quit",
		"spin",
	}, "\n")

	require.NoError(t, r.run(context.Background(), strings.NewReader(in)))

	text := out.String()
	assert.Contains(t, text, "error: "+client.ErrNoSession.Error())
	assert.Contains(t, text, "amount 10000")
	assert.Contains(t, text, "amount 10\n")
	assert.Contains(t, text, "bet type straight")
	assert.Contains(t, text, "round 1:")
	assert.Contains(t, text, "games 1, bet 10.00")
	assert.Contains(t, text, `unknown command "nonsense"`)
	assert.Equal(t, 2, strings.Count(text, "round 1:"))
}

func TestREPLReportsAPIErrors(t *testing.T) {
	var out bytes.Buffer
	r := newREPL(newTable(t), &out)

	r.execute(context.Background(), "session")
	r.execute(context.Background(), "spin")

	assert.Contains(t, out.String(), "error: no pending bets found")
}

func TestParseNumbers(t *testing.T) {
	numbers, err := parseNumbers([]string{"1,2", "4"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, numbers)

	_, err = parseNumbers([]string{"x"})
	require.Error(t, err)
}
